package param

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownParameter is returned for lookups of unregistered IDs or names.
var ErrUnknownParameter = errors.New("unknown parameter")

// Registry holds the parameters of one processor in registration order.
// Lookups take a read lock, so the audio thread should keep the *Parameter
// values it needs instead of looking them up per block.
type Registry struct {
	mu     sync.RWMutex
	byID   map[uint32]*Parameter
	params []*Parameter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint32]*Parameter)}
}

// Add registers params. A duplicate ID fails the whole call.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range params {
		if _, dup := r.byID[p.ID]; dup {
			for _, added := range params[:i] {
				delete(r.byID, added.ID)
			}
			r.params = r.params[:len(r.params)-i]
			return fmt.Errorf("parameter %d (%s) already registered", p.ID, p.Name)
		}
		r.byID[p.ID] = p
		r.params = append(r.params, p)
	}
	return nil
}

// Get returns the parameter with id, or nil.
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// GetByName matches the full or short name.
func (r *Registry) GetByName(name string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.params {
		if p.Name == name || p.ShortName == name {
			return p
		}
	}
	return nil
}

// Count returns the number of parameters.
func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int32(len(r.params))
}

// All returns the parameters in registration order.
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Parameter(nil), r.params...)
}

// SetPlain sets the parameter with id in plain units.
func (r *Registry) SetPlain(id uint32, plain float64) error {
	p := r.Get(id)
	if p == nil {
		return fmt.Errorf("set %d: %w", id, ErrUnknownParameter)
	}
	p.SetPlainValue(plain)
	return nil
}
