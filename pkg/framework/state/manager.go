// Package state saves and restores a processor's parameters plus an
// optional custom chunk.
//
// A state stream is little-endian:
//
//	"GLVERB" | version u32 | owner [16]byte | count i32 | count × (id u32, value f64) | custom u32 | chunk
//
// owner identifies the processor that wrote the stream. Values are
// normalized. The chunk follows only when custom is non-zero.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmunix/glicol-verb/pkg/framework/param"
)

const (
	magic   = "GLVERB"
	version = uint32(1)
)

// MaxStringLen bounds strings read by ReadString.
const MaxStringLen = 1 << 20

var (
	ErrInvalidFormat      = errors.New("invalid state format")
	ErrUnsupportedVersion = errors.New("unsupported state version")
	ErrWrongProcessor     = errors.New("state belongs to another processor")
)

// CustomSaveFunc appends processor data after the parameters.
type CustomSaveFunc func(w io.Writer) error

// CustomLoadFunc reads what the matching CustomSaveFunc wrote.
type CustomLoadFunc func(r io.Reader) error

// Manager serializes one registry on behalf of one processor.
type Manager struct {
	registry   *param.Registry
	owner      [16]byte
	customSave CustomSaveFunc
	customLoad CustomLoadFunc
}

// NewManager binds registry to the processor identified by owner.
func NewManager(registry *param.Registry, owner [16]byte) *Manager {
	return &Manager{registry: registry, owner: owner}
}

// SetCustomState installs the custom chunk codec. Either may be nil.
func (m *Manager) SetCustomState(save CustomSaveFunc, load CustomLoadFunc) {
	m.customSave = save
	m.customLoad = load
}

// encoder and decoder keep the first error and turn later calls into
// no-ops, so a sequence of fields needs one check at the end.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) put(v any) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, v)
	}
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) get(v any) {
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, v)
	}
}

// Save writes the header, every parameter and the custom chunk.
func (m *Manager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	e := &encoder{w: w}
	e.put(version)
	e.put(m.owner)

	params := m.registry.All()
	e.put(int32(len(params)))
	for _, p := range params {
		e.put(p.ID)
		e.put(p.GetValue())
	}

	if m.customSave == nil {
		e.put(uint32(0))
		if e.err != nil {
			return fmt.Errorf("write state: %w", e.err)
		}
		return nil
	}
	e.put(uint32(1))
	if e.err != nil {
		return fmt.Errorf("write state: %w", e.err)
	}
	if err := m.customSave(w); err != nil {
		return fmt.Errorf("write custom state: %w", err)
	}
	return nil
}

// Load restores what Save wrote. Parameters the registry does not know are
// skipped, so state from a newer build with extra parameters still loads.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if string(header) != magic {
		return ErrInvalidFormat
	}

	d := &decoder{r: r}
	var v uint32
	d.get(&v)
	if d.err == nil && v > version {
		return fmt.Errorf("%w: %d is newer than %d", ErrUnsupportedVersion, v, version)
	}
	var owner [16]byte
	d.get(&owner)
	if d.err == nil && owner != m.owner {
		return ErrWrongProcessor
	}

	var count int32
	d.get(&count)
	if d.err == nil && count < 0 {
		return fmt.Errorf("%w: negative parameter count", ErrInvalidFormat)
	}
	for i := int32(0); i < count && d.err == nil; i++ {
		var id uint32
		var value float64
		d.get(&id)
		d.get(&value)
		if p := m.registry.Get(id); d.err == nil && p != nil {
			p.SetValue(value)
		}
	}

	var custom uint32
	d.get(&custom)
	if d.err != nil {
		return fmt.Errorf("read state: %w", d.err)
	}
	if custom != 0 && m.customLoad != nil {
		if err := m.customLoad(r); err != nil {
			return fmt.Errorf("read custom state: %w", err)
		}
	}
	return nil
}

// WriteString writes s with a u32 length prefix.
func WriteString(w io.Writer, s string) error {
	if len(s) > MaxStringLen {
		return fmt.Errorf("string of %d bytes exceeds %d", len(s), MaxStringLen)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a string written by WriteString.
func ReadString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > MaxStringLen {
		return "", fmt.Errorf("%w: string length %d", ErrInvalidFormat, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
