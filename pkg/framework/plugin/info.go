package plugin

import (
	"errors"
	"fmt"
	"hash/fnv"
)

// Info identifies a processor to hosts and to saved state.
type Info struct {
	ID       string // reverse DNS, e.g. "com.vmunix.glicolverb"
	Name     string
	Version  string
	Vendor   string
	Category string // host category path, e.g. "Fx|Delay"
}

// Validate reports missing identity fields.
func (i Info) Validate() error {
	var errs []error
	if i.ID == "" {
		errs = append(errs, errors.New("plugin info: empty ID"))
	}
	if i.Name == "" {
		errs = append(errs, errors.New("plugin info: empty name"))
	}
	return errors.Join(errs...)
}

// UID is a stable 128-bit FNV-1a hash of ID.
func (i Info) UID() [16]byte {
	var uid [16]byte
	h := fnv.New128a()
	_, _ = h.Write([]byte(i.ID))
	h.Sum(uid[:0])
	return uid
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s)", i.Name, i.Version, i.Vendor)
}
