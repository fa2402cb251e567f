package interp

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ValueConstructor builds one object from the named fields of a record
type ValueConstructor func(fields map[string]any) (any, error)

// UnknownQualnameError is returned when no constructor is registered for
// a TableObj qualname.
type UnknownQualnameError struct {
	Qualname string
}

func (e *UnknownQualnameError) Error() string {
	return fmt.Sprintf("no value constructor registered for %q", e.Qualname)
}

// Registry maps qualnames to value constructors
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]registered
}

type registered struct {
	name string
	ctor ValueConstructor
}

// qualnameKey joins the parts with NUL, which no part contains, so
// ["a.b", "c"] and ["a", "b.c"] stay distinct
func qualnameKey(qualname []string) string {
	return strings.Join(qualname, "\x00")
}

func qualnameString(qualname []string) string {
	return strings.Join(qualname, ".")
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]registered)}
}

// Register adds or replaces the constructor for qualname
func (r *Registry) Register(qualname []string, ctor ValueConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[qualnameKey(qualname)] = registered{name: qualnameString(qualname), ctor: ctor}
}

// Lookup returns the constructor for qualname
func (r *Registry) Lookup(qualname []string) (ValueConstructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.ctors[qualnameKey(qualname)]
	if !ok {
		return nil, &UnknownQualnameError{Qualname: qualnameString(qualname)}
	}
	return reg.ctor, nil
}

// Names returns the registered qualnames, parts joined with dots, in
// sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for _, reg := range r.ctors {
		names = append(names, reg.name)
	}
	sort.Strings(names)
	return names
}

// LorentzVectorQualname is the qualname metadata files use for TLorentzVector
var LorentzVectorQualname = []string{"uproot_methods.classes.TLorentzVector", "Methods"}

// LorentzVector is the value built for TLorentzVector records
type LorentzVector struct {
	X, Y, Z, T float64
}

func newLorentzVector(fields map[string]any) (any, error) {
	var v LorentzVector
	for name, dst := range map[string]*float64{"fX": &v.X, "fY": &v.Y, "fZ": &v.Z, "fE": &v.T} {
		raw, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("TLorentzVector: missing field %s", name)
		}
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("TLorentzVector: field %s is %T, want float64", name, raw)
		}
		*dst = f
	}
	return v, nil
}

// DefaultRegistry returns a registry with the built-in constructors
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(LorentzVectorQualname, newLorentzVector)
	return r
}
