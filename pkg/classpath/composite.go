// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/plugcheck/plugcheck/pkg/classfile"
)

// CompositeResolver is an ordered union of resolvers. Lookups consult the
// children in order and the first child that contains a class wins, which
// mirrors class loader precedence: earlier children shadow later duplicates.
type CompositeResolver struct {
	label    string
	children []Resolver

	closeOnce sync.Once
}

// NewCompositeResolver combines children in the given order. Nil children,
// including nil pointers held in a Resolver, are dropped.
func NewCompositeResolver(label string, children ...Resolver) *CompositeResolver {
	kept := make([]Resolver, 0, len(children))
	for _, c := range children {
		if !isNilResolver(c) {
			kept = append(kept, c)
		}
	}
	return &CompositeResolver{label: label, children: kept}
}

func isNilResolver(r Resolver) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Children returns the ordered children.
func (r *CompositeResolver) Children() []Resolver { return slices.Clone(r.children) }

// FindClass returns the class from the first child containing name.
// A read failure in that child is returned as is; later children are not
// consulted because they are shadowed.
func (r *CompositeResolver) FindClass(name string) (*classfile.Class, error) {
	for _, c := range r.children {
		if c.ContainsClass(name) {
			return c.FindClass(name)
		}
	}
	return nil, nil
}

// ClassLocation returns the leaf owning name in the first containing child.
func (r *CompositeResolver) ClassLocation(name string) Resolver {
	for _, c := range r.children {
		if loc := c.ClassLocation(name); loc != nil {
			return loc
		}
	}
	return nil
}

// AllClasses returns the sorted union of every child's classes.
func (r *CompositeResolver) AllClasses() []string {
	set := make(map[string]struct{})
	for _, c := range r.children {
		for _, name := range c.AllClasses() {
			set[name] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// IsEmpty reports whether every child is empty.
func (r *CompositeResolver) IsEmpty() bool {
	for _, c := range r.children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// ContainsClass reports whether any child contains name.
func (r *CompositeResolver) ContainsClass(name string) bool {
	for _, c := range r.children {
		if c.ContainsClass(name) {
			return true
		}
	}
	return false
}

// Label returns the diagnostic label given at construction.
func (r *CompositeResolver) Label() string { return r.label }

// String returns the label.
func (r *CompositeResolver) String() string { return r.label }

// Close closes every child. Failures are logged and never returned, and a
// failing child does not prevent the remaining children from closing.
func (r *CompositeResolver) Close() error {
	r.closeOnce.Do(func() {
		for _, c := range r.children {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close classpath entry", "resolver", c.Label(), "error", err)
			}
		}
	})
	return nil
}
