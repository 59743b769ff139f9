// SPDX-License-Identifier: MPL-2.0

package classpath

import (
	"errors"
	"fmt"
	"slices"

	"github.com/plugcheck/plugcheck/pkg/classfile"
)

var (
	// ErrClassRead is the sentinel error wrapped by ClassReadError.
	ErrClassRead = errors.New("failed to read class")

	// ErrArchiveRead is the sentinel error wrapped by ArchiveReadError.
	ErrArchiveRead = errors.New("failed to read archive")
)

type (
	// Resolver is the read-only class lookup contract shared by every
	// classpath variant. Names are slash-delimited binary names.
	//
	// For every name n, ContainsClass(n) is true exactly when FindClass(n)
	// returns a class or a read error for that class.
	Resolver interface {
		// FindClass returns the parsed class, or (nil, nil) when the class is
		// not on this classpath. A class that is indexed but cannot be read
		// yields a *ClassReadError that affects only this lookup.
		FindClass(name string) (*classfile.Class, error)

		// ClassLocation returns the leaf resolver that owns name, or nil.
		ClassLocation(name string) Resolver

		// AllClasses returns every indexed binary name, sorted.
		AllClasses() []string

		// IsEmpty reports whether the resolver indexes no classes.
		IsEmpty() bool

		// ContainsClass reports whether name is indexed.
		ContainsClass(name string) bool

		// Label is a human-readable description used in diagnostics.
		Label() string

		// Close releases underlying handles. It is safe to call more than once.
		Close() error
	}

	// ClassReadError is returned by FindClass when an indexed class cannot be
	// opened or parsed. It wraps ErrClassRead for errors.Is() compatibility.
	ClassReadError struct {
		// Class is the binary name being looked up.
		Class string
		// Location identifies the archive member or file that failed.
		Location string
		// Err is the underlying I/O or parse error.
		Err error
	}

	// ArchiveReadError is returned when an archive member table cannot be
	// read. It wraps ErrArchiveRead for errors.Is() compatibility.
	ArchiveReadError struct {
		Locator ArchiveLocator
		Err     error
	}
)

// Error implements the error interface for ClassReadError.
func (e *ClassReadError) Error() string {
	return fmt.Sprintf("failed to read class %s from %s: %v", e.Class, e.Location, e.Err)
}

// Unwrap returns both ErrClassRead and the underlying cause.
func (e *ClassReadError) Unwrap() []error { return []error{ErrClassRead, e.Err} }

// Error implements the error interface for ArchiveReadError.
func (e *ArchiveReadError) Error() string {
	return fmt.Sprintf("failed to read archive %s: %v", e.Locator, e.Err)
}

// Unwrap returns both ErrArchiveRead and the underlying cause.
func (e *ArchiveReadError) Unwrap() []error { return []error{ErrArchiveRead, e.Err} }

// sortedKeys returns the keys of an index map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
