// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "verify plugin"},
			expected: "failed to verify plugin",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "verify plugin", Resource: "./p.zip"},
			expected: "failed to verify plugin: ./p.zip",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "load config", Cause: errors.New("bad value")},
			expected: "failed to load config: bad value",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "resolve plugin classpath",
				Resource:  "./p.zip",
				Cause:     errors.New("zip: not a valid zip file"),
			},
			expected: "failed to resolve plugin classpath: ./p.zip: zip: not a valid zip file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := &ActionableError{Operation: "test", Cause: fmt.Errorf("wrapped: %w", sentinel)}
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("outer: %w", errors.New("inner"))
	err := &ActionableError{
		Operation:   "verify plugin",
		Resource:    "./p.zip",
		Suggestions: []string{"Rebuild the plugin", "Check lib/ archives"},
		Cause:       cause,
	}

	tests := []struct {
		name     string
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "non-verbose",
			contains: []string{"failed to verify plugin", "• Rebuild the plugin", "• Check lib/ archives"},
			excludes: []string{"Error chain:"},
		},
		{
			name:     "verbose",
			verbose:  true,
			contains: []string{"Error chain:", "1. outer: inner", "2. inner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q in:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q in:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewErrorContext().
		WithOperation("resolve plugin classpath").
		WithResource("p.jar").
		WithSuggestion("one").
		WithSuggestions("two", "three").
		WithIssue(IncorrectPluginId).
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil")
	}
	if err.Operation != "resolve plugin classpath" || err.Resource != "p.jar" {
		t.Errorf("unexpected context: %+v", err)
	}
	if len(err.Suggestions) != 3 || !err.HasSuggestions() {
		t.Errorf("Suggestions = %v", err.Suggestions)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not wrapped")
	}
	if got := err.CatalogIssue(); got == nil || got.Id() != IncorrectPluginId {
		t.Errorf("CatalogIssue() = %v", got)
	}

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}
	if (&ActionableError{Operation: "x"}).CatalogIssue() != nil {
		t.Error("CatalogIssue() without issue should return nil")
	}
}

func TestWrapHelpers(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil || WrapWithContext(nil, "x", "y") != nil {
		t.Error("wrapping nil should return nil")
	}

	cause := errors.New("cause")
	if got := WrapWithOperation(cause, "open plugin").Error(); got != "failed to open plugin: cause" {
		t.Errorf("WrapWithOperation() = %q", got)
	}
	if got := WrapWithContext(cause, "open plugin", "p.zip").Error(); got != "failed to open plugin: p.zip: cause" {
		t.Errorf("WrapWithContext() = %q", got)
	}
	if got := NewActionableError("verify plugin").Error(); got != "failed to verify plugin" {
		t.Errorf("NewActionableError() = %q", got)
	}
}
