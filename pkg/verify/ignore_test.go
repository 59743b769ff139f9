// SPDX-License-Identifier: MPL-2.0

package verify

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseIgnore(t *testing.T) {
	t.Parallel()

	input := `// problems accepted for the 2.x line
com\.x\.A\.run \(\)V: overriding final method

ACCESS TO UNRESOLVED CLASS .*legacy.*
`
	f, err := ParseIgnore(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseIgnore() error = %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}

	tests := []struct {
		name    string
		problem Problem
		want    bool
	}{
		{"slashes match dots", Problem{Subject: "com/x/A.run ()V", Message: "overriding final method"}, true},
		{"pattern anchored at start", Problem{Subject: "p/B", Message: "access to unresolved class com/legacy/Old"}, false},
		{"whole text must match", Problem{Subject: "com/x/A.run ()V", Message: "overriding final method twice"}, false},
		{"other problem", Problem{Subject: "com/x/B.run ()V", Message: "overriding final method"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := f.Ignores(tt.problem); got != tt.want {
				t.Errorf("Ignores(%s) = %v, want %v", tt.problem, got, tt.want)
			}
		})
	}
}

func TestIgnoreFilter_CaseInsensitive(t *testing.T) {
	t.Parallel()

	f, err := NewIgnoreFilter(`P\.B: ACCESS TO UNRESOLVED CLASS .*LEGACY.*`)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Ignores(Problem{Subject: "p/B", Message: "access to unresolved class com/legacy/Old"}) {
		t.Error("pattern should match regardless of case")
	}
}

func TestIgnoreFilter_Nil(t *testing.T) {
	t.Parallel()

	var f *IgnoreFilter
	if f.Ignores(Problem{Subject: "x", Message: "y"}) {
		t.Error("nil filter must not ignore anything")
	}
	kept, ignored := f.Split([]Problem{{Subject: "x"}})
	if len(kept) != 1 || len(ignored) != 0 {
		t.Errorf("Split() = %v, %v", kept, ignored)
	}
}

func TestParseIgnore_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := ParseIgnore(strings.NewReader("ok.*\n// comment\n(unclosed\n"))
	if !errors.Is(err, ErrInvalidIgnorePattern) {
		t.Fatalf("error = %v, want ErrInvalidIgnorePattern", err)
	}
	var pe *IgnorePatternError
	if !errors.As(err, &pe) || pe.Line != 3 {
		t.Errorf("error = %#v, want line 3", err)
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ignore.txt")
	if err := os.WriteFile(path, []byte("p\\.A: .*\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := ParseIgnoreFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Ignores(Problem{Subject: "p/A", Message: "anything"}) {
		t.Error("pattern from file not applied")
	}

	if _, err := ParseIgnoreFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing ignore file should fail")
	}
}
