// SPDX-License-Identifier: MPL-2.0

package verify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ErrInvalidIgnorePattern is the sentinel error wrapped by IgnorePatternError.
var ErrInvalidIgnorePattern = errors.New("invalid ignore pattern")

type (
	// IgnoreFilter drops problems matching any of its patterns. Patterns are
	// case-insensitive and must match the whole "<subject>: <message>" text,
	// with '/' in class names written as '.'.
	IgnoreFilter struct {
		patterns []*regexp.Regexp
	}

	// IgnorePatternError reports a line of an ignore file that is not a
	// valid regular expression.
	IgnorePatternError struct {
		Line    int
		Pattern string
		Err     error
	}
)

// Error implements the error interface.
func (e *IgnorePatternError) Error() string {
	return fmt.Sprintf("invalid ignore pattern on line %d %q: %v", e.Line, e.Pattern, e.Err)
}

// Unwrap returns ErrInvalidIgnorePattern and the regexp error.
func (e *IgnorePatternError) Unwrap() []error { return []error{ErrInvalidIgnorePattern, e.Err} }

// NewIgnoreFilter compiles patterns into a filter.
func NewIgnoreFilter(patterns ...string) (*IgnoreFilter, error) {
	f := &IgnoreFilter{}
	for i, p := range patterns {
		if err := f.add(i+1, p); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ParseIgnore reads one pattern per line. Blank lines and lines starting
// with "//" are skipped.
func ParseIgnore(r io.Reader) (*IgnoreFilter, error) {
	f := &IgnoreFilter{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		if err := f.add(line, text); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore patterns: %w", err)
	}
	return f, nil
}

// ParseIgnoreFile reads an ignore file from path.
func ParseIgnoreFile(path string) (f *IgnoreFilter, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer func() { _ = file.Close() }() // read-only

	f, err = ParseIgnore(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f *IgnoreFilter) add(line int, pattern string) error {
	re, err := regexp.Compile(`(?i)^(?:` + pattern + `)$`)
	if err != nil {
		return &IgnorePatternError{Line: line, Pattern: pattern, Err: err}
	}
	f.patterns = append(f.patterns, re)
	return nil
}

// Len returns the number of patterns.
func (f *IgnoreFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.patterns)
}

// Ignores reports whether p matches any pattern. A nil filter ignores nothing.
func (f *IgnoreFilter) Ignores(p Problem) bool {
	if f == nil {
		return false
	}
	text := strings.ReplaceAll(p.String(), "/", ".")
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Split partitions problems into kept and ignored, preserving order.
func (f *IgnoreFilter) Split(problems []Problem) (kept, ignored []Problem) {
	for _, p := range problems {
		if f.Ignores(p) {
			ignored = append(ignored, p)
		} else {
			kept = append(kept, p)
		}
	}
	return kept, ignored
}
