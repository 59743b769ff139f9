// SPDX-License-Identifier: MPL-2.0

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/plugcheck/plugcheck/pkg/verify"
)

const (
	// FormatText is a styled, human-readable report.
	FormatText Format = "text"
	// FormatJSON is an indented JSON document.
	FormatJSON Format = "json"
	// FormatYAML is a YAML document.
	FormatYAML Format = "yaml"
	// FormatTOML is a TOML document.
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("unknown report format")

type (
	// Format names an output format.
	Format string

	// Options tunes rendering.
	Options struct {
		// Verbose lists ignored problems individually in text reports.
		Verbose bool
	}

	// Report is the structured document for one verify run. It always
	// carries a list so that one and many plugins share a schema.
	Report struct {
		// Compatible is true when no plugin has problems.
		Compatible bool       `json:"compatible" yaml:"compatible" toml:"compatible"`
		Plugins    []Document `json:"plugins" yaml:"plugins" toml:"plugins"`
	}

	// Document is the structured form of a verification result.
	Document struct {
		Plugin       string               `json:"plugin" yaml:"plugin" toml:"plugin"`
		Compatible   bool                 `json:"compatible" yaml:"compatible" toml:"compatible"`
		Classes      int                  `json:"classes" yaml:"classes" toml:"classes"`
		Problems     []verify.Problem     `json:"problems" yaml:"problems" toml:"problems"`
		Ignored      []verify.Problem     `json:"ignored" yaml:"ignored" toml:"ignored"`
		ReadFailures []verify.ReadFailure `json:"read_failures" yaml:"read_failures" toml:"read_failures"`
		Duration     string               `json:"duration" yaml:"duration" toml:"duration"`
	}
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML, FormatTOML}
}

// ParseFormat parses a case-insensitive format name. An empty name is text.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Validate returns nil if f is a supported format.
func (f Format) Validate() error {
	switch f {
	case FormatText, FormatJSON, FormatYAML, FormatTOML:
		return nil
	default:
		return fmt.Errorf("%w %q (valid: text, json, yaml, toml)", ErrUnknownFormat, string(f))
	}
}

// NewDocument converts a result into its structured form. Slices are never
// nil so every format renders empty lists the same way.
func NewDocument(res *verify.Result) Document {
	doc := Document{
		Plugin:       res.Plugin,
		Compatible:   !res.HasProblems(),
		Classes:      res.Classes,
		Problems:     nonNil(res.Problems),
		Ignored:      nonNil(res.Ignored),
		ReadFailures: nonNil(res.ReadFailures),
		Duration:     res.Duration.String(),
	}
	return doc
}

// NewReport converts the results of one run into a single document.
func NewReport(results []*verify.Result) Report {
	rep := Report{Compatible: true, Plugins: make([]Document, 0, len(results))}
	for _, res := range results {
		doc := NewDocument(res)
		rep.Compatible = rep.Compatible && doc.Compatible
		rep.Plugins = append(rep.Plugins, doc)
	}
	return rep
}

// Write renders results to w in the given format. Structured formats emit a
// single Report document; text emits one section per result.
func Write(w io.Writer, format Format, results []*verify.Result, opts Options) error {
	switch format {
	case FormatText, "":
		for i, res := range results {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return fmt.Errorf("write text report: %w", err)
				}
			}
			if err := writeText(w, res, opts); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewReport(results)); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewReport(results)); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return nil
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(NewReport(results)); err != nil {
			return fmt.Errorf("encode toml report: %w", err)
		}
		return nil
	default:
		return format.Validate()
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
