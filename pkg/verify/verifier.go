// SPDX-License-Identifier: MPL-2.0

package verify

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/plugcheck/plugcheck/pkg/classpath"
)

const externalClasspathLabel = "external classpath"

type (
	// Options configures a Verifier.
	Options struct {
		// MethodRules run for every method of every plugin class.
		MethodRules []MethodRule
		// ClassRules run once for every plugin class.
		ClassRules []ClassRule
		// Parallelism bounds concurrent class checks. Zero means GOMAXPROCS.
		Parallelism int
		// Ignore drops matching problems from the result (optional).
		Ignore *IgnoreFilter
	}

	// Verifier runs rules over every class of a plugin classpath.
	Verifier struct {
		methodRules []MethodRule
		classRules  []ClassRule
		parallelism int
		ignore      *IgnoreFilter
	}

	// ReadFailure records a plugin class that could not be read.
	ReadFailure struct {
		Class string `json:"class" yaml:"class" toml:"class"`
		Error string `json:"error" yaml:"error" toml:"error"`
	}

	// Result is the outcome of one verification.
	Result struct {
		Plugin       string        `json:"plugin" yaml:"plugin" toml:"plugin"`
		Classes      int           `json:"classes" yaml:"classes" toml:"classes"`
		Problems     []Problem     `json:"problems" yaml:"problems" toml:"problems"`
		Ignored      []Problem     `json:"ignored,omitempty" yaml:"ignored,omitempty" toml:"ignored,omitempty"`
		ReadFailures []ReadFailure `json:"read_failures,omitempty" yaml:"read_failures,omitempty" toml:"read_failures,omitempty"`
		Duration     time.Duration `json:"duration" yaml:"duration" toml:"duration"`
	}
)

// DefaultOptions returns the built-in rule set with the given external prefixes.
func DefaultOptions(externalPrefixes ...string) Options {
	return Options{
		MethodRules: []MethodRule{FinalOverrideRule{}},
		ClassRules:  []ClassRule{NewUnresolvedSuperClassRule(externalPrefixes...)},
	}
}

// NewVerifier creates a Verifier.
func NewVerifier(opts Options) *Verifier {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &Verifier{
		methodRules: slices.Clone(opts.MethodRules),
		classRules:  slices.Clone(opts.ClassRules),
		parallelism: parallelism,
		ignore:      opts.Ignore,
	}
}

// HasProblems reports whether any problem survived filtering.
func (r *Result) HasProblems() bool { return len(r.Problems) > 0 }

// Verify checks every class of plugin. Super classes and other referenced
// classes are resolved against plugin first and external second; external
// may be nil or a nil pointer. Neither resolver is closed.
//
// Read failures of single plugin classes are collected in the result. Only
// context cancellation aborts the run.
func (v *Verifier) Verify(ctx context.Context, plugin, external classpath.Resolver) (*Result, error) {
	start := time.Now()

	// The composite is never closed: it does not own its children.
	resolver := classpath.NewCompositeResolver("verification classpath of "+plugin.Label(), plugin, external)
	classes := plugin.AllClasses()

	var (
		sink       ProblemSink
		failuresMu sync.Mutex
		failures   []ReadFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.parallelism)

	for _, name := range classes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			class, err := plugin.FindClass(name)
			if err != nil {
				slog.Debug("failed to read plugin class", "class", name, "error", err)
				failuresMu.Lock()
				failures = append(failures, ReadFailure{Class: name, Error: err.Error()})
				failuresMu.Unlock()
				return nil
			}
			if class == nil {
				return nil
			}

			for _, rule := range v.classRules {
				rule.VerifyClass(class, resolver, &sink)
			}
			for i := range class.Methods {
				for _, rule := range v.methodRules {
					rule.VerifyMethod(class, &class.Methods[i], resolver, &sink)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("verification of %s interrupted: %w", plugin.Label(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("verification of %s interrupted: %w", plugin.Label(), err)
	}

	kept, ignored := v.ignore.Split(sink.Problems())
	slices.SortFunc(failures, func(a, b ReadFailure) int { return cmp.Compare(a.Class, b.Class) })

	result := &Result{
		Plugin:       plugin.Label(),
		Classes:      len(classes),
		Problems:     kept,
		Ignored:      ignored,
		ReadFailures: failures,
		Duration:     time.Since(start),
	}
	slog.Debug("verification finished",
		"plugin", result.Plugin, "classes", result.Classes,
		"problems", len(result.Problems), "ignored", len(result.Ignored),
		"read_failures", len(result.ReadFailures), "duration", result.Duration)
	return result, nil
}

// OpenExternalClasspath builds the resolver for paths given as external
// classpath: each directory, jar or zip becomes one entry, in order. On
// failure every entry opened so far is closed.
func OpenExternalClasspath(paths []string) (*classpath.CompositeResolver, error) {
	children := make([]classpath.Resolver, 0, len(paths))
	for _, p := range paths {
		r, err := classpath.NewPathResolver(p)
		if err != nil {
			_ = classpath.NewCompositeResolver(externalClasspathLabel, children...).Close()
			return nil, fmt.Errorf("failed to open external classpath entry %s: %w", p, err)
		}
		children = append(children, r)
	}
	return classpath.NewCompositeResolver(externalClasspathLabel, children...), nil
}
