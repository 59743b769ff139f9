// SPDX-License-Identifier: MPL-2.0

package verify

import (
	"cmp"
	"slices"
	"sync"
)

type (
	// Problem is one compatibility issue found in a plugin.
	Problem struct {
		// Subject locates the problem, e.g. "com/x/A.run ()V".
		Subject string `json:"subject" yaml:"subject" toml:"subject"`
		// Message describes the problem.
		Message string `json:"message" yaml:"message" toml:"message"`
		// Rule is the name of the rule that reported it.
		Rule string `json:"rule" yaml:"rule" toml:"rule"`
	}

	// Sink receives problems reported by rules. Implementations must be safe
	// for concurrent use when rules run in parallel.
	Sink interface {
		Report(p Problem)
	}

	// ProblemSink is an append-only, concurrency-safe Sink.
	ProblemSink struct {
		mu       sync.Mutex
		problems []Problem
	}
)

// String renders the problem as "<subject>: <message>".
func (p Problem) String() string {
	return p.Subject + ": " + p.Message
}

// Report appends p.
func (s *ProblemSink) Report(p Problem) {
	s.mu.Lock()
	s.problems = append(s.problems, p)
	s.mu.Unlock()
}

// Len returns the number of reported problems.
func (s *ProblemSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.problems)
}

// Problems returns a sorted copy of the reported problems. Report order is
// not significant, so the copy is sorted for stable output.
func (s *ProblemSink) Problems() []Problem {
	s.mu.Lock()
	out := slices.Clone(s.problems)
	s.mu.Unlock()
	sortProblems(out)
	return out
}

func sortProblems(ps []Problem) {
	slices.SortFunc(ps, func(a, b Problem) int {
		return cmp.Or(
			cmp.Compare(a.Subject, b.Subject),
			cmp.Compare(a.Message, b.Message),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
}
