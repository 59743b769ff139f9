// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/plugcheck/plugcheck/pkg/verify"
)

// Palette shared with the CLI styles.
const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
)

type textStyles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
}

// newTextStyles binds the styles to w so that color is only emitted when
// w is a terminal.
func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess),
		failure: r.NewStyle().Bold(true).Foreground(colorError),
		warning: r.NewStyle().Foreground(colorWarning),
	}
}

func writeText(w io.Writer, res *verify.Result, opts Options) error {
	s := newTextStyles(w)
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", s.title.Render("Plugin"), res.Plugin)
	b.WriteString(s.muted.Render(fmt.Sprintf("%d class(es) checked in %s", res.Classes, res.Duration)))
	b.WriteString("\n\n")

	if len(res.Problems) == 0 {
		b.WriteString(s.success.Render("✓ No compatibility problems found"))
		b.WriteString("\n")
	} else {
		b.WriteString(s.failure.Render(fmt.Sprintf("✗ %d compatibility problem(s)", len(res.Problems))))
		b.WriteString("\n")
		for _, p := range res.Problems {
			fmt.Fprintf(&b, "  • %s %s\n", p.String(), s.muted.Render("["+p.Rule+"]"))
		}
	}

	if n := len(res.Ignored); n > 0 {
		b.WriteString("\n")
		b.WriteString(s.muted.Render(fmt.Sprintf("%d problem(s) ignored", n)))
		b.WriteString("\n")
		if opts.Verbose {
			for _, p := range res.Ignored {
				fmt.Fprintf(&b, "  • %s\n", s.muted.Render(p.String()))
			}
		}
	}

	if len(res.ReadFailures) > 0 {
		b.WriteString("\n")
		b.WriteString(s.warning.Render(fmt.Sprintf("! %d class(es) could not be read", len(res.ReadFailures))))
		b.WriteString("\n")
		for _, f := range res.ReadFailures {
			fmt.Fprintf(&b, "  • %s: %s\n", f.Class, f.Error)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}
