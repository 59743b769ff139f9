// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/plugcheck/plugcheck/internal/issue"
	"github.com/plugcheck/plugcheck/internal/report"
	"github.com/plugcheck/plugcheck/pkg/classpath"
	"github.com/plugcheck/plugcheck/pkg/plugin"
	"github.com/plugcheck/plugcheck/pkg/verify"
)

type (
	// verifyFlags holds the raw command-line flags of `plugcheck verify`.
	verifyFlags struct {
		externalClasspath []string
		externalPrefixes  []string
		ignoreProblems    string
		format            string
		parallelism       int
		noExtract         bool
		tempDir           string
	}

	// verifySettings is the effective configuration of one verify run:
	// config values overridden by the flags the user set.
	verifySettings struct {
		externalClasspath []string
		externalPrefixes  []string
		ignoreProblems    string
		format            report.Format
		parallelism       int
		extractArchives   bool
		tempDir           string
		verbose           bool
	}
)

func newVerifyCommand(app *App) *cobra.Command {
	flags := &verifyFlags{}

	verifyCmd := &cobra.Command{
		Use:   "verify <plugin>...",
		Short: "Verify plugins for compatibility problems",
		Long: `Verify plugins for compatibility problems.

Each plugin may be a directory, a .zip distribution or a .jar archive.
Classes are resolved against the plugin first and the external classpath
second. The command exits with status 1 when any problem remains after
applying the ignore file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.verifySettings(cmd, flags)
			if err != nil {
				return app.fail(cmd, err)
			}
			return app.runVerify(cmd, settings, args)
		},
	}

	f := verifyCmd.Flags()
	f.StringArrayVarP(&flags.externalClasspath, "external-classpath", "e", nil, "directory, jar or zip the plugin compiles against (repeatable)")
	f.StringSliceVar(&flags.externalPrefixes, "external-prefixes", nil, "class name prefixes provided by the runtime, e.g. java/")
	f.StringVarP(&flags.ignoreProblems, "ignore-problems", "i", "", "file with regular expressions of problems to ignore")
	f.StringVarP(&flags.format, "format", "f", "", "report format: text, json, yaml or toml")
	f.IntVarP(&flags.parallelism, "parallelism", "p", 0, "maximum classes checked concurrently (0 = all CPUs)")
	f.BoolVar(&flags.noExtract, "no-extract", false, "read .zip plugins in place instead of extracting them")
	f.StringVar(&flags.tempDir, "temp-dir", "", "parent directory for extracted plugins")

	return verifyCmd
}

// verifySettings merges the loaded configuration with the flags the user set.
func (a *App) verifySettings(cmd *cobra.Command, flags *verifyFlags) (verifySettings, error) {
	vc := a.cfg.Verify
	s := verifySettings{
		externalClasspath: vc.ExternalClasspath,
		externalPrefixes:  vc.ExternalPrefixes,
		ignoreProblems:    vc.IgnoreProblemsFile,
		parallelism:       vc.Parallelism,
		extractArchives:   vc.ExtractArchives,
		tempDir:           vc.TempDir,
		verbose:           a.verbose,
	}
	format := a.cfg.Report.Format.String()

	changed := cmd.Flags().Changed
	if changed("external-classpath") {
		s.externalClasspath = flags.externalClasspath
	}
	if changed("external-prefixes") {
		s.externalPrefixes = flags.externalPrefixes
	}
	if changed("ignore-problems") {
		s.ignoreProblems = flags.ignoreProblems
	}
	if changed("format") {
		format = flags.format
	}
	if changed("parallelism") {
		if flags.parallelism < 0 {
			return s, fmt.Errorf("invalid --parallelism %d: must not be negative", flags.parallelism)
		}
		s.parallelism = flags.parallelism
	}
	if changed("no-extract") {
		s.extractArchives = !flags.noExtract
	}
	if changed("temp-dir") {
		s.tempDir = flags.tempDir
	}

	f, err := report.ParseFormat(format)
	if err != nil {
		return s, err
	}
	s.format = f
	return s, nil
}

func (a *App) runVerify(cmd *cobra.Command, s verifySettings, plugins []string) error {
	ctx := cmd.Context()

	opts := verify.DefaultOptions(s.externalPrefixes...)
	opts.Parallelism = s.parallelism
	if s.ignoreProblems != "" {
		filter, err := verify.ParseIgnoreFile(s.ignoreProblems)
		if err != nil {
			return a.fail(cmd, ignoreFileError(s.ignoreProblems, err))
		}
		opts.Ignore = filter
		slog.Debug("loaded ignore patterns", "file", s.ignoreProblems, "patterns", filter.Len())
	}

	// Left as a nil interface when no external classpath is configured.
	var external classpath.Resolver
	if len(s.externalClasspath) > 0 {
		ext, err := verify.OpenExternalClasspath(s.externalClasspath)
		if err != nil {
			return a.fail(cmd, externalClasspathError(err))
		}
		defer func() {
			if closeErr := ext.Close(); closeErr != nil {
				slog.Warn("failed to close external classpath", "error", closeErr)
			}
		}()
		external = ext
	}

	verifier := verify.NewVerifier(opts)
	openOpts := plugin.OpenOptions{ExtractArchives: s.extractArchives, TempDir: s.tempDir}

	results := make([]*verify.Result, 0, len(plugins))
	withProblems := 0
	for _, path := range plugins {
		res, err := verifyPlugin(ctx, verifier, path, openOpts, external)
		if err != nil {
			return a.fail(cmd, err)
		}
		results = append(results, res)
		if res.HasProblems() {
			withProblems++
		}
	}

	// One write so structured formats produce a single document.
	if err := report.Write(cmd.OutOrStdout(), s.format, results, report.Options{Verbose: s.verbose}); err != nil {
		return a.fail(cmd, err)
	}

	if withProblems > 0 {
		return &ExitError{
			Code: ExitProblems,
			Err:  fmt.Errorf("%d of %d plugin(s) have compatibility problems", withProblems, len(plugins)),
		}
	}
	return nil
}

// verifyPlugin opens one plugin, verifies it and releases its classpath.
func verifyPlugin(ctx context.Context, v *verify.Verifier, path string, opts plugin.OpenOptions, external classpath.Resolver) (*verify.Result, error) {
	cp, err := plugin.Open(path, opts)
	if err != nil {
		return nil, pluginError(path, err)
	}
	defer func() {
		if closeErr := cp.Close(); closeErr != nil {
			slog.Warn("failed to close plugin classpath", "plugin", path, "error", closeErr)
		}
	}()

	res, err := v.Verify(ctx, cp, external)
	if err != nil {
		return nil, err
	}
	// Report the path the user gave rather than an extraction directory.
	res.Plugin = path
	return res, nil
}

func pluginError(path string, err error) error {
	ec := issue.NewErrorContext().
		WithOperation("open plugin").
		WithResource(path).
		Wrap(err)

	id := issue.IncorrectPluginId
	switch {
	case errors.Is(err, plugin.ErrPluginNotFound):
		id = issue.PluginNotFoundId
		ec = ec.WithSuggestion("Check the plugin path for typos")
	case errors.Is(err, plugin.ErrUnsafeMember):
		ec = ec.WithSuggestion("The archive contains members outside its root; rebuild it")
	default:
		ec = ec.WithSuggestions(
			"Make sure the plugin is a directory, a .zip or a .jar",
			"Check that every archive under lib/ is a valid zip",
		)
	}
	return newServiceError(ec.WithIssue(id).BuildError(), id)
}

func ignoreFileError(path string, err error) error {
	built := issue.NewErrorContext().
		WithOperation("read ignore file").
		WithResource(path).
		WithSuggestion("Each non-comment line must be a valid regular expression").
		WithIssue(issue.IgnoreFileInvalidId).
		Wrap(err).
		BuildError()
	return newServiceError(built, issue.IgnoreFileInvalidId)
}

func externalClasspathError(err error) error {
	built := issue.NewErrorContext().
		WithOperation("open external classpath").
		WithSuggestion("Every --external-classpath entry must be an existing directory, .jar or .zip").
		WithIssue(issue.ExternalClasspathInvalidId).
		Wrap(err).
		BuildError()
	return newServiceError(built, issue.ExternalClasspathInvalidId)
}

// writeLine writes a single line, ignoring errors on a closed stream.
func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
