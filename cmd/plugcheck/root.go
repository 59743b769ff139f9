// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for plugcheck.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/plugcheck/plugcheck/internal/config"
	"github.com/plugcheck/plugcheck/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// App holds the dependencies and per-invocation state shared by commands.
type App struct {
	// Config loads configuration.
	Config config.Provider

	cfgFile string
	verbose bool
	cfg     *config.Config
	cfgPath string
}

// NewApp creates an App backed by the file configuration provider.
func NewApp() *App {
	return &App{Config: config.NewProvider()}
}

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plugcheck",
		Short: "Check JVM plugins for binary compatibility problems",
		Long: TitleStyle.Render("plugcheck") + SubtitleStyle.Render(" - JVM plugin compatibility verifier") + `

plugcheck builds the classpath of a plugin package (a directory, a .zip
distribution or a plain .jar), resolves every class against it and an
optional external classpath, and reports incompatibilities such as
overridden final methods and unresolved super classes.

` + SubtitleStyle.Render("Examples:") + `
  plugcheck verify my-plugin.zip
  plugcheck verify my-plugin.zip --external-classpath ide/lib/app.jar
  plugcheck verify my-plugin.jar --format json
  plugcheck classpath my-plugin.zip
  plugcheck config show`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.initialize(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/plugcheck/config.cue)")

	rootCmd.AddCommand(newVerifyCommand(app))
	rootCmd.AddCommand(newClasspathCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command and exits with its status.
// This is called by main.main().
func Execute() {
	app := NewApp()
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// initialize loads configuration and installs the logger. Flags win over
// the config file.
func (a *App) initialize(cmd *cobra.Command) error {
	res, err := a.Config.LoadWithSource(cmd.Context(), config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		a.installLogger(cmd.ErrOrStderr())
		return a.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
	}
	a.cfg = res.Config
	a.cfgPath = res.Path

	if !cmd.Flags().Changed("verbose") {
		a.verbose = a.cfg.UI.Verbose
	}
	a.installLogger(cmd.ErrOrStderr())
	slog.Debug("configuration loaded", "path", a.cfgPath)
	return nil
}

// installLogger routes slog through a charmbracelet/log logger on w.
func (a *App) installLogger(w io.Writer) {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "plugcheck",
		Level:  log.WarnLevel,
	})
	if a.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	slog.SetDefault(slog.New(logger))
}

// fail wraps err so that Execute exits with ExitFailure. In verbose mode the
// suggestions, error chain and issue catalog page are printed first; the
// one-line message is always printed by fang.
func (a *App) fail(cmd *cobra.Command, err error) error {
	if a.verbose {
		fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, true))
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			renderServiceError(cmd.ErrOrStderr(), svcErr)
		}
	}
	return &ExitError{Code: ExitFailure, Err: err}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
