// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plugcheck/plugcheck/internal/config"
)

// newConfigCommand creates the `plugcheck config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage plugcheck configuration",
		Long: `Manage plugcheck configuration.

Configuration is stored in:
  - Linux: ~/.config/plugcheck/config.cue
  - macOS: ~/Library/Application Support/plugcheck/config.cue
  - Windows: %APPDATA%\plugcheck\config.cue

Values may be overridden with PLUGCHECK_* environment variables, for
example PLUGCHECK_VERIFY_PARALLELISM=4 or PLUGCHECK_REPORT_FORMAT=json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			source := SubtitleStyle.Render("(using defaults)")
			if app.cfgPath != "" {
				source = app.cfgPath
			}
			writeLine(out, "// %s: %s", KeyStyle.Render("Config file"), source)
			_, err := io.WriteString(out, config.GenerateCUE(app.cfg))
			return err
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig("")
			if err != nil {
				return app.fail(cmd, err)
			}
			writeLine(cmd.OutOrStdout(), "%s %s", SuccessStyle.Render("Configuration file:"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfgFile != "" {
				writeLine(cmd.OutOrStdout(), "%s", app.cfgFile)
				return nil
			}
			dir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, err)
			}
			writeLine(cmd.OutOrStdout(), "%s", filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	return cfgCmd
}
