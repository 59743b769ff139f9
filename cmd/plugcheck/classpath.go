// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/plugcheck/plugcheck/pkg/plugin"
)

func newClasspathCommand(app *App) *cobra.Command {
	var noExtract bool

	classpathCmd := &cobra.Command{
		Use:   "classpath <plugin>",
		Short: "List the classes of a plugin and the entry that provides each",
		Long: `List the classpath entries of a plugin, followed by every class and
the entry it resolves from. Classes shadowed by an earlier entry are listed
once, under the entry that wins.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extract := app.cfg.Verify.ExtractArchives
			if cmd.Flags().Changed("no-extract") {
				extract = !noExtract
			}
			return app.listClasspath(cmd, args[0], plugin.OpenOptions{
				ExtractArchives: extract,
				TempDir:         app.cfg.Verify.TempDir,
			})
		},
	}

	classpathCmd.Flags().BoolVar(&noExtract, "no-extract", false, "read .zip plugins in place instead of extracting them")

	return classpathCmd
}

func (a *App) listClasspath(cmd *cobra.Command, path string, opts plugin.OpenOptions) error {
	cp, err := plugin.Open(path, opts)
	if err != nil {
		return a.fail(cmd, pluginError(path, err))
	}
	defer func() {
		if closeErr := cp.Close(); closeErr != nil {
			slog.Warn("failed to close plugin classpath", "plugin", path, "error", closeErr)
		}
	}()

	out := cmd.OutOrStdout()
	writeLine(out, "%s %s (%s)", TitleStyle.Render("Classpath"), cp.Label(), cp.Form())
	for _, entry := range cp.Entries() {
		writeLine(out, "  %s %s", KeyStyle.Render(entry.Label()), SubtitleStyle.Render(classCount(len(entry.AllClasses()))))
	}
	writeLine(out, "")

	classes := cp.AllClasses()
	if len(classes) == 0 {
		writeLine(out, "%s", WarningStyle.Render("No classes found"))
		return nil
	}
	for _, name := range classes {
		label := "?"
		if loc := cp.ClassLocation(name); loc != nil {
			label = loc.Label()
		}
		writeLine(out, "%s  %s", name, SubtitleStyle.Render(label))
	}
	return nil
}

func classCount(n int) string {
	if n == 1 {
		return "(1 class)"
	}
	return fmt.Sprintf("(%d classes)", n)
}
