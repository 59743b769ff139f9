// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"log/slog"
)

// OpenOptions controls how Open turns a plugin path into a classpath.
type OpenOptions struct {
	// ExtractArchives unpacks .zip plugins into a temporary directory and
	// reads them as a directory plugin. Jar plugins are always read in place.
	ExtractArchives bool
	// TempDir is the parent for extraction directories. Empty means os.TempDir().
	TempDir string
}

// Open classifies path and builds its classpath. With ExtractArchives set, a
// zip plugin is extracted first and the resulting classpath owns (and removes
// on Close) the extraction directory.
func Open(path string, opts OpenOptions) (*Classpath, error) {
	form, err := Classify(path)
	if err != nil {
		return nil, err
	}

	if form != FormZip || !opts.ExtractArchives {
		return Build(path, form, false)
	}

	dir, err := Extract(path, opts.TempDir)
	if err != nil {
		return nil, &IncorrectPluginError{Path: path, Reason: "unable to extract plugin", Err: err}
	}
	slog.Debug("extracted plugin", "archive", path, "dir", dir)

	cp, err := Build(dir, FormDirectory, true)
	if err != nil {
		return nil, &IncorrectPluginError{Path: path, Reason: "unable to read extracted plugin", Err: err}
	}
	return cp, nil
}
