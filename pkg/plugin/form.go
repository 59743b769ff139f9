// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// FormDirectory is an unpacked plugin directory.
	FormDirectory PackageForm = "directory"
	// FormZip is a .zip plugin archive.
	FormZip PackageForm = "zip"
	// FormJar is a .jar plugin archive.
	FormJar PackageForm = "jar"
)

var (
	// ErrPluginNotFound is returned when the plugin path does not exist.
	ErrPluginNotFound = errors.New("plugin file not found")

	// ErrIncorrectPlugin is the sentinel error wrapped by IncorrectPluginError.
	ErrIncorrectPlugin = errors.New("incorrect plugin")

	// ErrInvalidPackageForm is the sentinel error wrapped by InvalidPackageFormError.
	ErrInvalidPackageForm = errors.New("invalid package form")
)

type (
	// PackageForm is the physical shape of a plugin package.
	PackageForm string

	// InvalidPackageFormError is returned when a PackageForm value is not recognized.
	// It wraps ErrInvalidPackageForm for errors.Is() compatibility.
	InvalidPackageFormError struct {
		Value PackageForm
	}

	// IncorrectPluginError is the package-level failure raised when a plugin
	// cannot be turned into a classpath. No partial classpath accompanies it.
	IncorrectPluginError struct {
		// Path is the plugin path being built.
		Path string
		// Reason describes the step that failed.
		Reason string
		// Err is the underlying cause (optional).
		Err error
	}
)

// String returns the string representation of the PackageForm.
func (f PackageForm) String() string { return string(f) }

// IsArchive reports whether the form is a zip or jar archive.
func (f PackageForm) IsArchive() bool { return f == FormZip || f == FormJar }

// Validate returns nil if the PackageForm is one of the known forms.
func (f PackageForm) Validate() error {
	switch f {
	case FormDirectory, FormZip, FormJar:
		return nil
	default:
		return &InvalidPackageFormError{Value: f}
	}
}

// Error implements the error interface for InvalidPackageFormError.
func (e *InvalidPackageFormError) Error() string {
	return fmt.Sprintf("invalid package form %q (valid: directory, zip, jar)", e.Value)
}

// Unwrap returns ErrInvalidPackageForm for errors.Is() compatibility.
func (e *InvalidPackageFormError) Unwrap() error { return ErrInvalidPackageForm }

// Error implements the error interface for IncorrectPluginError.
func (e *IncorrectPluginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("incorrect plugin %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("incorrect plugin %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrIncorrectPlugin and the underlying cause.
func (e *IncorrectPluginError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrIncorrectPlugin, e.Err}
	}
	return []error{ErrIncorrectPlugin}
}

// Classify determines the package form of path: a directory, or a regular
// file whose extension is .zip or .jar (case-insensitive).
func Classify(path string) (PackageForm, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &IncorrectPluginError{Path: path, Reason: "plugin file doesn't exist", Err: ErrPluginNotFound}
		}
		return "", &IncorrectPluginError{Path: path, Reason: "failed to inspect plugin file", Err: err}
	}
	if info.IsDir() {
		return FormDirectory, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return FormZip, nil
	case ".jar":
		return FormJar, nil
	}
	return "", &IncorrectPluginError{
		Path:   path,
		Reason: fmt.Sprintf("incorrect plugin file type %s: expected a directory, a .zip or a .jar archive", filepath.Base(path)),
	}
}
