// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ReportFormatText renders a styled, human-readable report.
	ReportFormatText ReportFormat = "text"
	// ReportFormatJSON renders the result as JSON.
	ReportFormatJSON ReportFormat = "json"
	// ReportFormatYAML renders the result as YAML.
	ReportFormatYAML ReportFormat = "yaml"
	// ReportFormatTOML renders the result as TOML.
	ReportFormatTOML ReportFormat = "toml"

	// maxParallelism mirrors the bound of verify.parallelism in config_schema.cue.
	maxParallelism = 1024
)

var (
	// ErrInvalidReportFormat is returned when a ReportFormat value is not recognized.
	ErrInvalidReportFormat = errors.New("invalid report format")
	// ErrInvalidParallelism is returned when verify.parallelism is out of range.
	ErrInvalidParallelism = errors.New("invalid parallelism")
	// ErrInvalidExternalPrefix is returned when an external prefix is not a slash-terminated package.
	ErrInvalidExternalPrefix = errors.New("invalid external prefix")
	// ErrInvalidClasspathEntry is returned when an external classpath entry is blank.
	ErrInvalidClasspathEntry = errors.New("invalid external classpath entry")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ReportFormat selects the output format of verification reports.
	// Defined locally to avoid coupling config to internal/report;
	// the CLI converts it at the boundary.
	ReportFormat string

	// InvalidReportFormatError is returned when a ReportFormat value is not recognized.
	// It wraps ErrInvalidReportFormat for errors.Is() compatibility.
	InvalidReportFormatError struct {
		Value ReportFormat
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Verify configures plugin verification.
		Verify VerifyConfig `json:"verify" mapstructure:"verify"`
		// Report configures result output.
		Report ReportConfig `json:"report" mapstructure:"report"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// VerifyConfig configures plugin verification.
	VerifyConfig struct {
		// Parallelism bounds concurrent class checks (0 = all CPUs).
		Parallelism int `json:"parallelism" mapstructure:"parallelism"`
		// ExtractArchives extracts .zip plugins before reading them (default: true).
		ExtractArchives bool `json:"extract_archives" mapstructure:"extract_archives"`
		// TempDir is the parent of extraction directories (empty = system default).
		TempDir string `json:"temp_dir" mapstructure:"temp_dir"`
		// ExternalClasspath lists directories and archives plugins compile against.
		ExternalClasspath []string `json:"external_classpath" mapstructure:"external_classpath"`
		// ExternalPrefixes lists class name prefixes provided by the runtime.
		ExternalPrefixes []string `json:"external_prefixes" mapstructure:"external_prefixes"`
		// IgnoreProblemsFile names a file of problem patterns to ignore.
		IgnoreProblemsFile string `json:"ignore_problems_file" mapstructure:"ignore_problems_file"`
	}

	// ReportConfig configures result output.
	ReportConfig struct {
		// Format selects the report format.
		Format ReportFormat `json:"format" mapstructure:"format"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and detailed error output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// ReportFormats returns every supported report format.
func ReportFormats() []ReportFormat {
	return []ReportFormat{ReportFormatText, ReportFormatJSON, ReportFormatYAML, ReportFormatTOML}
}

// String returns the string representation of the ReportFormat.
func (f ReportFormat) String() string { return string(f) }

// IsValid returns whether the ReportFormat is one of the defined formats,
// and a list of validation errors if it is not.
func (f ReportFormat) IsValid() (bool, []error) {
	switch f {
	case ReportFormatText, ReportFormatJSON, ReportFormatYAML, ReportFormatTOML:
		return true, nil
	default:
		return false, []error{&InvalidReportFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidReportFormatError.
func (e *InvalidReportFormatError) Error() string {
	return fmt.Sprintf("invalid report format %q (valid: text, json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidReportFormat for errors.Is() compatibility.
func (e *InvalidReportFormatError) Unwrap() error { return ErrInvalidReportFormat }

// IsValid returns whether the VerifyConfig has valid fields.
func (c VerifyConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Parallelism < 0 || c.Parallelism > maxParallelism {
		errs = append(errs, fmt.Errorf("%w: %d (valid: 0-%d)", ErrInvalidParallelism, c.Parallelism, maxParallelism))
	}
	for i, entry := range c.ExternalClasspath {
		if strings.TrimSpace(entry) == "" {
			errs = append(errs, fmt.Errorf("%w: external_classpath[%d] is blank", ErrInvalidClasspathEntry, i))
		}
	}
	for _, prefix := range c.ExternalPrefixes {
		if prefix == "" || !strings.HasSuffix(prefix, "/") || strings.ContainsAny(prefix, ". \t") {
			errs = append(errs, fmt.Errorf("%w: %q must be a slash-terminated package such as \"java/\"", ErrInvalidExternalPrefix, prefix))
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields.
// It delegates to Verify.IsValid() and Report.Format.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Verify.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Report.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Verify: VerifyConfig{
			Parallelism:       0,
			ExtractArchives:   true,
			TempDir:           "", // os.TempDir()
			ExternalClasspath: []string{},
			ExternalPrefixes:  []string{"java/", "javax/"},
		},
		Report: ReportConfig{
			Format: ReportFormatText,
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
