// SPDX-License-Identifier: MPL-2.0

// Package config handles plugcheck configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/plugcheck/config.cue (or $XDG_CONFIG_HOME on Linux,
// ~/Library/Application Support/plugcheck/config.cue on macOS, %APPDATA%\plugcheck\config.cue
// on Windows), or from an explicit path. PLUGCHECK_* environment variables override file
// values, e.g. PLUGCHECK_VERIFY_PARALLELISM=2.
//
// Configuration files are validated against an embedded CUE schema (config_schema.cue).
package config
