// SPDX-License-Identifier: MPL-2.0

// Package report renders verification results as styled text or as JSON,
// YAML and TOML documents.
package report
