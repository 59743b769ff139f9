// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError and its ErrorContext builder attach an operation, a
// resource and remediation suggestions to an error. The issue catalog
// (Get, Values) holds Markdown help pages for the failures users can fix
// themselves; pages render in the terminal with glamour.
package issue
