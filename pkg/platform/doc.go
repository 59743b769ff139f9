// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities: GOOS
// name constants and detection of file names Windows cannot create.
package platform
