// SPDX-License-Identifier: MPL-2.0

package platform

// GOOS values that change where plugcheck keeps its config and which
// archive member names it can extract.
const (
	Windows = "windows"
	Darwin  = "darwin"
)
