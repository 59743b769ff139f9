// SPDX-License-Identifier: MPL-2.0

package plugin

import "regexp"

var (
	// classesRootPattern matches a classes directory member, optionally below
	// one top-level directory: "classes/" or "my-plugin/classes/".
	classesRootPattern = regexp.MustCompile(`^([^/]+/)?classes/$`)

	// libArchivePattern matches a jar or zip directly inside lib/, optionally
	// below one top-level directory: "lib/a.jar" or "my-plugin/lib/b.zip".
	libArchivePattern = regexp.MustCompile(`^([^/]+/)?lib/([^/]+\.(jar|zip))$`)
)

// IsClassesRoot reports whether the archive member name is a classes root.
// Only the directory entry itself matches, not the files below it.
func IsClassesRoot(name string) bool {
	return classesRootPattern.MatchString(name)
}

// MatchLibArchive reports whether the archive member name is a bundled
// library archive and returns its file name.
func MatchLibArchive(name string) (fileName string, ok bool) {
	m := libArchivePattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[2], true
}
