// SPDX-License-Identifier: MPL-2.0

// Package plugin turns a plugin package into a single classpath.
//
// A plugin is distributed as a directory, a .jar archive, or a .zip archive
// whose layout is typically:
//
//	my-plugin/
//	  classes/        compiled plugin classes (optional)
//	  lib/*.jar       bundled libraries
//
// [Build] walks one of these forms and returns a [Classpath] whose children
// preserve discovery order, so earlier entries shadow later duplicates.
// Packages that were renamed from .jar to .zip (or the reverse) and carry
// their classes at the top level are still resolved.
//
// [Open] classifies a path, extracts .zip packages to a temporary directory
// owned by the returned classpath, and builds it. The directory is removed
// on Close.
package plugin
