// SPDX-License-Identifier: MPL-2.0

// Package classpath provides read-only class lookup over archives, directories
// and ordered unions of both.
//
// Every variant implements [Resolver]:
//   - [ArchiveResolver]: classes under one root of a zip/jar archive, including
//     archives nested inside other archives
//   - [DirectoryResolver]: an explicit set of class files below a directory
//   - [CompositeResolver]: an ordered union where earlier children shadow later ones
//
// Resolvers are immutable once constructed, so lookups may run concurrently.
// Close is the only mutating operation and must not race with readers.
package classpath
