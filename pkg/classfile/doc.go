// SPDX-License-Identifier: MPL-2.0

// Package classfile reads the subset of the JVM class-file format needed for
// compatibility checks: the class binary name, its access flags, the super
// class, implemented interfaces and the declared method table.
//
// Constant pool entries are decoded only as far as required to resolve those
// names. Field and attribute bodies are skipped without interpretation.
package classfile
