// SPDX-License-Identifier: MPL-2.0

// Package verify runs compatibility rules over the classes of a plugin.
//
// Rules implement [MethodRule] or [ClassRule]; they read a class, query a
// [classpath.Resolver] and report [Problem] values to a [Sink]. A rule that
// cannot resolve a referenced class does nothing. Unresolved super classes
// are the concern of [UnresolvedSuperClassRule] alone.
//
// [Verifier] checks classes in parallel against one shared resolver tree and
// collects the outcome in a [Result].
package verify
