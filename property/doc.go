// Package property collects property rewrites requested while aligning a
// reactor and applies them once, at the place each property is defined.
//
// Versions are often written as ${name} references. Rewriting the reference
// in place would break every other declaration that shares the property, so
// aligners hand the property to a [Tracker] instead. The tracker resolves the
// reference to its defining project (following ${other} chains), merges
// requests that land on the same definition, and reports conflicting
// requests according to its [ConflictPolicy]. [Tracker.Apply] performs the
// rewrites after every aligner has run.
//
// A property that is referenced but not defined anywhere in the reactor is
// injected into the inheritance root of the referencing project.
package property
