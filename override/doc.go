// Package override resolves which version each dependency and plugin
// declaration of a reactor should be aligned to.
//
// # Tables
//
// Overrides arrive as ordered [Table]s keyed by coordinate. A [Source] turns
// a list of bill-of-materials references into tables; the REST translation
// service supplies another. [Merge] combines a primary and a secondary table
// under a [Precedence].
//
// # Module overrides
//
// Users may pin or exclude coordinates for a single module with keys of the
// form "group:artifact@module", or for every module with "group:artifact@*".
// An empty value excludes the coordinate. A value of the form
// "bom:group:artifact:version" refers to the version the named bill of
// materials manages for the same coordinate. See [ParseModuleOverrides].
//
// Module overrides are applied in two passes. Entries naming the module (or
// its group with "group:*") go first; a coordinate pinned there is not
// touched by a later "@*" entry.
//
// # Resolution
//
// A [Resolver] walks every project of a reactor and, for each declaration
// with an applicable override:
//
//   - skips declarations without a version or that point at the project
//     version;
//   - in strict mode, rejects targets that are not a compatible extension of
//     the current version (see [IsCompatibleExtension]);
//   - hands ${property} versions to a [PropertyRecorder] so the property is
//     rewritten where it is defined;
//   - rewrites partially interpolated versions such as "${v}.Final" while
//     keeping the reference when the target extends the resolved value;
//   - writes literal versions in place.
//
// Plugin overrides may carry configuration, executions and dependencies,
// which are merged into the declaration where it lacks them. With transitive
// alignment enabled, overrides that matched no declaration are injected into
// the managed section of each inheritance root.
package override
