// Package version implements the version-string grammar used to realign
// artifact versions.
//
// # Grammar
//
//	version   := MMM (delim qualifier)?
//	MMM       := digits (delim digits (delim digits)?)?
//	qualifier := base (delim buildNumber)? (delim SNAPSHOT)?
//	delim     := '.' | '-' | '_'
//
// SNAPSHOT matches case-insensitively. A version may also start directly with
// a qualifier ("jboss-1-SNAPSHOT"), in which case it has no numeric part.
//
// # Parsing
//
// [Parse] never fails. The string is split into tokens (digit runs, letter
// runs and delimiters) and a small recursive-descent parser assigns them to
// the numeric components and the qualifier pieces. Every delimiter is kept, so
// [Version.String] always reproduces the input exactly:
//
//	Parse(s).String() == s
//
// Strings that cannot be tokenized cleanly (empty strings, characters outside
// [0-9A-Za-z._-], leading, trailing or doubled delimiters) are malformed. A
// malformed version keeps the whole literal as its qualifier base, so it
// compares and prints like an opaque qualifier, and every transformation
// returns it unchanged.
//
// # Transformations
//
// The string-level helpers are pure and operate on the parsed form:
//
//   - [AppendQualifierSuffix] adds an alignment suffix such as "redhat-3"
//   - [SetBuildNumber] and [RemoveSnapshot] edit single qualifier pieces
//   - [ToCompat] produces the OSGi-compatible form (1.2.0.foo)
//   - [FindHighestMatchingBuildNumber] scans candidates for the next build
//
// A build number added to a version with no qualifier base and fewer than
// three numbers pads the numbers with zeros, so "1.0" with build 5 becomes
// "1.0.0-5" rather than the four-part-looking "1.0-5".
//
// # Ordering
//
// [Compare] orders versions numerically by their numeric components, sorts
// qualified versions before the plain release, and compares qualifier
// identifiers the way the module resolver compares prerelease identifiers.
package version
