// Package calc computes the aligned version of every project in a reactor.
//
// A [Calculator] applies, in order of preference, a fixed override version,
// a static qualifier suffix, or an incremental suffix whose build number is
// one past the highest build already published for the same base version.
// Published versions come from a prefetched map or a [VersionSource], and
// are looked up once per coordinate per calculator.
//
// [Calculator.CalculateAll] runs a second pass in incremental mode that
// raises every build number to the highest one computed for any module of
// the reactor sharing the same numbers and qualifier base, so siblings never
// end up on different builds of the same release. [Calculator.Apply] writes a
// [Plan] back into the reactor.
package calc
