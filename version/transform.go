package version

import (
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrInvalidBuildNumber is returned when a build number is not a digit string.
	ErrInvalidBuildNumber = zerr.New("build number must be numeric")

	// ErrMalformedVersion is returned when a malformed version would be edited.
	ErrMalformedVersion = zerr.New("malformed version")
)

// snapshotLiteral is the token written by SetSnapshot.
const snapshotLiteral = "SNAPSHOT"

// WithoutSnapshot returns v without its SNAPSHOT token.
func (v Version) WithoutSnapshot() Version {
	if v.snapshot == "" || v.malformed {
		return v
	}
	out := v.clone()
	out.snapshot, out.snapDelim = "", ""
	out.normalize()
	return out
}

// WithSnapshot returns v with a trailing SNAPSHOT token.
func (v Version) WithSnapshot() Version {
	if v.snapshot != "" || v.malformed {
		return v
	}
	out := v.clone()
	out.snapshot = snapshotLiteral
	out.snapDelim = "-"
	out.normalize()
	return out
}

// WithBuildNumber replaces or inserts the build number.
func (v Version) WithBuildNumber(n string) (Version, error) {
	if !isAllDigits(n) {
		return v, zerr.With(zerr.Wrap(ErrInvalidBuildNumber, "cannot set build number"), "build_number", n)
	}
	if v.malformed {
		return v, zerr.With(zerr.Wrap(ErrMalformedVersion, "cannot set build number"), "version", v.base)
	}
	out := v.clone()
	out.build = n
	out.normalize()
	return out, nil
}

// WithQualifierSuffix appends an alignment suffix such as "redhat" or
// "redhat-3". Applying the same suffix twice is a no-op.
func (v Version) WithQualifierSuffix(suffix string) Version {
	if suffix == "" || v.malformed {
		return v
	}
	delim := ""
	if IsDelimiter(suffix[0]) {
		delim, suffix = suffix[:1], suffix[1:]
	}
	s, ok := parseSuffix(suffix)
	if !ok {
		return v
	}

	out := v.clone()
	if s.base != "" {
		switch {
		case out.base == "" && out.build == "":
			// Only a SNAPSHOT (or nothing) follows the numbers: the suffix
			// becomes the qualifier base and SNAPSHOT moves behind it.
			if out.snapshot != "" && out.snapDelim == "" {
				out.snapDelim = out.qualDelim
			}
			out.qualDelim = cmpOr(delim, ".")
			out.base = s.base
		case hasTail(out.base, s.base):
		default:
			if out.build != "" {
				out.base = joinNonEmpty(out.base, out.buildDelim, out.build)
				out.build, out.buildDelim = "", ""
			}
			if out.base == "" {
				out.base = s.base
			} else {
				out.base += cmpOr(delim, "-") + s.base
			}
		}
	}
	if s.build != "" {
		out.build = s.build
		if out.buildDelim == "" {
			out.buildDelim = cmpOr(s.buildDelim, "-")
		}
	}
	if s.snapshot != "" && out.snapshot == "" {
		out.snapshot = s.snapshot
		out.snapDelim = cmpOr(s.snapDelim, "-")
	}
	out.normalize()
	return out
}

// hasTail reports whether base ends with tail at a delimiter boundary.
func hasTail(base, tail string) bool {
	if base == tail {
		return true
	}
	if !strings.HasSuffix(base, tail) {
		return false
	}
	return IsDelimiter(base[len(base)-len(tail)-1])
}

func joinNonEmpty(a, delim, b string) string {
	if a == "" {
		return b
	}
	return a + delim + b
}

func cmpOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// Qualifier returns the qualifier of s, without its leading delimiter.
func Qualifier(s string) string { return Parse(s).Qualifier() }

// QualifierBase returns the qualifier of s without build number and snapshot.
func QualifierBase(s string) string { return Parse(s).QualifierBase() }

// BuildNumber returns the build number of s, or "".
func BuildNumber(s string) string { return Parse(s).BuildNumber() }

// HasBuildNumber reports whether s carries a build number.
func HasBuildNumber(s string) bool { return Parse(s).BuildNumber() != "" }

// IsSnapshot reports whether s ends in SNAPSHOT (any case).
func IsSnapshot(s string) bool { return Parse(s).IsSnapshot() }

// RemoveSnapshot strips the SNAPSHOT token from s.
func RemoveSnapshot(s string) string {
	v := Parse(s)
	if !v.IsSnapshot() {
		return s
	}
	return v.WithoutSnapshot().String()
}

// SetSnapshot adds or removes the SNAPSHOT token.
func SetSnapshot(s string, snapshot bool) string {
	if !snapshot {
		return RemoveSnapshot(s)
	}
	v := Parse(s)
	if v.IsSnapshot() || v.Malformed() {
		return s
	}
	return v.WithSnapshot().String()
}

// SetBuildNumber replaces or inserts the build number of s. A non-numeric n
// leaves s unchanged; use [TrySetBuildNumber] to observe that case.
func SetBuildNumber(s, n string) string {
	out, err := TrySetBuildNumber(s, n)
	if err != nil {
		return s
	}
	return out
}

// TrySetBuildNumber is SetBuildNumber with the validation error exposed.
func TrySetBuildNumber(s, n string) (string, error) {
	v, err := Parse(s).WithBuildNumber(n)
	if err != nil {
		return s, zerr.With(err, "version", s)
	}
	return v.String(), nil
}

// AppendQualifierSuffix appends suffix to the qualifier of s.
//
//	AppendQualifierSuffix("1.2", "foo")                  // 1.2.foo
//	AppendQualifierSuffix("1.2-SNAPSHOT", "foo")         // 1.2.foo-SNAPSHOT
//	AppendQualifierSuffix("1.2.3.Final", "foo")          // 1.2.3.Final-foo
//	AppendQualifierSuffix("1.2.3.Final-foo-1", "foo-2")  // 1.2.3.Final-foo-2
func AppendQualifierSuffix(s, suffix string) string {
	if suffix == "" {
		return s
	}
	return Parse(s).WithQualifierSuffix(suffix).String()
}

// ToCompat converts s to the OSGi-compatible layout: three numeric
// components, a '.' before the qualifier, and '-' inside it. Versions without a
// qualifier keep their numeric components as they are. Malformed input is
// returned unchanged.
func ToCompat(s string) string {
	v := Parse(s)
	if v.malformed {
		return s
	}
	nums := v.Numbers()
	if !v.hasQualifier() {
		return strings.Join(nums, ".")
	}
	for len(nums) < 3 {
		nums = append(nums, "0")
	}
	var parts []string
	if v.base != "" {
		parts = append(parts, strings.Map(func(r rune) rune {
			if r == '.' || r == '_' {
				return '-'
			}
			return r
		}, v.base))
	}
	if v.build != "" {
		parts = append(parts, v.build)
	}
	if v.snapshot != "" {
		parts = append(parts, v.snapshot)
	}
	return strings.Join(nums, ".") + "." + strings.Join(parts, "-")
}

// FindHighestMatchingBuildNumber returns the highest build number among
// candidates that share the numeric components (allowing trailing zero
// padding) and qualifier base of s, or 0 when none match. SNAPSHOT tokens are
// ignored on both sides.
func FindHighestMatchingBuildNumber(s string, candidates []string) int {
	target := Parse(s)
	if target.malformed {
		return 0
	}
	highest := 0
	for _, c := range candidates {
		cv := Parse(c)
		if cv.malformed || cv.build == "" || cv.base != target.base {
			continue
		}
		if !sameNumbers(target.numbers, cv.numbers) {
			continue
		}
		n, err := strconv.Atoi(cv.build)
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return highest
}

func sameNumbers(a, b []string) bool {
	for i := range max(len(a), len(b)) {
		if trimZeros(numberAt(a, i)) != trimZeros(numberAt(b, i)) {
			return false
		}
	}
	return true
}

func numberAt(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return "0"
}

func trimZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}

// PadBuildNumber formats n with at least width digits.
func PadBuildNumber(n, width int) string {
	if width <= 0 {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%0*d", width, n)
}

// SameNumbers reports whether v and o have equal numeric components once the
// shorter one is padded with zeros.
func (v Version) SameNumbers(o Version) bool {
	return sameNumbers(v.numbers, o.numbers)
}

// StripQualifierSuffix removes an alignment suffix (and the build number
// after it) from the tail of the qualifier of s. It is the inverse of
// AppendQualifierSuffix for versions that carry the suffix:
//
//	StripQualifierSuffix("1.2.0.Final-redhat-3", "redhat") // 1.2.0.Final
//	StripQualifierSuffix("1.2.0.redhat-3", "redhat-1")     // 1.2.0
func StripQualifierSuffix(s, suffix string) string {
	suffix = strings.TrimLeft(suffix, ".-_")
	v := Parse(s)
	sv, ok := parseSuffix(suffix)
	if v.malformed || !ok || sv.base == "" {
		return s
	}
	out := v.clone()
	switch {
	case out.base == sv.base:
		out.base = ""
	case hasTail(out.base, sv.base):
		out.base = out.base[:len(out.base)-len(sv.base)-1]
	default:
		return s
	}
	out.build, out.buildDelim = "", ""
	out.normalize()
	return out.String()
}
