package override

import (
	"strings"

	"github.com/albertocavalcante/go-realign/version"
)

// IsCompatibleExtension reports whether newV only extends oldV with an
// alignment qualifier. The numeric components must be equal once padded with
// zeros, and the qualifier of newV must start with the qualifier of oldV at a
// component boundary. When suffix is set, whatever newV adds must be that
// suffix (with any build number), and a suffix already on oldV is ignored.
//
//	IsCompatibleExtension("1.2", "1.2.0.redhat-1", "redhat", false)              // true
//	IsCompatibleExtension("1.2.0.Final", "1.2.0.Final-redhat-3", "redhat", false) // true
//	IsCompatibleExtension("1.2.0", "1.2.1", "", false)                           // false
//
// Snapshot markers are ignored unless preserveSnapshot is set, in which case
// both versions must agree on being snapshots.
func IsCompatibleExtension(oldV, newV, suffix string, preserveSnapshot bool) bool {
	if oldV == newV {
		return true
	}
	if preserveSnapshot && version.IsSnapshot(oldV) != version.IsSnapshot(newV) {
		return false
	}
	if suffix != "" {
		oldV = version.StripQualifierSuffix(oldV, suffix)
	}
	o, n := version.Parse(oldV), version.Parse(newV)
	if o.Malformed() || n.Malformed() || !o.SameNumbers(n) {
		return false
	}

	oldQ, newQ := qualifierKey(o), qualifierKey(n)
	residual := newQ
	if oldQ != "" {
		rest, ok := strings.CutPrefix(newQ, oldQ)
		if !ok || (rest != "" && rest[0] != '-') {
			return false
		}
		residual = strings.TrimPrefix(rest, "-")
	}
	if suffix == "" || residual == "" {
		return true
	}
	want := qualifierKey(version.Parse(strings.TrimLeft(suffix, ".-_")))
	got := version.QualifierBase(residual)
	return strings.EqualFold(got, version.QualifierBase(want))
}

// qualifierKey is the qualifier without its snapshot marker, lowercased and
// with every delimiter folded to '-'.
func qualifierKey(v version.Version) string {
	q := v.WithoutSnapshot().Qualifier()
	q = strings.NewReplacer(".", "-", "_", "-").Replace(q)
	return strings.ToLower(q)
}
