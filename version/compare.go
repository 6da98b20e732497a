package version

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Identifier is one comparable piece of a qualifier.
type Identifier struct {
	IsDigitsOnly bool
	AsNumber     uint64 // Only valid if IsDigitsOnly
	AsString     string // lower-cased
}

// ParseIdentifier creates an Identifier from a token.
func ParseIdentifier(s string) Identifier {
	if isAllDigits(s) {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return Identifier{IsDigitsOnly: true, AsNumber: n, AsString: s}
		}
	}
	return Identifier{AsString: strings.ToLower(s)}
}

// rank places well-known qualifiers relative to a plain release (0).
// Unknown words rank above the release and compare lexicographically.
func rank(word string) int {
	switch word {
	case "alpha", "a":
		return -5
	case "beta", "b":
		return -4
	case "milestone", "m":
		return -3
	case "rc", "cr":
		return -2
	case "snapshot":
		return -1
	case "", "ga", "final", "release":
		return 0
	case "sp":
		return 1
	default:
		return 2
	}
}

// CompareIdentifiers orders two identifiers: numbers numerically, numbers
// after words, words by rank. Unknown words compare lexicographically.
func CompareIdentifiers(a, b Identifier) int {
	if a.IsDigitsOnly != b.IsDigitsOnly {
		if a.IsDigitsOnly {
			return 1
		}
		return -1
	}
	if a.IsDigitsOnly {
		return cmp.Compare(a.AsNumber, b.AsNumber)
	}
	ra, rb := rank(a.AsString), rank(b.AsString)
	if ra != rb || ra != rank("unknown") {
		return cmp.Compare(ra, rb)
	}
	return strings.Compare(a.AsString, b.AsString)
}

func (v Version) identifiers() []Identifier {
	var ids []Identifier
	if v.base != "" {
		toks, _ := tokenize(v.base)
		for _, t := range toks {
			if t.kind != tokDelim {
				ids = append(ids, ParseIdentifier(t.text))
			}
		}
	}
	if v.build != "" {
		ids = append(ids, ParseIdentifier(v.build))
	}
	if v.snapshot != "" {
		ids = append(ids, ParseIdentifier(v.snapshot))
	}
	return ids
}

// Compare orders two version strings, returning -1, 0 or +1.
//
// Numeric components compare numerically with missing components treated as
// zero. Qualifiers then compare identifier by identifier; a missing identifier
// behaves like a plain release, so 1.0-rc1 < 1.0 = 1.0.Final < 1.0.redhat-1.
// Malformed versions compare lexicographically.
func Compare(a, b string) int {
	va, vb := Parse(a), Parse(b)
	if va.malformed || vb.malformed {
		return strings.Compare(a, b)
	}

	for i := range max(len(va.numbers), len(vb.numbers)) {
		na, _ := strconv.ParseUint(trimZeros(numberAt(va.numbers, i)), 10, 64)
		nb, _ := strconv.ParseUint(trimZeros(numberAt(vb.numbers, i)), 10, 64)
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	}

	ia, ib := va.identifiers(), vb.identifiers()
	release := Identifier{}
	for i := range max(len(ia), len(ib)) {
		x, y := release, release
		if i < len(ia) {
			x = ia[i]
		}
		if i < len(ib) {
			y = ib[i]
		}
		if c := CompareIdentifiers(x, y); c != 0 {
			return c
		}
	}
	return 0
}

// Sort sorts versions in ascending order.
func Sort(versions []string) {
	slices.SortStableFunc(versions, Compare)
}
