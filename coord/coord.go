// Package coord provides group/artifact coordinates for build artifacts.
//
// A coordinate identifies an artifact independent of its version:
//
//	org.apache.commons:commons-lang3
//
// The wildcard "*" is allowed in either half, but only in override keys.
// Resolved coordinates (projects, declarations) never carry wildcards; use
// [GA.IsPattern] to tell the two apart and [GA.Matches] to test a pattern
// against a concrete coordinate.
package coord

import (
	"cmp"
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// Wildcard matches any group or artifact in an override key.
const Wildcard = "*"

var (
	// ErrInvalidCoordinate is returned when a coordinate string cannot be parsed.
	ErrInvalidCoordinate = zerr.New("invalid coordinate")
)

var partRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// GA is a group:artifact coordinate.
type GA struct {
	Group    string
	Artifact string
}

// NewGA creates a coordinate from its parts.
func NewGA(group, artifact string) GA {
	return GA{Group: group, Artifact: artifact}
}

// ParseGA parses "group:artifact". Either part may be "*".
func ParseGA(s string) (GA, error) {
	group, artifact, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || strings.Contains(artifact, ":") {
		return GA{}, zerr.With(zerr.Wrap(ErrInvalidCoordinate, "expected group:artifact"), "coordinate", s)
	}
	if !validPart(group) || !validPart(artifact) {
		return GA{}, zerr.With(zerr.Wrap(ErrInvalidCoordinate, "invalid characters"), "coordinate", s)
	}
	return GA{Group: group, Artifact: artifact}, nil
}

// MustGA parses a coordinate or panics. Use only for constants/tests.
func MustGA(s string) GA {
	ga, err := ParseGA(s)
	if err != nil {
		panic(err)
	}
	return ga
}

func validPart(s string) bool {
	return s == Wildcard || partRegex.MatchString(s)
}

// String returns "group:artifact".
func (g GA) String() string {
	return g.Group + ":" + g.Artifact
}

// IsEmpty reports whether this is the zero coordinate.
func (g GA) IsEmpty() bool {
	return g.Group == "" && g.Artifact == ""
}

// IsPattern reports whether either half is the wildcard.
func (g GA) IsPattern() bool {
	return g.Group == Wildcard || g.Artifact == Wildcard
}

// Matches reports whether the pattern g covers the concrete coordinate other.
// A coordinate without wildcards only matches itself.
func (g GA) Matches(other GA) bool {
	if g.Group != Wildcard && g.Group != other.Group {
		return false
	}
	return g.Artifact == Wildcard || g.Artifact == other.Artifact
}

// Compare orders coordinates by group, then artifact.
func Compare(a, b GA) int {
	if c := cmp.Compare(a.Group, b.Group); c != 0 {
		return c
	}
	return cmp.Compare(a.Artifact, b.Artifact)
}

// GAV is a coordinate with a version.
type GAV struct {
	GA
	Version string
}

// NewGAV creates a versioned coordinate.
func NewGAV(group, artifact, version string) GAV {
	return GAV{GA: GA{Group: group, Artifact: artifact}, Version: version}
}

// ParseGAV parses "group:artifact:version". Wildcards are rejected.
func ParseGAV(s string) (GAV, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 || parts[2] == "" {
		return GAV{}, zerr.With(zerr.Wrap(ErrInvalidCoordinate, "expected group:artifact:version"), "coordinate", s)
	}
	ga, err := ParseGA(parts[0] + ":" + parts[1])
	if err != nil {
		return GAV{}, err
	}
	if ga.IsPattern() {
		return GAV{}, zerr.With(zerr.Wrap(ErrInvalidCoordinate, "wildcard not allowed in versioned coordinate"), "coordinate", s)
	}
	return GAV{GA: ga, Version: parts[2]}, nil
}

// MustGAV parses a versioned coordinate or panics. Use only for constants/tests.
func MustGAV(s string) GAV {
	gav, err := ParseGAV(s)
	if err != nil {
		panic(err)
	}
	return gav
}

// String returns "group:artifact:version".
func (g GAV) String() string {
	return g.GA.String() + ":" + g.Version
}
