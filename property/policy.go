package property

import (
	"strings"

	"go.trai.ch/zerr"
)

// ConflictPolicy decides what happens when two aligners want different
// values for the same property.
type ConflictPolicy int

const (
	// Fail aborts the run on the first conflict.
	Fail ConflictPolicy = iota
	// Overwrite keeps the most recent request.
	Overwrite
	// KeepFirst keeps the first request and ignores later ones.
	KeepFirst
)

var policyNames = map[ConflictPolicy]string{
	Fail:      "fail",
	Overwrite: "overwrite",
	KeepFirst: "keep-first",
}

func (c ConflictPolicy) String() string {
	if name, ok := policyNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseConflictPolicy parses "fail", "overwrite" or "keep-first".
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if normalized == "" {
		return Fail, nil
	}
	for policy, name := range policyNames {
		if name == normalized {
			return policy, nil
		}
	}
	return Fail, zerr.With(zerr.Wrap(ErrUnknownPolicy, "parse conflict policy"), "policy", s)
}
