package realign

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/calc"
	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/override"
	"github.com/albertocavalcante/go-realign/property"
)

// ForbiddenBehavior controls what happens when an alignment target is a
// forbidden version.
type ForbiddenBehavior int

const (
	// ForbiddenAllow skips the check.
	ForbiddenAllow ForbiddenBehavior = iota

	// ForbiddenWarn aligns anyway and reports a warning per version.
	ForbiddenWarn

	// ForbiddenError aborts before the reactor is modified.
	ForbiddenError
)

func (b ForbiddenBehavior) String() string {
	switch b {
	case ForbiddenAllow:
		return "allow"
	case ForbiddenWarn:
		return "warn"
	case ForbiddenError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseForbiddenBehavior parses "allow", "warn" or "error".
func ParseForbiddenBehavior(s string) (ForbiddenBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow":
		return ForbiddenAllow, nil
	case "warn":
		return ForbiddenWarn, nil
	case "error":
		return ForbiddenError, nil
	}
	return ForbiddenAllow, zerr.With(zerr.Wrap(ErrInvalidConfig, "unknown forbidden behavior"), "behavior", s)
}

// ForbiddenVersion is an alignment target the version policy rejects.
type ForbiddenVersion struct {
	Coordinate coord.GAV
	Reason     string
	// Source says which alignment produced the target: "project",
	// "dependency" or "plugin".
	Source string
}

// ForbiddenVersionsError is returned when forbidden targets are found and
// ForbiddenError is configured.
type ForbiddenVersionsError struct {
	Versions []ForbiddenVersion
}

func (e *ForbiddenVersionsError) Error() string {
	if len(e.Versions) == 1 {
		v := e.Versions[0]
		return "aligning to forbidden version " + v.Coordinate.String() + ": " + v.Reason
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("aligning to %d forbidden versions:", len(e.Versions)))
	for _, v := range e.Versions {
		sb.WriteString("\n  - ")
		sb.WriteString(v.Coordinate.String())
		sb.WriteString(": ")
		sb.WriteString(v.Reason)
	}
	return sb.String()
}

// Unwrap lets errors.Is match ErrForbiddenVersion.
func (e *ForbiddenVersionsError) Unwrap() error {
	return ErrForbiddenVersion
}

// Result describes one alignment run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Projects lists the computed project versions in reactor order.
	Projects []calc.Change

	// Edits lists the writes caused by project version changes.
	Edits []calc.Edit

	// Decisions lists what happened to every declaration an override
	// matched, dependencies first, then plugins.
	Decisions []override.Decision

	// Violations lists targets rejected by strict alignment.
	Violations []override.Violation

	// Rewrites lists properties changed at their definition.
	Rewrites []property.Rewrite

	// Conflicts lists disagreeing property requests that were resolved by
	// the conflict policy.
	Conflicts []property.Conflict

	// Forbidden lists forbidden targets that were allowed through.
	Forbidden []ForbiddenVersion

	// Changed lists the projects whose content changed, in reactor order.
	Changed []coord.GA

	// Diff compares declared versions before and after the run.
	Diff *GraphDiff

	// Warnings holds human-readable warnings.
	Warnings []string
}

// Summary counts the outcome of a run.
type Summary struct {
	Projects   int `json:"projects"`
	Changed    int `json:"changed"`
	Aligned    int `json:"aligned"`
	Skipped    int `json:"skipped"`
	Injected   int `json:"injected"`
	Violations int `json:"violations"`
	Properties int `json:"properties"`
	Conflicts  int `json:"conflicts"`
}

// Summary returns counters for the run.
func (r *Result) Summary() Summary {
	s := Summary{
		Projects:   len(r.Projects),
		Changed:    len(r.Changed),
		Violations: len(r.Violations),
		Properties: len(r.Rewrites),
		Conflicts:  len(r.Conflicts),
	}
	for _, d := range r.Decisions {
		switch d.Action {
		case override.ActionSkip:
			s.Skipped++
		case override.ActionInject:
			s.Injected++
		case override.ActionUnchanged:
		default:
			s.Aligned++
		}
	}
	return s
}
