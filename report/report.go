// Package report renders the result of an alignment run as JSON for
// tooling or as text tables for people.
//
// Both renderings are deterministic: the same result always produces the
// same bytes.
package report

import (
	"cmp"
	"encoding/json"
	"io"
	"slices"
	"strings"

	"go.trai.ch/zerr"

	realign "github.com/albertocavalcante/go-realign"
	"github.com/albertocavalcante/go-realign/override"
)

// Formats understood by [Write].
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for an unsupported report format.
var ErrUnknownFormat = zerr.New("unknown report format")

// Report is the serialisable form of a run.
type Report struct {
	RunID      string             `json:"run_id"`
	Summary    realign.Summary    `json:"summary"`
	Projects   []ProjectEntry     `json:"projects"`
	Decisions  []DecisionEntry    `json:"decisions,omitempty"`
	Properties []PropertyEntry    `json:"properties,omitempty"`
	Conflicts  []ConflictEntry    `json:"conflicts,omitempty"`
	Violations []ViolationEntry   `json:"violations,omitempty"`
	Forbidden  []ForbiddenEntry   `json:"forbidden,omitempty"`
	Changed    []string           `json:"changed,omitempty"`
	Diff       *realign.GraphDiff `json:"diff,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// ProjectEntry is the computed version of one project.
type ProjectEntry struct {
	Project  string `json:"project"`
	Declared string `json:"declared,omitempty"`
	Old      string `json:"old"`
	New      string `json:"new"`
}

// DecisionEntry is one declaration an override changed.
type DecisionEntry struct {
	Kind       string `json:"kind"`
	Project    string `json:"project"`
	Coordinate string `json:"coordinate"`
	Location   string `json:"location"`
	Action     string `json:"action"`
	Old        string `json:"old,omitempty"`
	New        string `json:"new,omitempty"`
	Property   string `json:"property,omitempty"`
	Explicit   bool   `json:"explicit,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// PropertyEntry is one property rewritten at its definition.
type PropertyEntry struct {
	Project  string   `json:"project"`
	Profile  string   `json:"profile,omitempty"`
	Name     string   `json:"name"`
	Old      string   `json:"old,omitempty"`
	New      string   `json:"new"`
	Injected bool     `json:"injected,omitempty"`
	Drivers  []string `json:"drivers,omitempty"`
}

// ConflictEntry is a property request the conflict policy settled.
type ConflictEntry struct {
	Project  string `json:"project"`
	Name     string `json:"name"`
	Kept     string `json:"kept"`
	Rejected string `json:"rejected"`
	Driver   string `json:"driver"`
	Policy   string `json:"policy"`
}

// ViolationEntry is a target strict alignment rejected.
type ViolationEntry struct {
	Kind       string `json:"kind"`
	Project    string `json:"project"`
	Coordinate string `json:"coordinate"`
	Old        string `json:"old"`
	New        string `json:"new"`
}

// ForbiddenEntry is a forbidden target that was allowed through.
type ForbiddenEntry struct {
	Coordinate string `json:"coordinate"`
	Reason     string `json:"reason"`
	Source     string `json:"source"`
}

// New builds the report of r. Only decisions that changed the reactor or
// were skipped are kept.
func New(r *realign.Result) *Report {
	rep := &Report{
		RunID:    r.RunID,
		Summary:  r.Summary(),
		Diff:     r.Diff,
		Warnings: r.Warnings,
	}

	for _, ch := range r.Projects {
		rep.Projects = append(rep.Projects, ProjectEntry{
			Project:  ch.Project.String(),
			Declared: ch.Declared,
			Old:      ch.Old,
			New:      ch.New,
		})
	}
	for _, d := range r.Decisions {
		if d.Action == override.ActionUnchanged && !d.Merged {
			continue
		}
		rep.Decisions = append(rep.Decisions, DecisionEntry{
			Kind:       d.Kind.String(),
			Project:    d.Project.String(),
			Coordinate: d.Coordinate.String(),
			Location:   d.Location.String(),
			Action:     string(d.Action),
			Old:        d.Old,
			New:        d.New,
			Property:   d.Property,
			Explicit:   d.Explicit,
			Reason:     d.Reason,
		})
	}
	for _, rw := range r.Rewrites {
		e := PropertyEntry{
			Project:  rw.Project.String(),
			Profile:  rw.Profile,
			Name:     rw.Name,
			Old:      rw.Old,
			New:      rw.New,
			Injected: rw.Injected,
		}
		for _, d := range rw.Drivers {
			e.Drivers = append(e.Drivers, d.String())
		}
		slices.Sort(e.Drivers)
		rep.Properties = append(rep.Properties, e)
	}
	slices.SortFunc(rep.Properties, func(a, b PropertyEntry) int {
		return cmp.Or(cmp.Compare(a.Project, b.Project), cmp.Compare(a.Profile, b.Profile), cmp.Compare(a.Name, b.Name))
	})
	for _, c := range r.Conflicts {
		rep.Conflicts = append(rep.Conflicts, ConflictEntry{
			Project:  c.Project.String(),
			Name:     c.Name,
			Kept:     c.Kept,
			Rejected: c.Rejected,
			Driver:   c.Driver.String(),
			Policy:   c.Policy.String(),
		})
	}
	for _, v := range r.Violations {
		rep.Violations = append(rep.Violations, ViolationEntry{
			Kind:       v.Kind.String(),
			Project:    v.Project.String(),
			Coordinate: v.Coordinate.String(),
			Old:        v.Old,
			New:        v.New,
		})
	}
	for _, f := range r.Forbidden {
		rep.Forbidden = append(rep.Forbidden, ForbiddenEntry{
			Coordinate: f.Coordinate.String(),
			Reason:     f.Reason,
			Source:     f.Source,
		})
	}
	for _, ga := range r.Changed {
		rep.Changed = append(rep.Changed, ga.String())
	}
	return rep
}

// Write renders r to w in format.
func Write(w io.Writer, r *realign.Result, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, r)
	case "", FormatText:
		return WriteText(w, r)
	}
	return zerr.With(zerr.Wrap(ErrUnknownFormat, "write report"), "format", format)
}

// WriteJSON renders r as indented JSON.
func WriteJSON(w io.Writer, r *realign.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(New(r)); err != nil {
		return zerr.Wrap(err, "encode report")
	}
	return nil
}
