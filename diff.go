package realign

import (
	"cmp"
	"slices"

	"github.com/albertocavalcante/go-realign/project"
	"github.com/albertocavalcante/go-realign/version"
)

// Declaration identifies one versioned declaration of a reactor.
type Declaration struct {
	// Project is the "group:artifact" of the declaring project.
	Project string `json:"project"`

	// Kind is "project", "parent", "property", "dependency" or "plugin".
	Kind string `json:"kind"`

	// Name is the coordinate or property name, with the section for
	// dependencies and plugins, e.g. "io.netty:netty-all (managed)".
	Name string `json:"name"`
}

// Declarations maps every versioned declaration to its raw value.
type Declarations map[Declaration]string

// Snapshot records the declared versions of g. Values are recorded as
// written, so a property reference stays a reference.
func Snapshot(g *project.Graph) Declarations {
	out := make(Declarations)
	for _, p := range g.Projects() {
		owner := p.GA().String()
		put := func(kind, name, value string) {
			out[Declaration{Project: owner, Kind: kind, Name: name}] = value
		}

		if p.Version != "" {
			put("project", owner, p.Version)
		}
		if p.Parent != nil {
			put("parent", p.Parent.GA().String(), p.Parent.Version)
		}
		for name, value := range p.Properties {
			put("property", name, value)
		}
		for _, prof := range p.Profiles {
			for name, value := range prof.Properties {
				put("property", name+" (profile:"+prof.ID+")", value)
			}
		}
		p.EachDependency(func(loc project.Location, d *project.Dependency) {
			if d.Version == "" {
				return
			}
			name := d.GA().String()
			if d.Classifier != "" {
				name += ":" + d.Classifier
			}
			if d.Type != "" && d.Type != "jar" {
				name += "@" + d.Type
			}
			put("dependency", name+" ("+loc.String()+")", d.Version)
		})
		p.EachPlugin(func(loc project.Location, pl *project.Plugin) {
			if pl.Version != "" {
				put("plugin", pl.GA().String()+" ("+loc.String()+")", pl.Version)
			}
		})
	}
	return out
}

// DeclarationChange is a declaration that was added or removed.
type DeclarationChange struct {
	Declaration
	Version string `json:"version"`
}

// DeclarationUpdate is a declaration whose value changed.
type DeclarationUpdate struct {
	Declaration
	OldVersion string `json:"old_version"`
	NewVersion string `json:"new_version"`
}

// GraphDiff describes how the declared versions of a reactor changed.
type GraphDiff struct {
	// Added contains declarations present after but not before, such as
	// injected managed entries.
	Added []DeclarationChange `json:"added,omitempty"`

	// Removed contains declarations present before but not after.
	Removed []DeclarationChange `json:"removed,omitempty"`

	// Upgraded contains declarations whose new version is higher.
	Upgraded []DeclarationUpdate `json:"upgraded,omitempty"`

	// Downgraded contains declarations whose new version is lower.
	Downgraded []DeclarationUpdate `json:"downgraded,omitempty"`

	// Rewritten contains declarations whose value changed without changing
	// its order, such as a literal replaced by an equal property reference.
	Rewritten []DeclarationUpdate `json:"rewritten,omitempty"`
}

// IsEmpty returns true if nothing changed.
func (d *GraphDiff) IsEmpty() bool {
	return d.TotalChanges() == 0
}

// TotalChanges returns the number of changed declarations.
func (d *GraphDiff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Upgraded) + len(d.Downgraded) + len(d.Rewritten)
}

// Diff compares two snapshots. Versions are ordered with [version.Compare],
// so "1.0.0.redhat-2" is an upgrade of "1.0.0.redhat-1" and of "1.0.0".
// Results are sorted by project, kind and name for consistent output.
func Diff(before, after Declarations) *GraphDiff {
	diff := &GraphDiff{}

	for decl, newVersion := range after {
		oldVersion, existedBefore := before[decl]
		if !existedBefore {
			diff.Added = append(diff.Added, DeclarationChange{Declaration: decl, Version: newVersion})
			continue
		}
		if oldVersion == newVersion {
			continue
		}
		u := DeclarationUpdate{Declaration: decl, OldVersion: oldVersion, NewVersion: newVersion}
		switch c := version.Compare(newVersion, oldVersion); {
		case c > 0:
			diff.Upgraded = append(diff.Upgraded, u)
		case c < 0:
			diff.Downgraded = append(diff.Downgraded, u)
		default:
			diff.Rewritten = append(diff.Rewritten, u)
		}
	}

	for decl, oldVersion := range before {
		if _, exists := after[decl]; !exists {
			diff.Removed = append(diff.Removed, DeclarationChange{Declaration: decl, Version: oldVersion})
		}
	}

	sortChanges(diff.Added)
	sortChanges(diff.Removed)
	sortUpdates(diff.Upgraded)
	sortUpdates(diff.Downgraded)
	sortUpdates(diff.Rewritten)

	return diff
}

func compareDeclarations(a, b Declaration) int {
	return cmp.Or(
		cmp.Compare(a.Project, b.Project),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Name, b.Name),
	)
}

func sortChanges(changes []DeclarationChange) {
	slices.SortFunc(changes, func(a, b DeclarationChange) int {
		return compareDeclarations(a.Declaration, b.Declaration)
	})
}

func sortUpdates(updates []DeclarationUpdate) {
	slices.SortFunc(updates, func(a, b DeclarationUpdate) int {
		return compareDeclarations(a.Declaration, b.Declaration)
	})
}
