package override

import (
	"maps"
	"slices"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/project"
)

// Override is one alignment target for a coordinate.
type Override interface {
	// Coordinate returns the coordinate the override applies to.
	Coordinate() coord.GA
	// TargetVersion returns the version to align to.
	TargetVersion() string

	isOverride()
}

// VersionOverride pins a coordinate to a version.
type VersionOverride struct {
	GA      coord.GA
	Version string
}

func (o VersionOverride) Coordinate() coord.GA  { return o.GA }
func (o VersionOverride) TargetVersion() string { return o.Version }
func (VersionOverride) isOverride()             {}

// PluginOverride pins a plugin and carries the configuration that should be
// present on it.
type PluginOverride struct {
	GA            coord.GA
	Version       string
	Configuration map[string]any
	Executions    []*project.Execution
	Dependencies  []*project.Dependency
}

func (o PluginOverride) Coordinate() coord.GA  { return o.GA }
func (o PluginOverride) TargetVersion() string { return o.Version }
func (PluginOverride) isOverride()             {}

// hasPayload reports whether the override carries more than a version.
func (o PluginOverride) hasPayload() bool {
	return len(o.Configuration) > 0 || len(o.Executions) > 0 || len(o.Dependencies) > 0
}

// withVersion returns a copy of o pinned to v.
func withVersion(o Override, v string) Override {
	switch o := o.(type) {
	case PluginOverride:
		o.Version = v
		return o
	default:
		return VersionOverride{GA: o.Coordinate(), Version: v}
	}
}

// mergePlugin fills in the configuration, executions and plugin dependencies
// of pl that o carries and pl lacks. It reports whether anything was added.
func mergePlugin(pl *project.Plugin, o PluginOverride) bool {
	changed := false
	for key, value := range o.Configuration {
		if _, ok := pl.Configuration[key]; ok {
			continue
		}
		if pl.Configuration == nil {
			pl.Configuration = make(map[string]any)
		}
		pl.Configuration[key] = value
		changed = true
	}
	for _, exec := range o.Executions {
		if slices.ContainsFunc(pl.Executions, func(e *project.Execution) bool { return e.ID == exec.ID }) {
			continue
		}
		pl.Executions = append(pl.Executions, cloneExecution(exec))
		changed = true
	}
	for _, dep := range o.Dependencies {
		if slices.ContainsFunc(pl.Dependencies, func(d *project.Dependency) bool { return d.GA() == dep.GA() }) {
			continue
		}
		d := *dep
		pl.Dependencies = append(pl.Dependencies, &d)
		changed = true
	}
	return changed
}

func cloneExecution(e *project.Execution) *project.Execution {
	out := *e
	out.Goals = slices.Clone(e.Goals)
	out.Configuration = maps.Clone(e.Configuration)
	return &out
}

// newPlugin builds a managed plugin declaration from o.
func newPlugin(o Override) *project.Plugin {
	ga := o.Coordinate()
	pl := &project.Plugin{Group: ga.Group, Artifact: ga.Artifact, Version: o.TargetVersion()}
	if po, ok := o.(PluginOverride); ok {
		mergePlugin(pl, po)
	}
	return pl
}
