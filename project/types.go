package project

import (
	"github.com/albertocavalcante/go-realign/coord"
)

// Project is one module of the reactor.
type Project struct {
	Group    string  `yaml:"group,omitempty"`
	Artifact string  `yaml:"artifact"`
	Version  string  `yaml:"version,omitempty"`
	Parent   *Parent `yaml:"parent,omitempty"`

	// Path is the descriptor the project was read from, for reporting.
	Path string `yaml:"path,omitempty"`

	Properties           map[string]string `yaml:"properties,omitempty"`
	Dependencies         []*Dependency     `yaml:"dependencies,omitempty"`
	DependencyManagement []*Dependency     `yaml:"dependencyManagement,omitempty"`
	Plugins              []*Plugin         `yaml:"plugins,omitempty"`
	PluginManagement     []*Plugin         `yaml:"pluginManagement,omitempty"`
	Profiles             []*Profile        `yaml:"profiles,omitempty"`
}

// Parent references the project a project inherits from.
type Parent struct {
	Group    string `yaml:"group"`
	Artifact string `yaml:"artifact"`
	Version  string `yaml:"version"`
}

// GA returns the parent coordinate.
func (p *Parent) GA() coord.GA {
	return coord.NewGA(p.Group, p.Artifact)
}

// Profile groups declarations that apply when the profile is active.
type Profile struct {
	ID                   string            `yaml:"id"`
	Properties           map[string]string `yaml:"properties,omitempty"`
	Dependencies         []*Dependency     `yaml:"dependencies,omitempty"`
	DependencyManagement []*Dependency     `yaml:"dependencyManagement,omitempty"`
	Plugins              []*Plugin         `yaml:"plugins,omitempty"`
	PluginManagement     []*Plugin         `yaml:"pluginManagement,omitempty"`
}

// Dependency is a dependency declaration.
type Dependency struct {
	Group      string `yaml:"group"`
	Artifact   string `yaml:"artifact"`
	Version    string `yaml:"version,omitempty"`
	Scope      string `yaml:"scope,omitempty"`
	Type       string `yaml:"type,omitempty"`
	Classifier string `yaml:"classifier,omitempty"`
}

// GA returns the dependency coordinate.
func (d *Dependency) GA() coord.GA {
	return coord.NewGA(d.Group, d.Artifact)
}

// Plugin is a build plugin declaration.
type Plugin struct {
	Group         string         `yaml:"group"`
	Artifact      string         `yaml:"artifact"`
	Version       string         `yaml:"version,omitempty"`
	Configuration map[string]any `yaml:"configuration,omitempty"`
	Executions    []*Execution   `yaml:"executions,omitempty"`
	Dependencies  []*Dependency  `yaml:"dependencies,omitempty"`
}

// GA returns the plugin coordinate.
func (p *Plugin) GA() coord.GA {
	return coord.NewGA(p.Group, p.Artifact)
}

// Execution is a plugin execution block.
type Execution struct {
	ID            string         `yaml:"id"`
	Phase         string         `yaml:"phase,omitempty"`
	Goals         []string       `yaml:"goals,omitempty"`
	Configuration map[string]any `yaml:"configuration,omitempty"`
}

// Location says where a declaration lives inside a project.
type Location struct {
	Profile string // empty for the main section
	Managed bool
}

// String renders the location for logs, e.g. "profile:release/managed".
func (l Location) String() string {
	section := "main"
	if l.Managed {
		section = "managed"
	}
	if l.Profile == "" {
		return section
	}
	return "profile:" + l.Profile + "/" + section
}

// GA returns the project coordinate, inheriting the group from the parent
// reference when it is not declared.
func (p *Project) GA() coord.GA {
	group := p.Group
	if group == "" && p.Parent != nil {
		group = p.Parent.Group
	}
	return coord.NewGA(group, p.Artifact)
}

// GAV returns the coordinate with the declared or inherited version.
func (p *Project) GAV() coord.GAV {
	return coord.GAV{GA: p.GA(), Version: p.DeclaredVersion()}
}

// DeclaredVersion returns the version as written, falling back to the
// parent reference version when the project inherits it.
func (p *Project) DeclaredVersion() string {
	if p.Version == "" && p.Parent != nil {
		return p.Parent.Version
	}
	return p.Version
}

// SetProperty defines or replaces a property on the project.
func (p *Project) SetProperty(name, value string) {
	if p.Properties == nil {
		p.Properties = make(map[string]string)
	}
	p.Properties[name] = value
}

// EachDependency calls fn for every dependency declaration: plain, managed,
// then the same sections of each profile in declaration order.
func (p *Project) EachDependency(fn func(Location, *Dependency)) {
	walkDeps := func(loc Location, deps []*Dependency) {
		for _, d := range deps {
			fn(loc, d)
		}
	}
	walkDeps(Location{}, p.Dependencies)
	walkDeps(Location{Managed: true}, p.DependencyManagement)
	for _, prof := range p.Profiles {
		walkDeps(Location{Profile: prof.ID}, prof.Dependencies)
		walkDeps(Location{Profile: prof.ID, Managed: true}, prof.DependencyManagement)
	}
}

// EachPlugin calls fn for every plugin declaration in the same order as
// [Project.EachDependency].
func (p *Project) EachPlugin(fn func(Location, *Plugin)) {
	walkPlugins := func(loc Location, plugins []*Plugin) {
		for _, pl := range plugins {
			fn(loc, pl)
		}
	}
	walkPlugins(Location{}, p.Plugins)
	walkPlugins(Location{Managed: true}, p.PluginManagement)
	for _, prof := range p.Profiles {
		walkPlugins(Location{Profile: prof.ID}, prof.Plugins)
		walkPlugins(Location{Profile: prof.ID, Managed: true}, prof.PluginManagement)
	}
}
