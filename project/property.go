package project

import (
	"strings"
)

// maxInterpolationDepth bounds nested ${...} expansion.
const maxInterpolationDepth = 16

// Built-in expressions that name the project version.
const (
	ProjectVersionExpr = "${project.version}"
	PomVersionExpr     = "${pom.version}"
)

// IsSelfVersionReference reports whether s is the current project version
// expression.
func IsSelfVersionReference(s string) bool {
	s = strings.TrimSpace(s)
	return s == ProjectVersionExpr || s == PomVersionExpr
}

// IsExpression reports whether s contains a property reference.
func IsExpression(s string) bool {
	return strings.Contains(s, "${")
}

// Reference is a version expression containing exactly one property
// reference, such as "${netty.version}" or "${jetty.version}.v20240101".
type Reference struct {
	Prefix string
	Name   string
	Suffix string
}

// ParseReference splits s around its only ${...} reference.
func ParseReference(s string) (Reference, bool) {
	start := strings.Index(s, "${")
	if start < 0 {
		return Reference{}, false
	}
	end := strings.Index(s[start:], "}")
	if end < 0 {
		return Reference{}, false
	}
	end += start
	ref := Reference{Prefix: s[:start], Name: s[start+2 : end], Suffix: s[end+1:]}
	if ref.Name == "" || strings.Contains(ref.Suffix, "${") {
		return Reference{}, false
	}
	return ref, true
}

// IsPure reports whether the reference has no literal fragment around it.
func (r Reference) IsPure() bool {
	return r.Prefix == "" && r.Suffix == ""
}

// String renders the expression.
func (r Reference) String() string {
	return r.Prefix + "${" + r.Name + "}" + r.Suffix
}

// Definition is where a property is defined.
type Definition struct {
	Project *Project
	Profile string // empty when defined in the main properties
	Value   string
}

// FindProperty searches the project's own properties, then its profiles,
// then each in-reactor parent in the same order.
func (g *Graph) FindProperty(p *Project, name string) (Definition, bool) {
	for _, cur := range g.Ancestors(p) {
		if v, ok := cur.Properties[name]; ok {
			return Definition{Project: cur, Value: v}, true
		}
		for _, prof := range cur.Profiles {
			if v, ok := prof.Properties[name]; ok {
				return Definition{Project: cur, Profile: prof.ID, Value: v}, true
			}
		}
	}
	return Definition{}, false
}

// Interpolate expands ${...} references in s against p. Unknown references
// are left as written.
func (g *Graph) Interpolate(p *Project, s string) string {
	return g.interpolate(p, s, 0)
}

func (g *Graph) interpolate(p *Project, s string, depth int) string {
	if depth > maxInterpolationDepth || !IsExpression(s) {
		return s
	}
	var sb strings.Builder
	rest := s
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			sb.WriteString(rest)
			break
		}
		end += start
		sb.WriteString(rest[:start])
		name := rest[start+2 : end]
		if value, ok := g.lookup(p, name, depth); ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(rest[start : end+1])
		}
		rest = rest[end+1:]
	}
	return sb.String()
}

func (g *Graph) lookup(p *Project, name string, depth int) (string, bool) {
	switch name {
	case "project.version", "pom.version", "version":
		return g.interpolate(p, p.DeclaredVersion(), depth+1), true
	case "project.groupId", "pom.groupId":
		return p.GA().Group, true
	case "project.artifactId", "pom.artifactId":
		return p.Artifact, true
	case "project.parent.version", "parent.version":
		if p.Parent == nil {
			return "", false
		}
		return p.Parent.Version, true
	}
	def, ok := g.FindProperty(p, name)
	if !ok {
		return "", false
	}
	return g.interpolate(p, def.Value, depth+1), true
}

// ResolvedVersion returns the project version with references expanded.
func (g *Graph) ResolvedVersion(p *Project) string {
	return g.Interpolate(p, p.DeclaredVersion())
}
