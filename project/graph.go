package project

import (
	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
)

var (
	// ErrDuplicateProject is returned when two projects share a coordinate.
	ErrDuplicateProject = zerr.New("duplicate project")

	// ErrInvalidProject is returned when a project lacks a usable coordinate.
	ErrInvalidProject = zerr.New("invalid project")
)

// Graph is the reactor: every project aligned in one run, indexed by
// coordinate. Parent references to coordinates outside the graph are kept
// but not followed.
type Graph struct {
	projects []*Project
	index    map[coord.GA]*Project
}

// NewGraph indexes projects. Order is preserved and drives the processing
// order of an alignment run.
func NewGraph(projects ...*Project) (*Graph, error) {
	g := &Graph{index: make(map[coord.GA]*Project, len(projects))}
	for _, p := range projects {
		if p == nil {
			continue
		}
		ga := p.GA()
		if ga.Group == "" || ga.Artifact == "" || ga.IsPattern() {
			return nil, zerr.With(zerr.Wrap(ErrInvalidProject, "project needs a concrete group and artifact"), "project", ga.String())
		}
		if _, dup := g.index[ga]; dup {
			return nil, zerr.With(zerr.Wrap(ErrDuplicateProject, "coordinate declared twice"), "project", ga.String())
		}
		g.index[ga] = p
		g.projects = append(g.projects, p)
	}
	return g, nil
}

// Projects returns the projects in reactor order.
func (g *Graph) Projects() []*Project {
	return append([]*Project(nil), g.projects...)
}

// Len returns the number of projects.
func (g *Graph) Len() int {
	return len(g.projects)
}

// Lookup finds a project by coordinate.
func (g *Graph) Lookup(ga coord.GA) (*Project, bool) {
	p, ok := g.index[ga]
	return p, ok
}

// Contains reports whether ga is a reactor project.
func (g *Graph) Contains(ga coord.GA) bool {
	_, ok := g.index[ga]
	return ok
}

// Parent returns the in-reactor parent of p.
func (g *Graph) Parent(p *Project) (*Project, bool) {
	if p.Parent == nil {
		return nil, false
	}
	parent, ok := g.index[p.Parent.GA()]
	if !ok || parent == p {
		return nil, false
	}
	return parent, true
}

// Ancestors returns p followed by its in-reactor parents, nearest first.
// A cycle of parent references stops the walk.
func (g *Graph) Ancestors(p *Project) []*Project {
	chain := []*Project{p}
	seen := map[*Project]bool{p: true}
	for cur := p; ; {
		parent, ok := g.Parent(cur)
		if !ok || seen[parent] {
			return chain
		}
		seen[parent] = true
		chain = append(chain, parent)
		cur = parent
	}
}

// InheritanceRoot returns the topmost in-reactor ancestor of p.
func (g *Graph) InheritanceRoot(p *Project) *Project {
	chain := g.Ancestors(p)
	return chain[len(chain)-1]
}

// Roots returns the projects without an in-reactor parent, in reactor order.
func (g *Graph) Roots() []*Project {
	var roots []*Project
	for _, p := range g.projects {
		if _, ok := g.Parent(p); !ok {
			roots = append(roots, p)
		}
	}
	return roots
}
