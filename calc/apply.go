package calc

import (
	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/project"
)

// PropertyRecorder receives the property behind a ${property} project
// version.
type PropertyRecorder interface {
	Record(p *project.Project, name, value string, driver coord.GA) error
}

// Field names the declaration an [Edit] touched.
type Field string

const (
	FieldVersion    Field = "version"
	FieldProperty   Field = "property"
	FieldParent     Field = "parent"
	FieldDependency Field = "dependency"
	FieldPlugin     Field = "plugin"
)

// Edit is one write performed by [Calculator.Apply].
type Edit struct {
	Project coord.GA
	Target  coord.GA
	Field   Field
	Old     string
	New     string
}

// Apply writes plan into g: project versions, parent references to reactor
// projects, and dependency or plugin declarations pinned to the old version
// of a reactor project. A project version written as a pure ${property} is
// handed to rec instead; without a recorder the literal is written.
func (c *Calculator) Apply(g *project.Graph, plan *Plan, rec PropertyRecorder) ([]Edit, error) {
	var edits []Edit
	for _, p := range g.Projects() {
		ch, ok := plan.Lookup(p.GA())
		if !ok || !ch.Changed() {
			continue
		}
		edit, err := c.applyProjectVersion(g, p, ch, rec)
		if err != nil {
			return nil, err
		}
		if edit != nil {
			edits = append(edits, *edit)
		}
	}

	for _, p := range g.Projects() {
		if p.Parent != nil {
			if ch, ok := plan.Lookup(p.Parent.GA()); ok && ch.Changed() && g.Contains(ch.Project) {
				edits = append(edits, Edit{Project: p.GA(), Target: ch.Project, Field: FieldParent, Old: p.Parent.Version, New: ch.New})
				p.Parent.Version = ch.New
			}
		}
		p.EachDependency(func(_ project.Location, d *project.Dependency) {
			if ch, ok := plan.Lookup(d.GA()); ok && ch.Changed() && d.Version == ch.Old {
				edits = append(edits, Edit{Project: p.GA(), Target: ch.Project, Field: FieldDependency, Old: d.Version, New: ch.New})
				d.Version = ch.New
			}
		})
		p.EachPlugin(func(_ project.Location, pl *project.Plugin) {
			if ch, ok := plan.Lookup(pl.GA()); ok && ch.Changed() && pl.Version == ch.Old {
				edits = append(edits, Edit{Project: p.GA(), Target: ch.Project, Field: FieldPlugin, Old: pl.Version, New: ch.New})
				pl.Version = ch.New
			}
		})
	}
	return edits, nil
}

func (c *Calculator) applyProjectVersion(g *project.Graph, p *project.Project, ch Change, rec PropertyRecorder) (*Edit, error) {
	if p.Version == "" {
		// Inherited from a reactor parent: the parent reference update
		// carries it. Pin it when the parent is external.
		if p.Parent != nil && g.Contains(p.Parent.GA()) {
			return nil, nil
		}
		p.Version = ch.New
		return &Edit{Project: ch.Project, Target: ch.Project, Field: FieldVersion, Old: ch.Old, New: ch.New}, nil
	}

	if ref, ok := project.ParseReference(p.Version); ok && ref.IsPure() && rec != nil {
		if err := rec.Record(p, ref.Name, ch.New, ch.Project); err != nil {
			return nil, err
		}
		return &Edit{Project: ch.Project, Target: ch.Project, Field: FieldProperty, Old: ch.Old, New: ch.New}, nil
	}

	old := p.Version
	p.Version = ch.New
	return &Edit{Project: ch.Project, Target: ch.Project, Field: FieldVersion, Old: old, New: ch.New}, nil
}
