package calc

import (
	"context"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/project"
	"github.com/albertocavalcante/go-realign/version"
)

// Change is the computed version of one project.
type Change struct {
	Project coord.GA
	// Declared is the version as written, possibly a ${property}.
	Declared string
	// Old is the resolved current version.
	Old string
	New string
}

// Changed reports whether the version moves.
func (c Change) Changed() bool { return c.Old != c.New }

// Plan holds the computed versions of a reactor in project order.
type Plan struct {
	Changes []Change
	index   map[coord.GA]int
}

// Lookup returns the change for project ga.
func (p *Plan) Lookup(ga coord.GA) (Change, bool) {
	if p == nil {
		return Change{}, false
	}
	i, ok := p.index[ga]
	if !ok {
		return Change{}, false
	}
	return p.Changes[i], true
}

// Versions returns the computed version per project.
func (p *Plan) Versions() map[coord.GA]string {
	out := make(map[coord.GA]string, len(p.Changes))
	for _, c := range p.Changes {
		out[c.Project] = c.New
	}
	return out
}

// CalculateAll computes the version of every project of g. In incremental
// mode build numbers are then synchronised across the reactor. Compat
// conversion runs last.
func (c *Calculator) CalculateAll(ctx context.Context, g *project.Graph) (*Plan, error) {
	plan := &Plan{index: make(map[coord.GA]int, g.Len())}
	for _, p := range g.Projects() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		old := g.ResolvedVersion(p)
		next, err := c.Calculate(ctx, p.GA(), old)
		if err != nil {
			return nil, err
		}
		plan.index[p.GA()] = len(plan.Changes)
		plan.Changes = append(plan.Changes, Change{
			Project:  p.GA(),
			Declared: p.DeclaredVersion(),
			Old:      old,
			New:      next,
		})
	}

	if c.cfg.incremental() {
		c.syncBuildNumbers(plan)
	}
	if c.cfg.Compat {
		for i := range plan.Changes {
			plan.Changes[i].New = version.ToCompat(plan.Changes[i].New)
		}
	}
	for _, ch := range plan.Changes {
		if ch.Changed() {
			c.logger.Debug("computed project version", "project", ch.Project.String(), "old", ch.Old, "new", ch.New)
		}
	}
	return plan, nil
}

// syncBuildNumbers raises each computed build number to the highest one
// among computed versions with the same numbers and qualifier base.
func (c *Calculator) syncBuildNumbers(plan *Plan) {
	computed := make([]string, 0, len(plan.Changes))
	for _, ch := range plan.Changes {
		computed = append(computed, ch.New)
	}
	for i, ch := range plan.Changes {
		if !version.HasBuildNumber(ch.New) {
			continue
		}
		highest := version.FindHighestMatchingBuildNumber(ch.New, computed)
		synced := version.SetBuildNumber(ch.New, version.PadBuildNumber(highest, c.cfg.BuildNumberWidth))
		if synced != ch.New {
			c.logger.Debug("synchronised build number", "project", ch.Project.String(), "from", ch.New, "to", synced)
			plan.Changes[i].New = synced
		}
	}
}
