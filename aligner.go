package realign

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/calc"
	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/override"
	"github.com/albertocavalcante/go-realign/project"
	"github.com/albertocavalcante/go-realign/property"
)

// Aligner runs alignments with a fixed configuration. It is safe for
// concurrent use on distinct graphs.
type Aligner struct {
	cfg *config

	dependencyModules []override.ModuleOverride
	pluginModules     []override.ModuleOverride
}

// NewAligner validates opts and parses module override keys.
func NewAligner(opts ...Option) (*Aligner, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	a := &Aligner{cfg: cfg}
	if a.dependencyModules, err = override.ParseModuleOverrides(cfg.dependencyOverrides); err != nil {
		return nil, zerr.Wrap(err, "dependency overrides")
	}
	if a.pluginModules, err = override.ParseModuleOverrides(cfg.pluginOverrides); err != nil {
		return nil, zerr.Wrap(err, "plugin overrides")
	}
	return a, nil
}

// run holds the state of one alignment.
type run struct {
	*Aligner
	id     string
	log    *slog.Logger
	result *Result
}

// Align aligns g in place.
//
// Every collaborator (bill of materials source, translation service,
// metadata source, version policy) is consulted before the first project is
// modified, so their failures leave g untouched. Strict violations under
// fail-on-violation and property conflicts under the fail policy are found
// while g is being modified; g should then be discarded.
func (a *Aligner) Align(ctx context.Context, g *project.Graph) (*Result, error) {
	id := uuid.NewString()
	r := &run{
		Aligner: a,
		id:      id,
		log:     a.cfg.log().With("run_id", id),
		result:  &Result{RunID: id},
	}
	return r.align(ctx, g)
}

func (r *run) align(ctx context.Context, g *project.Graph) (*Result, error) {
	start := time.Now()
	r.log.Info("alignment started", "projects", g.Len(), "boms", len(r.cfg.boms))

	before := Snapshot(g)
	prints := g.Fingerprints()

	// Collaborators first.
	boms := &override.Collection{Merged: override.NewTables()}
	if len(r.cfg.boms) > 0 {
		var err error
		if boms, err = override.Collect(ctx, r.cfg.bomSource, r.cfg.boms); err != nil {
			return nil, err
		}
		r.log.Debug("bills of materials loaded",
			"dependencies", boms.Merged.Dependencies.Len(), "plugins", boms.Merged.Plugins.Len())
	}

	tr, err := translate(ctx, r.cfg.translator, g)
	if err != nil {
		return nil, err
	}

	calculator := calc.New(r.cfg.calc,
		calc.WithVersionSource(r.cfg.metadata),
		calc.WithPrefetched(r.prefetched(tr.available)),
		calc.WithLogger(r.log),
	)
	plan, err := calculator.CalculateAll(ctx, g)
	if err != nil {
		return nil, err
	}
	r.result.Projects = plan.Changes

	deps := override.Merge(boms.Merged.Dependencies, tr.dependencies, r.cfg.precedence)
	plugins := override.Merge(boms.Merged.Plugins, tr.plugins, r.cfg.precedence)

	tracker := property.NewTracker(g, r.cfg.conflictPolicy, r.log)
	depResolver := r.resolver(override.Dependencies, deps, r.dependencyModules, boms.DependencyTables(), tracker)
	pluginResolver := r.resolver(override.Plugins, plugins, r.pluginModules, boms.PluginTables(), tracker)
	for _, res := range []*override.Resolver{depResolver, pluginResolver} {
		if err := res.Validate(); err != nil {
			return nil, err
		}
	}

	if err := r.checkPolicy(ctx, plan, deps, plugins); err != nil {
		return nil, err
	}

	// From here on g is modified.
	if r.result.Edits, err = calculator.Apply(g, plan, tracker); err != nil {
		return nil, err
	}
	for _, res := range []*override.Resolver{depResolver, pluginResolver} {
		out, err := res.Apply(g)
		if err != nil {
			return nil, err
		}
		r.result.Decisions = append(r.result.Decisions, out.Decisions...)
		r.result.Violations = append(r.result.Violations, out.Violations...)
	}
	r.result.Rewrites = tracker.Apply()
	r.result.Conflicts = tracker.Conflicts()

	for _, p := range g.Changed(prints) {
		r.result.Changed = append(r.result.Changed, p.GA())
	}
	r.result.Diff = Diff(before, Snapshot(g))
	r.collectWarnings()

	s := r.result.Summary()
	r.log.Info("alignment finished",
		"duration", time.Since(start),
		"changed", s.Changed,
		"aligned", s.Aligned,
		"skipped", s.Skipped,
		"injected", s.Injected,
		"violations", s.Violations,
		"properties", s.Properties)
	return r.result, nil
}

func (r *run) resolver(kind override.Kind, table *override.Table, modules []override.ModuleOverride,
	named map[string]*override.Table, tracker *property.Tracker,
) *override.Resolver {
	return override.NewResolver(override.Config{
		Kind:                  kind,
		Strict:                r.cfg.strict,
		FailOnStrictViolation: r.cfg.failOnStrict,
		Transitive:            r.cfg.transitive,
		Suffix:                r.cfg.strictSuffix(),
		PreserveSnapshot:      r.cfg.calc.PreserveSnapshot,
	}, table,
		override.WithModuleOverrides(modules),
		override.WithNamedTables(named),
		override.WithRecorder(tracker),
		override.WithLogger(r.log),
	)
}

// prefetched merges configured versions with those the translation service
// reported. Configured versions win.
func (r *run) prefetched(available map[coord.GA][]string) map[coord.GA][]string {
	out := make(map[coord.GA][]string, len(available)+len(r.cfg.prefetched))
	for ga, vs := range available {
		out[ga] = vs
	}
	for ga, vs := range r.cfg.prefetched {
		out[ga] = vs
	}
	return out
}

func (r *run) checkPolicy(ctx context.Context, plan *calc.Plan, deps, plugins *override.Table) error {
	if r.cfg.forbidden == ForbiddenAllow || r.cfg.policy == nil {
		return nil
	}
	targets := alignmentTargets(plan, deps, plugins, map[override.Kind][]override.ModuleOverride{
		override.Dependencies: r.dependencyModules,
		override.Plugins:      r.pluginModules,
	})
	forbidden := checkForbidden(ctx, r.cfg.policy, r.cfg.allowedForbidden, targets, r.log)
	if len(forbidden) == 0 {
		return nil
	}
	if r.cfg.forbidden == ForbiddenError {
		return &ForbiddenVersionsError{Versions: forbidden}
	}
	for _, f := range forbidden {
		r.log.Warn("aligning to forbidden version", "coordinate", f.Coordinate.String(), "reason", f.Reason, "source", f.Source)
	}
	r.result.Forbidden = forbidden
	return nil
}

func (r *run) collectWarnings() {
	for _, f := range r.result.Forbidden {
		r.result.Warnings = append(r.result.Warnings,
			"forbidden version "+f.Coordinate.String()+" used for "+f.Source+": "+f.Reason)
	}
	for _, v := range r.result.Violations {
		r.result.Warnings = append(r.result.Warnings,
			"strict alignment rejected "+v.Coordinate.String()+" "+v.Old+" -> "+v.New+" in "+v.Project.String())
	}
	for _, c := range r.result.Conflicts {
		r.result.Warnings = append(r.result.Warnings,
			"property "+c.Name+" in "+c.Project.String()+" kept "+c.Kept+", rejected "+c.Rejected)
	}
}
