package override

import (
	"log/slog"
	"strings"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/project"
	"github.com/albertocavalcante/go-realign/version"
)

// Kind selects the declarations a [Resolver] aligns.
type Kind int

const (
	Dependencies Kind = iota
	Plugins
)

func (k Kind) String() string {
	if k == Plugins {
		return "plugin"
	}
	return "dependency"
}

// Config controls a [Resolver].
type Config struct {
	Kind Kind

	// Strict rejects targets that are not a compatible extension of the
	// current version. Module overrides are never checked.
	Strict bool
	// FailOnStrictViolation turns a rejected target into an error.
	FailOnStrictViolation bool
	// Transitive injects unmatched overrides into inheritance roots.
	Transitive bool

	// Suffix is the alignment suffix the strict check expects.
	Suffix           string
	PreserveSnapshot bool
}

// PropertyRecorder receives property rewrites for ${name} versions.
type PropertyRecorder interface {
	Record(p *project.Project, name, value string, driver coord.GA) error
}

// Action is what the resolver did with a declaration.
type Action string

const (
	ActionSet       Action = "set"
	ActionPartial   Action = "partial"
	ActionProperty  Action = "property"
	ActionUnchanged Action = "unchanged"
	ActionSkip      Action = "skip"
	ActionInject    Action = "inject"
)

// Decision records the outcome for one declaration.
type Decision struct {
	Kind       Kind
	Project    coord.GA
	Coordinate coord.GA
	Location   project.Location
	Old        string
	New        string
	Action     Action
	Property   string
	Explicit   bool
	Merged     bool
	Reason     string
}

// Violation is a target rejected by strict alignment.
type Violation struct {
	Kind       Kind
	Project    coord.GA
	Coordinate coord.GA
	Old        string
	New        string
}

// Outcome is the result of [Resolver.Apply].
type Outcome struct {
	Decisions  []Decision
	Violations []Violation
}

// Changed returns the decisions that modified the reactor.
func (o *Outcome) Changed() []Decision {
	var out []Decision
	for _, d := range o.Decisions {
		if (d.Action != ActionSkip && d.Action != ActionUnchanged) || d.Merged {
			out = append(out, d)
		}
	}
	return out
}

// Resolver applies one kind of override to a reactor.
type Resolver struct {
	cfg      Config
	global   *Table
	modules  []ModuleOverride
	named    map[string]*Table
	recorder PropertyRecorder
	logger   *slog.Logger
}

// ResolverOption configures a [Resolver].
type ResolverOption func(*Resolver)

// WithModuleOverrides sets the module override entries.
func WithModuleOverrides(entries []ModuleOverride) ResolverOption {
	return func(r *Resolver) { r.modules = entries }
}

// WithNamedTables sets the tables "bom:" values are resolved against.
func WithNamedTables(tables map[string]*Table) ResolverOption {
	return func(r *Resolver) { r.named = tables }
}

// WithRecorder sets where ${property} rewrites go. Without a recorder,
// property-backed versions are replaced by the literal target.
func WithRecorder(rec PropertyRecorder) ResolverOption {
	return func(r *Resolver) { r.recorder = rec }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver returns a resolver for the global table.
func NewResolver(cfg Config, global *Table, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cfg:    cfg,
		global: global,
		logger: slog.New(slog.DiscardHandler),
	}
	if r.global == nil {
		r.global = NewTable()
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("kind", cfg.Kind.String())
	return r
}

// Apply aligns every project of g. Symbolic module override values are
// resolved before the reactor is touched, so a bad reference leaves g
// unchanged.
func (r *Resolver) Apply(g *project.Graph) (*Outcome, error) {
	values, err := r.resolveValues()
	if err != nil {
		return nil, err
	}

	out := &Outcome{}
	consumed := make(map[coord.GA]bool)
	for _, p := range g.Projects() {
		sc := newScope(p.GA(), r.modules, values, r.global)
		var applyErr error
		visit := func(loc project.Location, ga coord.GA, ver *string, pl *project.Plugin) {
			if applyErr != nil {
				return
			}
			applyErr = r.align(g, p, sc, loc, ga, ver, pl, consumed, out)
		}
		if r.cfg.Kind == Plugins {
			p.EachPlugin(func(loc project.Location, pl *project.Plugin) { visit(loc, pl.GA(), &pl.Version, pl) })
		} else {
			p.EachDependency(func(loc project.Location, d *project.Dependency) { visit(loc, d.GA(), &d.Version, nil) })
		}
		if applyErr != nil {
			return nil, applyErr
		}
	}

	if r.cfg.Transitive {
		r.inject(g, values, consumed, out)
	}
	return out, nil
}

// Validate resolves symbolic module override values without touching any
// project.
func (r *Resolver) Validate() error {
	_, err := r.resolveValues()
	return err
}

// resolveValues maps each module override key to its final value.
func (r *Resolver) resolveValues() (map[string]string, error) {
	values := make(map[string]string, len(r.modules))
	for _, m := range r.modules {
		if m.Ref == nil {
			values[m.Key] = m.Value
			continue
		}
		fail := func(reason string) error {
			err := zerr.Wrap(ErrUnresolvableReference, reason)
			err = zerr.With(err, "key", m.Key)
			return zerr.With(err, "bom", m.Ref.String())
		}
		table, ok := r.named[m.Ref.String()]
		if !ok {
			return nil, fail("bill of materials not loaded")
		}
		o, ok := table.Get(m.Target)
		if !ok {
			return nil, fail("bill of materials does not manage the coordinate")
		}
		values[m.Key] = o.TargetVersion()
	}
	return values, nil
}

func (r *Resolver) align(
	g *project.Graph,
	p *project.Project,
	sc *scope,
	loc project.Location,
	ga coord.GA,
	ver *string,
	pl *project.Plugin,
	consumed map[coord.GA]bool,
	out *Outcome,
) error {
	var (
		target   string
		explicit bool
		src      Override
	)
	if pn, ok := sc.lookup(ga); ok {
		if pn.value == "" {
			r.logger.Debug("excluded by module override", "project", p.GA().String(), "coordinate", ga.String(), "key", pn.key)
			return nil
		}
		target, explicit = pn.value, true
		src, _ = r.global.Get(ga)
	} else if o, ok := sc.working.Get(ga); ok {
		target, src = o.TargetVersion(), o
	} else {
		return nil
	}
	consumed[ga] = true

	cur := *ver
	d := Decision{
		Kind:       r.cfg.Kind,
		Project:    p.GA(),
		Coordinate: ga,
		Location:   loc,
		Old:        cur,
		New:        target,
		Explicit:   explicit,
	}
	log := r.logger.With("project", d.Project.String(), "coordinate", ga.String(), "location", loc.String())

	skip := func(reason string) {
		d.Action, d.Reason = ActionSkip, reason
		out.Decisions = append(out.Decisions, d)
	}
	switch {
	case target == "":
		log.Warn("override has no version, skipping")
		skip("override has no version")
		return nil
	case cur == "":
		log.Warn("declaration has no version, skipping")
		skip("declaration has no version")
		return nil
	case project.IsSelfVersionReference(cur):
		skip("declaration follows the project version")
		return nil
	}

	resolved := g.Interpolate(p, cur)
	if !explicit && r.cfg.Strict && !IsCompatibleExtension(resolved, target, r.cfg.Suffix, r.cfg.PreserveSnapshot) {
		if r.cfg.FailOnStrictViolation {
			err := zerr.Wrap(ErrStrictViolation, "align "+r.cfg.Kind.String())
			err = zerr.With(err, "project", d.Project.String())
			err = zerr.With(err, "coordinate", ga.String())
			err = zerr.With(err, "current", resolved)
			return zerr.With(err, "target", target)
		}
		log.Warn("override is not a compatible extension, skipping", "current", resolved, "target", target)
		out.Violations = append(out.Violations, Violation{
			Kind:       r.cfg.Kind,
			Project:    d.Project,
			Coordinate: ga,
			Old:        resolved,
			New:        target,
		})
		skip("not a compatible extension")
		return nil
	}

	ref, isRef := project.ParseReference(cur)
	switch {
	case resolved == target:
		d.Action = ActionUnchanged
	case isRef && ref.IsPure() && r.recorder != nil:
		if err := r.recorder.Record(p, ref.Name, target, ga); err != nil {
			return err
		}
		d.Action, d.Property = ActionProperty, ref.Name
	case isRef:
		if partial, ok := replacePartial(g, p, ref, target); ok {
			*ver = partial
			d.Action, d.New = ActionPartial, partial
		} else {
			*ver = target
			d.Action = ActionSet
		}
	default:
		*ver = target
		d.Action = ActionSet
	}

	if po, ok := src.(PluginOverride); ok && pl != nil && po.hasPayload() {
		d.Merged = mergePlugin(pl, po)
	}
	if d.Action != ActionUnchanged {
		log.Debug("aligned", "old", cur, "new", d.New, "action", string(d.Action))
	}
	out.Decisions = append(out.Decisions, d)
	return nil
}

// replacePartial keeps the ${name} reference of a composite version when the
// target extends the resolved prefix at a component boundary:
//
//	"${v}.Final" with v=1.2 and target "1.2.Final-redhat-1"
//	  -> "${v}.Final-redhat-1"
func replacePartial(g *project.Graph, p *project.Project, ref project.Reference, target string) (string, bool) {
	value := g.Interpolate(p, "${"+ref.Name+"}")
	if project.IsExpression(value) || project.IsExpression(ref.Prefix) {
		return "", false
	}
	head := ref.Prefix + value
	rest, ok := strings.CutPrefix(target, head)
	if !ok || (rest != "" && !version.IsDelimiter(rest[0])) {
		return "", false
	}
	return ref.Prefix + "${" + ref.Name + "}" + rest, true
}

// inject adds every override no declaration used to the managed section of
// each inheritance root, honouring that root's module overrides.
func (r *Resolver) inject(g *project.Graph, values map[string]string, consumed map[coord.GA]bool, out *Outcome) {
	for _, root := range g.Roots() {
		sc := newScope(root.GA(), r.modules, values, r.global)
		for _, o := range sc.working.Entries() {
			ga := o.Coordinate()
			if consumed[ga] {
				continue
			}
			explicit := false
			if pn, ok := sc.lookup(ga); ok {
				o, explicit = withVersion(o, pn.value), true
			}
			if o.TargetVersion() == "" {
				continue
			}
			if r.cfg.Kind == Plugins {
				root.PluginManagement = append(root.PluginManagement, newPlugin(o))
			} else {
				root.DependencyManagement = append(root.DependencyManagement, &project.Dependency{
					Group:    ga.Group,
					Artifact: ga.Artifact,
					Version:  o.TargetVersion(),
				})
			}
			r.logger.Debug("injected transitive override", "project", root.GA().String(), "coordinate", ga.String(), "version", o.TargetVersion())
			out.Decisions = append(out.Decisions, Decision{
				Kind:       r.cfg.Kind,
				Project:    root.GA(),
				Coordinate: ga,
				Location:   project.Location{Managed: true},
				New:        o.TargetVersion(),
				Action:     ActionInject,
				Explicit:   explicit,
			})
		}
	}
}
