package property

import (
	"log/slog"
	"slices"
	"sync"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/project"
)

var (
	// ErrPropertyConflict is returned under the Fail policy when two
	// requests disagree on a property value.
	ErrPropertyConflict = zerr.New("conflicting property values")

	// ErrUnknownPolicy is returned for an unrecognised policy name.
	ErrUnknownPolicy = zerr.New("unknown conflict policy")
)

// maxChain bounds ${a} -> ${b} -> ... resolution.
const maxChain = 16

// Rewrite is a property change applied by [Tracker.Apply].
type Rewrite struct {
	Project  coord.GA
	Profile  string
	Name     string
	Old      string
	New      string
	Injected bool
	Drivers  []coord.GA
}

// Conflict records two requests that disagreed on a property value.
type Conflict struct {
	Project  coord.GA
	Name     string
	Kept     string
	Rejected string
	Driver   coord.GA
	Policy   ConflictPolicy
}

type location struct {
	project *project.Project
	profile string
	name    string
}

type request struct {
	loc      location
	old      string
	value    string
	injected bool
	drivers  []coord.GA
}

// Tracker accumulates property rewrites for one reactor. It is safe for
// concurrent use.
type Tracker struct {
	graph  *project.Graph
	policy ConflictPolicy
	logger *slog.Logger

	mu        sync.Mutex
	order     []location
	requests  map[location]*request
	conflicts []Conflict
}

// NewTracker returns a tracker for g. A nil logger discards output.
func NewTracker(g *project.Graph, policy ConflictPolicy, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		graph:    g,
		policy:   policy,
		logger:   logger,
		requests: make(map[location]*request),
	}
}

// Record asks for property name, as seen from p, to become value. Driver is
// the coordinate whose alignment caused the request.
//
// Requests for a property that resolves to the project version are ignored.
// Under the Fail policy a disagreeing request returns an error wrapping
// ErrPropertyConflict; the other policies record a [Conflict] and continue.
func (t *Tracker) Record(p *project.Project, name, value string, driver coord.GA) error {
	loc, current, injected, ok := t.locate(p, name)
	if !ok {
		t.logger.Debug("property follows the project version, not rewriting",
			"project", p.GA().String(), "property", name)
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	req, seen := t.requests[loc]
	if !seen {
		t.requests[loc] = &request{loc: loc, old: current, value: value, injected: injected, drivers: []coord.GA{driver}}
		t.order = append(t.order, loc)
		return nil
	}

	if req.value == value {
		if !slices.Contains(req.drivers, driver) {
			req.drivers = append(req.drivers, driver)
		}
		return nil
	}

	conflict := Conflict{
		Project:  loc.project.GA(),
		Name:     loc.name,
		Kept:     req.value,
		Rejected: value,
		Driver:   driver,
		Policy:   t.policy,
	}
	switch t.policy {
	case Overwrite:
		conflict.Kept, conflict.Rejected = value, req.value
		req.value = value
		req.drivers = []coord.GA{driver}
	case KeepFirst:
	default:
		err := zerr.Wrap(ErrPropertyConflict, "record property")
		err = zerr.With(err, "property", loc.name)
		err = zerr.With(err, "project", loc.project.GA().String())
		err = zerr.With(err, "existing", req.value)
		return zerr.With(err, "requested", value)
	}
	t.conflicts = append(t.conflicts, conflict)
	t.logger.Warn("conflicting property values",
		"property", loc.name,
		"project", conflict.Project.String(),
		"kept", conflict.Kept,
		"rejected", conflict.Rejected,
		"policy", t.policy.String())
	return nil
}

// locate finds where name, as referenced from p, should be rewritten. It
// follows pure ${other} chains to the terminal definition. ok is false when
// the chain ends at the project version.
func (t *Tracker) locate(p *project.Project, name string) (loc location, current string, injected bool, ok bool) {
	from := p
	for range maxChain {
		def, found := t.graph.FindProperty(from, name)
		if !found {
			root := t.graph.InheritanceRoot(p)
			return location{project: root, name: name}, "", true, true
		}
		if project.IsSelfVersionReference(def.Value) {
			return location{}, "", false, false
		}
		ref, isRef := project.ParseReference(def.Value)
		if !isRef || !ref.IsPure() || isBuiltin(ref.Name) {
			return location{project: def.Project, profile: def.Profile, name: name}, def.Value, false, true
		}
		from, name = def.Project, ref.Name
	}
	def, _ := t.graph.FindProperty(from, name)
	return location{project: def.Project, profile: def.Profile, name: name}, def.Value, false, true
}

func isBuiltin(name string) bool {
	switch name {
	case "project.version", "pom.version", "version",
		"project.groupId", "pom.groupId",
		"project.artifactId", "pom.artifactId",
		"project.parent.version", "parent.version":
		return true
	}
	return false
}

// Conflicts returns the conflicts recorded so far.
func (t *Tracker) Conflicts() []Conflict {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.conflicts)
}

// Len returns the number of distinct properties pending a rewrite.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// Apply writes every pending property into its defining project and returns
// the rewrites in request order. Properties whose value does not change are
// skipped.
func (t *Tracker) Apply() []Rewrite {
	t.mu.Lock()
	defer t.mu.Unlock()

	var rewrites []Rewrite
	for _, loc := range t.order {
		req := t.requests[loc]
		if !req.injected && req.old == req.value {
			continue
		}
		setProperty(loc, req.value)
		if req.injected {
			t.logger.Warn("property not defined in the reactor, injecting into inheritance root",
				"property", loc.name,
				"project", loc.project.GA().String(),
				"value", req.value)
		}
		rewrites = append(rewrites, Rewrite{
			Project:  loc.project.GA(),
			Profile:  loc.profile,
			Name:     loc.name,
			Old:      req.old,
			New:      req.value,
			Injected: req.injected,
			Drivers:  slices.Clone(req.drivers),
		})
	}
	return rewrites
}

func setProperty(loc location, value string) {
	if loc.profile == "" {
		loc.project.SetProperty(loc.name, value)
		return
	}
	for _, prof := range loc.project.Profiles {
		if prof.ID == loc.profile {
			if prof.Properties == nil {
				prof.Properties = make(map[string]string)
			}
			prof.Properties[loc.name] = value
			return
		}
	}
}
