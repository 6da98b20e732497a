package realign

import (
	"context"
	"errors"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/override"
	"github.com/albertocavalcante/go-realign/project"
)

// translated is what the translation service recommends for a reactor.
type translated struct {
	dependencies *override.Table
	plugins      *override.Table
	// available holds the aligned versions already published per reactor
	// project, for incremental suffixing.
	available map[coord.GA][]string
}

// translate asks svc about every concrete coordinate g declares. Reactor
// projects are asked about too, but their recommendations only feed
// incremental suffixing; inter-module references follow the project
// versions instead.
func translate(ctx context.Context, svc TranslationService, g *project.Graph) (*translated, error) {
	out := &translated{
		dependencies: override.NewTable(),
		plugins:      override.NewTable(),
		available:    make(map[coord.GA][]string),
	}
	if svc == nil {
		return out, nil
	}

	var gavs []coord.GAV
	plugins := make(map[string]bool)
	add := func(p *project.Project, ga coord.GA, raw string) (coord.GAV, bool) {
		v := g.Interpolate(p, raw)
		if v == "" || project.IsExpression(v) {
			return coord.GAV{}, false
		}
		gav := coord.GAV{GA: ga, Version: v}
		gavs = append(gavs, gav)
		return gav, true
	}
	for _, p := range g.Projects() {
		add(p, p.GA(), g.ResolvedVersion(p))
		p.EachDependency(func(_ project.Location, d *project.Dependency) {
			add(p, d.GA(), d.Version)
		})
		p.EachPlugin(func(_ project.Location, pl *project.Plugin) {
			if gav, ok := add(p, pl.GA(), pl.Version); ok {
				plugins[gav.String()] = true
			}
		})
	}
	if len(gavs) == 0 {
		return out, nil
	}

	res, err := svc.Translate(ctx, gavs)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(ErrTranslation, err), "translate reactor"), "coordinates", len(gavs))
	}

	for _, t := range res {
		gav := t.GAV()
		if g.Contains(gav.GA) {
			if len(t.AvailableVersions) > 0 {
				out.available[gav.GA] = append(out.available[gav.GA], t.AvailableVersions...)
			}
			continue
		}
		if t.BestMatchVersion == "" || t.BestMatchVersion == t.Version {
			continue
		}
		table := out.dependencies
		if plugins[gav.String()] {
			table = out.plugins
		}
		// The first answer for a coordinate wins when it is declared at
		// several versions.
		if _, ok := table.Get(gav.GA); !ok {
			table.Set(override.VersionOverride{GA: gav.GA, Version: t.BestMatchVersion})
		}
	}
	return out, nil
}
