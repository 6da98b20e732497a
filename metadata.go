package realign

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/albertocavalcante/go-realign/calc"
	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/override"
)

// target is a version an alignment run is about to write.
type target struct {
	gav    coord.GAV
	source string
}

// alignmentTargets lists the concrete versions a run may write: computed
// project versions, then dependency and plugin override targets. Duplicates
// keep their first source.
func alignmentTargets(plan *calc.Plan, deps, plugins *override.Table, modules map[override.Kind][]override.ModuleOverride) []target {
	var out []target
	seen := make(map[string]bool)
	add := func(ga coord.GA, v, source string) {
		if v == "" || ga.IsPattern() {
			return
		}
		gav := coord.GAV{GA: ga, Version: v}
		if seen[gav.String()] {
			return
		}
		seen[gav.String()] = true
		out = append(out, target{gav: gav, source: source})
	}

	for _, ch := range plan.Changes {
		if ch.Changed() {
			add(ch.Project, ch.New, "project")
		}
	}
	for _, o := range deps.Entries() {
		add(o.Coordinate(), o.TargetVersion(), override.Dependencies.String())
	}
	for _, o := range plugins.Entries() {
		add(o.Coordinate(), o.TargetVersion(), override.Plugins.String())
	}
	for _, kind := range []override.Kind{override.Dependencies, override.Plugins} {
		for _, m := range modules[kind] {
			if m.Ref == nil {
				add(m.Target, m.Value, kind.String())
			}
		}
	}
	return out
}

// checkForbidden asks the version policy about every target concurrently.
// The check fails open: a target whose status cannot be fetched is treated
// as allowed and the run continues.
func checkForbidden(ctx context.Context, policy VersionPolicy, allowed []string, targets []target, logger *slog.Logger) []ForbiddenVersion {
	allowedSet := buildAllowedSet(allowed)
	if allowedSet["all"] {
		return nil
	}

	type result struct {
		idx    int
		reason string
	}

	results := make(chan result, len(targets))
	var wg sync.WaitGroup

	for i := range targets {
		if allowedSet[targets[i].gav.String()] {
			continue
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			gav := targets[idx].gav
			reason, forbidden, err := policy.Forbidden(ctx, gav)
			if err != nil {
				logger.Debug("version policy lookup failed", "coordinate", gav.String(), "error", err)
				return
			}
			if forbidden {
				results <- result{idx: idx, reason: reason}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []ForbiddenVersion
	for res := range results {
		t := targets[res.idx]
		out = append(out, ForbiddenVersion{Coordinate: t.gav, Reason: res.reason, Source: t.source})
	}
	slices.SortFunc(out, func(a, b ForbiddenVersion) int {
		return cmp.Or(
			coord.Compare(a.Coordinate.GA, b.Coordinate.GA),
			strings.Compare(a.Coordinate.Version, b.Coordinate.Version),
		)
	})
	return out
}

// buildAllowedSet creates a set from the allowed list for O(1) lookup.
// Returns nil if the input list is empty to avoid unnecessary allocations.
func buildAllowedSet(allowed []string) map[string]bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		set[v] = true
	}
	return set
}
