// Package realign aligns the versions of a multi-module build (a reactor)
// with a curated set of target versions.
//
// One run does three things:
//
//   - Project versions get an alignment qualifier, either a fixed suffix
//     ("1.2.0" -> "1.2.0.redhat-1") or an incremental one whose build
//     number is one past the highest already published.
//   - Dependency and plugin versions are overridden from bills of
//     materials, a translation service and per-module overrides.
//   - Versions declared through ${property} references are rewritten at
//     the property definition, with conflicts settled by a policy.
//
// # Quick Start
//
//	g, err := project.LoadFile("reactor.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := realign.Align(ctx, g,
//	    realign.WithIncrementalSuffix("redhat"),
//	    realign.WithMetadataSource(registry.NewClient("https://da.example.com/api")),
//	)
//
// # Override Sources
//
// Bills of materials are loaded through an [override.Source], for example
// an override file parsed by the overridefile package:
//
//	f, err := overridefile.ParseFile("overrides.star")
//	if err != nil {
//	    return err
//	}
//	result, err := realign.Align(ctx, g,
//	    realign.WithBOMs(f, f.BOMs()...),
//	    realign.WithDependencyOverrides(f.DependencyOverrides()),
//	    realign.WithStrict(true),
//	)
//
// When a translation service is configured too, [WithPrecedence] decides
// which side wins for a coordinate both manage.
//
// # Forbidden Versions
//
// Alignment targets can be checked against a version policy before the
// reactor is modified:
//
//	realign.WithVersionPolicy(client, realign.ForbiddenError)
//
// # Thread Safety
//
// An [Aligner] is safe for concurrent use. A [project.Graph] is not; align
// each graph from one goroutine.
package realign

import (
	"context"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/project"
)

// Align aligns g in place with a one-off [Aligner].
func Align(ctx context.Context, g *project.Graph, opts ...Option) (*Result, error) {
	a, err := NewAligner(opts...)
	if err != nil {
		return nil, err
	}
	return a.Align(ctx, g)
}

// AlignFile loads a reactor description, aligns it and writes it back to
// out. Nothing is written when alignment fails.
func AlignFile(ctx context.Context, in, out string, opts ...Option) (*Result, error) {
	g, err := project.LoadFile(in)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "load reactor"), "path", in)
	}
	result, err := Align(ctx, g, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.WriteFile(out); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "write reactor"), "path", out)
	}
	return result, nil
}
