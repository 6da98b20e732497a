package realign

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/override"
	"github.com/albertocavalcante/go-realign/project"
	"github.com/albertocavalcante/go-realign/property"
	"github.com/albertocavalcante/go-realign/registry"
)

var (
	parentGA = coord.MustGA("org.acme:parent")
	webGA    = coord.MustGA("org.acme:web")
	slf4jGA  = coord.MustGA("org.slf4j:slf4j-api")
	nettyGA  = coord.MustGA("io.netty:netty-all")
	bomGAV   = coord.MustGAV("org.acme:platform-bom:1.0")
)

// testReactor builds:
//
//	org.acme:parent 1.0.0  netty.version=4.1.0
//	org.acme:web           inherits, slf4j 1.2.0, netty ${netty.version}
func testReactor(t *testing.T) *project.Graph {
	t.Helper()
	parent := &project.Project{
		Group:      "org.acme",
		Artifact:   "parent",
		Version:    "1.0.0",
		Properties: map[string]string{"netty.version": "4.1.0"},
	}
	web := &project.Project{
		Artifact: "web",
		Parent:   &project.Parent{Group: "org.acme", Artifact: "parent", Version: "1.0.0"},
		Dependencies: []*project.Dependency{
			{Group: "org.slf4j", Artifact: "slf4j-api", Version: "1.2.0"},
			{Group: "io.netty", Artifact: "netty-all", Version: "${netty.version}"},
		},
	}
	g, err := project.NewGraph(parent, web)
	require.NoError(t, err)
	return g
}

func lookup(t *testing.T, g *project.Graph, ga coord.GA) *project.Project {
	t.Helper()
	p, ok := g.Lookup(ga)
	require.True(t, ok, ga.String())
	return p
}

func bomSource(t *testing.T, versions map[string]string) override.StaticSource {
	t.Helper()
	deps, err := override.TableFromVersions(versions)
	require.NoError(t, err)
	return override.StaticSource{bomGAV.String(): {Dependencies: deps, Plugins: override.NewTable()}}
}

// stubTranslator answers from a fixed map keyed by "group:artifact:version".
type stubTranslator struct {
	answers map[string]registry.Translation
	err     error
	asked   []coord.GAV
}

func (s *stubTranslator) Translate(_ context.Context, gavs []coord.GAV) ([]registry.Translation, error) {
	s.asked = append(s.asked, gavs...)
	if s.err != nil {
		return nil, s.err
	}
	var out []registry.Translation
	for _, gav := range gavs {
		if t, ok := s.answers[gav.String()]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestAlignSuffixWithBOM(t *testing.T) {
	g := testReactor(t)
	src := bomSource(t, map[string]string{
		"org.slf4j:slf4j-api": "1.2.0.redhat-1",
		"io.netty:netty-all":  "4.1.0.redhat-2",
	})

	result, err := Align(context.Background(), g,
		WithSuffix("redhat-1"),
		WithBOMs(src, bomGAV),
		WithStrict(true),
	)
	require.NoError(t, err)

	parent := lookup(t, g, parentGA)
	web := lookup(t, g, webGA)
	assert.Equal(t, "1.0.0.redhat-1", parent.Version)
	assert.Empty(t, web.Version, "inherited version stays inherited")
	assert.Equal(t, "1.0.0.redhat-1", web.Parent.Version)
	assert.Equal(t, "1.2.0.redhat-1", web.Dependencies[0].Version)
	assert.Equal(t, "${netty.version}", web.Dependencies[1].Version, "reference is kept")
	assert.Equal(t, "4.1.0.redhat-2", parent.Properties["netty.version"])

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []coord.GA{parentGA, webGA}, result.Changed)
	require.Len(t, result.Rewrites, 1)
	assert.Equal(t, "netty.version", result.Rewrites[0].Name)
	assert.Empty(t, result.Violations)

	s := result.Summary()
	assert.Equal(t, 2, s.Projects)
	assert.Equal(t, 2, s.Changed)
	assert.Equal(t, 2, s.Aligned)
	assert.Equal(t, 1, s.Properties)

	require.NotNil(t, result.Diff)
	assert.False(t, result.Diff.IsEmpty())
}

func TestAlignIncrementalFromTranslation(t *testing.T) {
	g := testReactor(t)
	svc := &stubTranslator{answers: map[string]registry.Translation{
		"org.acme:parent:1.0.0": {
			GroupID: "org.acme", ArtifactID: "parent", Version: "1.0.0",
			AvailableVersions: []string{"1.0.0.redhat-3", "1.0.0.redhat-1"},
		},
		"org.slf4j:slf4j-api:1.2.0": {
			GroupID: "org.slf4j", ArtifactID: "slf4j-api", Version: "1.2.0",
			BestMatchVersion: "1.2.0.redhat-5",
		},
	}}

	result, err := Align(context.Background(), g,
		WithIncrementalSuffix("redhat"),
		WithTranslationService(svc),
	)
	require.NoError(t, err)

	assert.Contains(t, svc.asked, coord.MustGAV("io.netty:netty-all:4.1.0"), "references are interpolated before translation")
	assert.Equal(t, "1.0.0.redhat-4", lookup(t, g, parentGA).Version)
	web := lookup(t, g, webGA)
	assert.Equal(t, "1.0.0.redhat-4", web.Parent.Version)
	assert.Equal(t, "1.2.0.redhat-5", web.Dependencies[0].Version)
	assert.Equal(t, "4.1.0", lookup(t, g, parentGA).Properties["netty.version"])
	require.Len(t, result.Projects, 2)
	for _, ch := range result.Projects {
		assert.Equal(t, "1.0.0.redhat-4", ch.New, ch.Project.String())
	}
}

func TestAlignPrecedence(t *testing.T) {
	src := bomSource(t, map[string]string{"org.slf4j:slf4j-api": "1.2.0.redhat-1"})
	svc := &stubTranslator{answers: map[string]registry.Translation{
		"org.slf4j:slf4j-api:1.2.0": {
			GroupID: "org.slf4j", ArtifactID: "slf4j-api", Version: "1.2.0",
			BestMatchVersion: "1.2.0.redhat-2",
		},
	}}

	tests := []struct {
		precedence override.Precedence
		want       string
	}{
		{override.PrimaryFirst, "1.2.0.redhat-1"},
		{override.SecondaryFirst, "1.2.0.redhat-2"},
		{override.PrimaryOnly, "1.2.0.redhat-1"},
		{override.SecondaryOnly, "1.2.0.redhat-2"},
	}
	for _, tt := range tests {
		t.Run(tt.precedence.String(), func(t *testing.T) {
			g := testReactor(t)
			_, err := Align(context.Background(), g,
				WithBOMs(src, bomGAV),
				WithTranslationService(svc),
				WithPrecedence(tt.precedence),
			)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lookup(t, g, webGA).Dependencies[0].Version)
		})
	}
}

func TestAlignCollaboratorFailureLeavesGraphUntouched(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name:    "translation service",
			opts:    []Option{WithTranslationService(&stubTranslator{err: errors.New("connection refused")})},
			wantErr: ErrTranslation,
		},
		{
			name:    "unknown bom",
			opts:    []Option{WithBOMs(override.StaticSource{}, bomGAV)},
			wantErr: override.ErrUnknownBOM,
		},
		{
			name: "unresolvable reference",
			opts: []Option{
				WithBOMs(bomSource(t, map[string]string{"io.netty:netty-all": "4.1.0.redhat-1"}), bomGAV),
				WithDependencyOverrides(map[string]string{"org.slf4j:slf4j-api@*": "bom:" + bomGAV.String()}),
			},
			wantErr: ErrUnresolvableReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testReactor(t)
			before := Snapshot(g)

			opts := append([]Option{WithSuffix("redhat-1")}, tt.opts...)
			_, err := Align(context.Background(), g, opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, before, Snapshot(g))
		})
	}
}

func TestAlignForbiddenVersions(t *testing.T) {
	policy := registry.NewStatic("policy")
	policy.Put(slf4jGA, &registry.Metadata{
		Versions:          []string{"1.2.0", "1.2.0.redhat-1"},
		ForbiddenVersions: map[string]string{"1.2.0.redhat-1": "CVE-2099-0001"},
	})
	src := bomSource(t, map[string]string{"org.slf4j:slf4j-api": "1.2.0.redhat-1"})

	t.Run("error", func(t *testing.T) {
		g := testReactor(t)
		before := Snapshot(g)
		_, err := Align(context.Background(), g,
			WithBOMs(src, bomGAV),
			WithVersionPolicy(policy, ForbiddenError),
		)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrForbiddenVersion))

		var fErr *ForbiddenVersionsError
		require.True(t, errors.As(err, &fErr))
		require.Len(t, fErr.Versions, 1)
		assert.Equal(t, "org.slf4j:slf4j-api:1.2.0.redhat-1", fErr.Versions[0].Coordinate.String())
		assert.Equal(t, "dependency", fErr.Versions[0].Source)
		assert.Contains(t, err.Error(), "CVE-2099-0001")
		assert.Equal(t, before, Snapshot(g))
	})

	t.Run("warn", func(t *testing.T) {
		g := testReactor(t)
		result, err := Align(context.Background(), g,
			WithBOMs(src, bomGAV),
			WithVersionPolicy(policy, ForbiddenWarn),
		)
		require.NoError(t, err)
		require.Len(t, result.Forbidden, 1)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "CVE-2099-0001")
		assert.Equal(t, "1.2.0.redhat-1", lookup(t, g, webGA).Dependencies[0].Version)
	})

	t.Run("allowed", func(t *testing.T) {
		g := testReactor(t)
		result, err := Align(context.Background(), g,
			WithBOMs(src, bomGAV),
			WithVersionPolicy(policy, ForbiddenError),
			WithAllowedForbiddenVersions("org.slf4j:slf4j-api:1.2.0.redhat-1"),
		)
		require.NoError(t, err)
		assert.Empty(t, result.Forbidden)
	})

	t.Run("policy failure is ignored", func(t *testing.T) {
		g := testReactor(t)
		_, err := Align(context.Background(), g,
			WithBOMs(src, bomGAV),
			WithVersionPolicy(&registry.Failing{Err: errors.New("timeout")}, ForbiddenError),
		)
		require.NoError(t, err)
	})
}

func TestAlignStrictViolation(t *testing.T) {
	src := bomSource(t, map[string]string{"org.slf4j:slf4j-api": "2.0.9"})

	g := testReactor(t)
	result, err := Align(context.Background(), g, WithBOMs(src, bomGAV), WithStrict(true))
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "1.2.0", lookup(t, g, webGA).Dependencies[0].Version)
	assert.Len(t, result.Warnings, 1)

	_, err = Align(context.Background(), testReactor(t),
		WithBOMs(src, bomGAV), WithStrict(true), WithFailOnStrictViolation(true))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStrictAlignment))
}

func TestAlignPropertyConflict(t *testing.T) {
	// Two modules aligning netty through the same property to different
	// versions.
	newGraph := func(t *testing.T) *project.Graph {
		t.Helper()
		g := testReactor(t)
		cli := &project.Project{
			Artifact: "cli",
			Parent:   &project.Parent{Group: "org.acme", Artifact: "parent", Version: "1.0.0"},
			Dependencies: []*project.Dependency{
				{Group: "io.netty", Artifact: "netty-all", Version: "${netty.version}"},
			},
		}
		all, err := project.NewGraph(append(g.Projects(), cli)...)
		require.NoError(t, err)
		return all
	}
	opts := func(policy property.ConflictPolicy) []Option {
		return []Option{
			WithDependencyOverrides(map[string]string{
				"io.netty:netty-all@org.acme:web": "4.1.0.redhat-1",
				"io.netty:netty-all@org.acme:cli": "4.1.0.redhat-2",
			}),
			WithPropertyConflictPolicy(policy),
		}
	}

	_, err := Align(context.Background(), newGraph(t), opts(property.Fail)...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPropertyConflict))

	g := newGraph(t)
	result, err := Align(context.Background(), g, opts(property.KeepFirst)...)
	require.NoError(t, err)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "4.1.0.redhat-1", lookup(t, g, parentGA).Properties["netty.version"])
}

func TestAlignSharedPropertyRewrittenOnce(t *testing.T) {
	parent := &project.Project{
		Group:      "org.acme",
		Artifact:   "parent",
		Version:    "1.0.0",
		Properties: map[string]string{"foo.version": "1.0.0"},
	}
	projects := []*project.Project{parent}
	for _, name := range []string{"core", "web", "cli"} {
		projects = append(projects, &project.Project{
			Artifact: name,
			Parent:   &project.Parent{Group: "org.acme", Artifact: "parent", Version: "1.0.0"},
			Dependencies: []*project.Dependency{
				{Group: "org.foo", Artifact: "foo", Version: "${foo.version}"},
			},
		})
	}
	g, err := project.NewGraph(projects...)
	require.NoError(t, err)

	result, err := Align(context.Background(), g,
		WithBOMs(bomSource(t, map[string]string{"org.foo:foo": "1.0.0.redhat-1"}), bomGAV))
	require.NoError(t, err)

	require.Len(t, result.Rewrites, 1)
	assert.Equal(t, parentGA, result.Rewrites[0].Project)
	assert.Equal(t, "foo.version", result.Rewrites[0].Name)
	assert.Equal(t, "1.0.0.redhat-1", parent.Properties["foo.version"])
	assert.Empty(t, result.Conflicts)
	for _, p := range projects[1:] {
		assert.Equal(t, "${foo.version}", p.Dependencies[0].Version, p.Artifact)
	}
}

func TestNewAlignerInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"suffix and incremental", []Option{WithSuffix("redhat-1"), WithIncrementalSuffix("redhat")}},
		{"incremental with build number", []Option{WithIncrementalSuffix("redhat-1")}},
		{"fail without strict", []Option{WithFailOnStrictViolation(true)}},
		{"boms without source", []Option{WithBOMs(nil, bomGAV)}},
		{"forbidden without policy", []Option{WithVersionPolicy(nil, ForbiddenWarn)}},
		{"padding out of range", []Option{WithBuildNumberPadding(42)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAligner(tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}

	_, err := NewAligner(WithDependencyOverrides(map[string]string{"org.slf4j:slf4j-api": "1.0"}))
	assert.True(t, errors.Is(err, ErrInvalidOverrideKey))
}

func TestAlignFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "reactor.yaml")
	out := filepath.Join(dir, "aligned.yaml")
	require.NoError(t, testReactor(t).WriteFile(in))

	result, err := AlignFile(context.Background(), in, out, WithSuffix("redhat-1"))
	require.NoError(t, err)
	assert.Len(t, result.Changed, 2)

	g, err := project.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0.redhat-1", lookup(t, g, parentGA).Version)

	_, err = AlignFile(context.Background(), filepath.Join(dir, "missing.yaml"), out)
	require.Error(t, err)
}
