package project

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-realign/coord"
)

const reactorYAML = `
projects:
  - group: org.acme
    artifact: acme-parent
    version: 1.0.0
    properties:
      netty.version: 4.1.100.Final
      jackson.version: ${jackson.base}
      jackson.base: 2.15.2
    profiles:
      - id: release
        properties:
          gpg.version: "3.1.0"
    dependencyManagement:
      - group: io.netty
        artifact: netty-handler
        version: ${netty.version}
  - artifact: acme-core
    parent: {group: org.acme, artifact: acme-parent, version: 1.0.0}
    dependencies:
      - group: com.fasterxml.jackson.core
        artifact: jackson-databind
        version: ${jackson.version}
  - group: org.acme
    artifact: acme-app
    version: ${revision}
    parent: {group: org.acme, artifact: acme-core, version: 1.0.0}
    properties:
      revision: 2.0.0
`

func loadReactor(t *testing.T) *Graph {
	t.Helper()
	g, err := Load(strings.NewReader(reactorYAML))
	require.NoError(t, err)
	return g
}

func TestLoad(t *testing.T) {
	g := loadReactor(t)
	require.Equal(t, 3, g.Len())

	core, ok := g.Lookup(coord.MustGA("org.acme:acme-core"))
	require.True(t, ok, "group should be inherited from the parent reference")
	assert.Equal(t, "1.0.0", core.DeclaredVersion())
	assert.Equal(t, "${jackson.version}", core.Dependencies[0].Version)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("projects:\n  - artifact: a\n    group: b\n    bogus: 1\n"))
	require.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestNewGraphDuplicate(t *testing.T) {
	_, err := NewGraph(
		&Project{Group: "g", Artifact: "a", Version: "1"},
		&Project{Group: "g", Artifact: "a", Version: "2"},
	)
	require.ErrorIs(t, err, ErrDuplicateProject)

	_, err = NewGraph(&Project{Group: "*", Artifact: "a"})
	require.ErrorIs(t, err, ErrInvalidProject)
}

func TestAncestorsAndRoots(t *testing.T) {
	g := loadReactor(t)
	app, _ := g.Lookup(coord.MustGA("org.acme:acme-app"))
	parent, _ := g.Lookup(coord.MustGA("org.acme:acme-parent"))

	chain := g.Ancestors(app)
	require.Len(t, chain, 3)
	assert.Same(t, parent, chain[2])
	assert.Same(t, parent, g.InheritanceRoot(app))

	roots := g.Roots()
	require.Len(t, roots, 1)
	assert.Same(t, parent, roots[0])
}

func TestAncestorsCycle(t *testing.T) {
	a := &Project{Group: "g", Artifact: "a", Version: "1", Parent: &Parent{Group: "g", Artifact: "b", Version: "1"}}
	b := &Project{Group: "g", Artifact: "b", Version: "1", Parent: &Parent{Group: "g", Artifact: "a", Version: "1"}}
	g, err := NewGraph(a, b)
	require.NoError(t, err)
	assert.Len(t, g.Ancestors(a), 2)
}

func TestFindProperty(t *testing.T) {
	g := loadReactor(t)
	app, _ := g.Lookup(coord.MustGA("org.acme:acme-app"))

	def, ok := g.FindProperty(app, "netty.version")
	require.True(t, ok)
	assert.Equal(t, "acme-parent", def.Project.Artifact)
	assert.Equal(t, "4.1.100.Final", def.Value)

	def, ok = g.FindProperty(app, "gpg.version")
	require.True(t, ok)
	assert.Equal(t, "release", def.Profile)

	_, ok = g.FindProperty(app, "missing")
	assert.False(t, ok)
}

func TestInterpolate(t *testing.T) {
	g := loadReactor(t)
	app, _ := g.Lookup(coord.MustGA("org.acme:acme-app"))
	core, _ := g.Lookup(coord.MustGA("org.acme:acme-core"))

	tests := []struct {
		project *Project
		input   string
		want    string
	}{
		{core, "${jackson.version}", "2.15.2"},
		{core, "${netty.version}-x", "4.1.100.Final-x"},
		{core, "${project.version}", "1.0.0"},
		{core, "${project.groupId}:${project.artifactId}", "org.acme:acme-core"},
		{app, "${project.version}", "2.0.0"},
		{core, "${unknown}", "${unknown}"},
		{core, "plain", "plain"},
	}
	for _, tt := range tests {
		if got := g.Interpolate(tt.project, tt.input); got != tt.want {
			t.Errorf("Interpolate(%s, %q) = %q, want %q", tt.project.Artifact, tt.input, got, tt.want)
		}
	}
	assert.Equal(t, "2.0.0", g.ResolvedVersion(app))
}

func TestInterpolateSelfReference(t *testing.T) {
	p := &Project{Group: "g", Artifact: "a", Version: "${x}", Properties: map[string]string{"x": "${x}"}}
	g, err := NewGraph(p)
	require.NoError(t, err)
	assert.Equal(t, "${x}", g.ResolvedVersion(p))
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		input string
		want  Reference
		ok    bool
	}{
		{"${foo}", Reference{Name: "foo"}, true},
		{"${foo}.Final", Reference{Name: "foo", Suffix: ".Final"}, true},
		{"v${foo}", Reference{Prefix: "v", Name: "foo"}, true},
		{"${a}.${b}", Reference{}, false},
		{"1.0", Reference{}, false},
		{"${}", Reference{}, false},
		{"${open", Reference{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseReference(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseReference(%q) = %+v, %v; want %+v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
		if ok && got.String() != tt.input {
			t.Errorf("Reference.String() = %q, want %q", got.String(), tt.input)
		}
	}
	assert.True(t, Reference{Name: "x"}.IsPure())
	assert.True(t, IsSelfVersionReference("${pom.version}"))
	assert.False(t, IsSelfVersionReference("${foo.version}"))
}

func TestEachDependencyOrder(t *testing.T) {
	p := &Project{
		Group: "g", Artifact: "a",
		Dependencies:         []*Dependency{{Group: "x", Artifact: "main"}},
		DependencyManagement: []*Dependency{{Group: "x", Artifact: "managed"}},
		Profiles: []*Profile{{
			ID:           "p1",
			Dependencies: []*Dependency{{Group: "x", Artifact: "prof"}},
		}},
	}
	var got []string
	p.EachDependency(func(loc Location, d *Dependency) {
		got = append(got, loc.String()+"="+d.Artifact)
	})
	assert.Equal(t, []string{"main=main", "managed=managed", "profile:p1/main=prof"}, got)
}

func TestFingerprintAndChanged(t *testing.T) {
	g := loadReactor(t)
	before := g.Fingerprints()
	assert.Empty(t, g.Changed(before))

	core, _ := g.Lookup(coord.MustGA("org.acme:acme-core"))
	core.SetProperty("new.prop", "1")

	changed := g.Changed(before)
	require.Len(t, changed, 1)
	assert.Same(t, core, changed[0])
}

func TestWriteRoundTrip(t *testing.T) {
	g := loadReactor(t)
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, g.WriteFile(path))

	reloaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, g.Len(), reloaded.Len())
	for i, p := range g.Projects() {
		assert.Equal(t, Fingerprint(p), Fingerprint(reloaded.Projects()[i]))
	}

	var buf bytes.Buffer
	require.NoError(t, reloaded.Write(&buf))
	assert.Contains(t, buf.String(), "netty.version: 4.1.100.Final")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidSnapshot))
}
