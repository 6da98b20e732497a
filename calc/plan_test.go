package calc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/project"
	"github.com/albertocavalcante/go-realign/property"
)

// reactor builds:
//
//	org.acme:parent 1.0.0 (revision property)
//	org.acme:api    ${revision}, parent 1.0.0
//	org.acme:impl   inherits, depends on api 1.0.0 and parent-managed tools plugin
func reactor(t *testing.T) *project.Graph {
	t.Helper()
	parent := &project.Project{
		Group:      "org.acme",
		Artifact:   "parent",
		Version:    "1.0.0",
		Properties: map[string]string{"revision": "1.0.0"},
	}
	ref := func() *project.Parent {
		return &project.Parent{Group: "org.acme", Artifact: "parent", Version: "1.0.0"}
	}
	api := &project.Project{Artifact: "api", Version: "${revision}", Parent: ref()}
	impl := &project.Project{
		Artifact: "impl",
		Parent:   ref(),
		Dependencies: []*project.Dependency{
			{Group: "org.acme", Artifact: "api", Version: "1.0.0"},
			{Group: "org.acme", Artifact: "api", Version: "${project.version}", Classifier: "tests"},
			{Group: "org.slf4j", Artifact: "slf4j-api", Version: "1.0.0"},
		},
		Plugins: []*project.Plugin{{Group: "org.acme", Artifact: "parent", Version: "1.0.0"}},
	}
	g, err := project.NewGraph(parent, api, impl)
	require.NoError(t, err)
	return g
}

func TestCalculateAllReactorSync(t *testing.T) {
	g := reactor(t)
	c := New(Config{IncrementalSuffix: "redhat"}, WithPrefetched(map[coord.GA][]string{
		coord.MustGA("org.acme:parent"): {"1.0.0.redhat-1"},
		coord.MustGA("org.acme:api"):    {"1.0.0.redhat-4"},
		coord.MustGA("org.acme:impl"):   nil,
	}))

	plan, err := c.CalculateAll(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, map[coord.GA]string{
		coord.MustGA("org.acme:parent"): "1.0.0.redhat-5",
		coord.MustGA("org.acme:api"):    "1.0.0.redhat-5",
		coord.MustGA("org.acme:impl"):   "1.0.0.redhat-5",
	}, plan.Versions())

	ch, ok := plan.Lookup(coord.MustGA("org.acme:api"))
	require.True(t, ok)
	assert.Equal(t, "${revision}", ch.Declared)
	assert.Equal(t, "1.0.0", ch.Old)
}

func TestCalculateAllCompat(t *testing.T) {
	g := reactor(t)
	c := New(Config{Suffix: "redhat_1", Compat: true})
	plan, err := c.CalculateAll(context.Background(), g)
	require.NoError(t, err)
	for _, ch := range plan.Changes {
		assert.Equal(t, "1.0.0.redhat-1", ch.New, ch.Project.String())
	}
}

func TestApply(t *testing.T) {
	g := reactor(t)
	c := New(Config{Suffix: "redhat-2"})
	plan, err := c.CalculateAll(context.Background(), g)
	require.NoError(t, err)

	tracker := property.NewTracker(g, property.Fail, nil)
	edits, err := c.Apply(g, plan, tracker)
	require.NoError(t, err)
	rewrites := tracker.Apply()

	parent, _ := g.Lookup(coord.MustGA("org.acme:parent"))
	api, _ := g.Lookup(coord.MustGA("org.acme:api"))
	impl, _ := g.Lookup(coord.MustGA("org.acme:impl"))

	assert.Equal(t, "1.0.0.redhat-2", parent.Version)
	assert.Equal(t, "${revision}", api.Version)
	require.Len(t, rewrites, 1)
	assert.Equal(t, "revision", rewrites[0].Name)
	assert.Equal(t, "1.0.0.redhat-2", parent.Properties["revision"])
	assert.Equal(t, "1.0.0.redhat-2", g.ResolvedVersion(api))

	assert.Empty(t, impl.Version)
	assert.Equal(t, "1.0.0.redhat-2", impl.Parent.Version)
	assert.Equal(t, "1.0.0.redhat-2", api.Parent.Version)
	assert.Equal(t, "1.0.0.redhat-2", impl.Dependencies[0].Version)
	assert.Equal(t, "${project.version}", impl.Dependencies[1].Version)
	assert.Equal(t, "1.0.0", impl.Dependencies[2].Version, "external coordinates are untouched")
	assert.Equal(t, "1.0.0.redhat-2", impl.Plugins[0].Version)

	fields := map[Field]int{}
	for _, e := range edits {
		fields[e.Field]++
	}
	assert.Equal(t, map[Field]int{
		FieldVersion:    1,
		FieldProperty:   1,
		FieldParent:     2,
		FieldDependency: 1,
		FieldPlugin:     1,
	}, fields)
}

func TestApplyExternalParent(t *testing.T) {
	p := &project.Project{
		Group:    "org.acme",
		Artifact: "solo",
		Parent:   &project.Parent{Group: "org.other", Artifact: "oss-parent", Version: "7"},
	}
	g, err := project.NewGraph(p)
	require.NoError(t, err)

	c := New(Config{Suffix: "redhat-1"})
	plan, err := c.CalculateAll(context.Background(), g)
	require.NoError(t, err)
	_, err = c.Apply(g, plan, nil)
	require.NoError(t, err)

	assert.Equal(t, "7.redhat-1", p.Version)
	assert.Equal(t, "7", p.Parent.Version)
}
