package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-realign/coord"
)

func writeMetadata(t *testing.T, root string, ga coord.GA, content string) {
	t.Helper()
	r := NewFileRegistry(root)
	path := r.MetadataPath(ga)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestFileRegistry(t *testing.T) {
	root := t.TempDir()
	ga := coord.MustGA("org.apache.commons:commons-lang3")
	writeMetadata(t, root, ga, `{"versions": ["3.12.0.redhat-1", "3.12.0.redhat-2"], "forbidden_versions": {"3.12.0.redhat-1": "rebuilt"}}`)

	r := NewFileRegistry(root)
	assert.Equal(t, filepath.Join(root, "org", "apache", "commons", "commons-lang3", "metadata.json"), r.MetadataPath(ga))

	ctx := context.Background()
	versions, err := r.Versions(ctx, ga)
	require.NoError(t, err)
	assert.Equal(t, []string{"3.12.0.redhat-1", "3.12.0.redhat-2"}, versions)

	reason, forbidden, err := r.Forbidden(ctx, coord.GAV{GA: ga, Version: "3.12.0.redhat-1"})
	require.NoError(t, err)
	assert.True(t, forbidden)
	assert.Equal(t, "rebuilt", reason)

	_, err = r.GetMetadata(ctx, coord.MustGA("org.none:none"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileRegistryInvalid(t *testing.T) {
	root := t.TempDir()
	ga := coord.MustGA("g:a")
	writeMetadata(t, root, ga, `{"versions": ["1.0", "1.0"]}`)

	_, err := NewFileRegistry(root).GetMetadata(context.Background(), ga)
	require.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestFileRegistryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileRegistry(t.TempDir()).GetMetadata(ctx, coord.MustGA("g:a"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseFileURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"file:///tmp/registry", filepath.Clean("/tmp/registry"), false},
		{"file:///C:/Users/registry", filepath.Clean("C:/Users/registry"), false},
		{"https://example.com", "", true},
	}
	for _, tt := range tests {
		got, err := parseFileURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFileURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFileURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
