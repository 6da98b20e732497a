package registry

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
)

// FileRegistry serves metadata from a local directory laid out as
// {root}/{group as path}/{artifact}/metadata.json.
//
// Create one from a native path with NewFileRegistry or from a file:// URL
// with NewSource.
type FileRegistry struct {
	rootPath      string
	metadataCache sync.Map // map[coord.GA]*Metadata
}

// NewFileRegistry creates a registry rooted at rootPath.
func NewFileRegistry(rootPath string) *FileRegistry {
	return &FileRegistry{rootPath: filepath.Clean(rootPath)}
}

// parseFileURL extracts the path from a file:// URL.
// Handles both Unix (file:///path) and Windows (file:///C:/path) formats.
func parseFileURL(u string) (string, error) {
	if !strings.HasPrefix(u, "file://") {
		return "", zerr.With(zerr.New("not a file:// URL"), "url", u)
	}
	path := strings.TrimPrefix(u, "file://")
	if len(path) >= 3 && path[0] == '/' && isWindowsDriveLetter(path[1]) && path[2] == ':' {
		path = path[1:]
	}
	return filepath.Clean(path), nil
}

func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// BaseURL returns the file:// URL for this registry.
func (r *FileRegistry) BaseURL() string {
	urlPath := filepath.ToSlash(r.rootPath)
	if runtime.GOOS == "windows" && len(urlPath) >= 2 && isWindowsDriveLetter(urlPath[0]) && urlPath[1] == ':' {
		urlPath = "/" + urlPath
	}
	return "file://" + urlPath
}

// MetadataPath returns where the metadata of ga lives.
func (r *FileRegistry) MetadataPath(ga coord.GA) string {
	parts := append([]string{r.rootPath}, strings.Split(ga.Group, ".")...)
	parts = append(parts, ga.Artifact, "metadata.json")
	return filepath.Join(parts...)
}

// GetMetadata reads and validates the metadata of ga.
func (r *FileRegistry) GetMetadata(ctx context.Context, ga coord.GA) (*Metadata, error) {
	if cached, ok := r.metadataCache.Load(ga); ok {
		return cached.(*Metadata), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.MetadataPath(ga)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(r, ga)
		}
		return nil, zerr.With(zerr.Wrap(err, "read metadata"), "path", path)
	}

	metadata, err := ValidateMetadataJSON(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	r.metadataCache.Store(ga, metadata)
	return metadata, nil
}

// Versions returns the published versions of ga.
func (r *FileRegistry) Versions(ctx context.Context, ga coord.GA) ([]string, error) {
	return versionsFrom(ctx, r, ga)
}

// Forbidden reports whether gav must not be used.
func (r *FileRegistry) Forbidden(ctx context.Context, gav coord.GAV) (string, bool, error) {
	return forbiddenFrom(ctx, r, gav)
}
