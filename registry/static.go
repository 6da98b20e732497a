package registry

import (
	"context"
	"sync"

	"github.com/albertocavalcante/go-realign/coord"
)

// Compile-time interface compliance checks
var _ Source = (*Static)(nil)
var _ Source = (*Failing)(nil)
var _ Source = (*Client)(nil)
var _ Source = (*FileRegistry)(nil)
var _ Source = (*Chain)(nil)

// Static is a thread-safe in-memory source, for metadata supplied up front
// and for tests.
type Static struct {
	name  string
	mu    sync.RWMutex
	items map[coord.GA]*Metadata
}

// NewStatic creates an empty in-memory source.
func NewStatic(name string) *Static {
	return &Static{name: name, items: make(map[coord.GA]*Metadata)}
}

// NewStaticVersions builds a source from version lists.
func NewStaticVersions(name string, versions map[coord.GA][]string) *Static {
	s := NewStatic(name)
	for ga, vs := range versions {
		s.Put(ga, &Metadata{Versions: vs})
	}
	return s
}

// Put stores a copy of m for ga.
func (s *Static) Put(ga coord.GA, m *Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[ga] = m.clone()
}

// BaseURL returns the source name.
func (s *Static) BaseURL() string {
	return "static://" + s.name
}

// GetMetadata returns a copy of the stored metadata.
func (s *Static) GetMetadata(ctx context.Context, ga coord.GA) (*Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.items[ga]
	if !ok {
		return nil, notFound(s, ga)
	}
	return m.clone(), nil
}

// Versions returns the published versions of ga.
func (s *Static) Versions(ctx context.Context, ga coord.GA) ([]string, error) {
	return versionsFrom(ctx, s, ga)
}

// Forbidden reports whether gav must not be used.
func (s *Static) Forbidden(ctx context.Context, gav coord.GAV) (string, bool, error) {
	return forbiddenFrom(ctx, s, gav)
}

// Failing is a source that always returns Err. Useful for testing error paths.
type Failing struct {
	Err error
}

// BaseURL identifies the failing source.
func (f *Failing) BaseURL() string {
	return "failing://"
}

// GetMetadata always fails.
func (f *Failing) GetMetadata(ctx context.Context, ga coord.GA) (*Metadata, error) {
	return nil, f.Err
}

// Versions always fails.
func (f *Failing) Versions(ctx context.Context, ga coord.GA) ([]string, error) {
	return nil, f.Err
}

// Forbidden always fails.
func (f *Failing) Forbidden(ctx context.Context, gav coord.GAV) (string, bool, error) {
	return "", false, f.Err
}
