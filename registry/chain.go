package registry

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
)

// Chain looks artifacts up in several sources.
//
// Sources are tried in order. The first source that knows an artifact serves
// every later lookup of that artifact, so versions never mix between sources.
// A source failing for any reason other than not-found is skipped; the error
// is returned only when no source knows the artifact.
type Chain struct {
	sources []Source

	owner   map[coord.GA]int
	ownerMu sync.RWMutex
}

// NewChain creates a chain over sources.
func NewChain(sources ...Source) (*Chain, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	return &Chain{sources: sources, owner: make(map[coord.GA]int)}, nil
}

// NewSource creates a source for a URL: file:// URLs open a FileRegistry,
// anything else is a REST Client.
func NewSource(u string, opts ...ClientOption) (Source, error) {
	if strings.HasPrefix(u, "file://") {
		path, err := parseFileURL(u)
		if err != nil {
			return nil, err
		}
		return NewFileRegistry(path), nil
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return nil, zerr.With(zerr.New("unsupported registry URL"), "url", u)
	}
	return NewClient(u, opts...), nil
}

// NewChainFromURLs creates a chain from registry URLs, in order.
func NewChainFromURLs(urls []string, opts ...ClientOption) (*Chain, error) {
	sources := make([]Source, 0, len(urls))
	for _, u := range urls {
		src, err := NewSource(u, opts...)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return NewChain(sources...)
}

// BaseURL returns the URL of the first source.
func (c *Chain) BaseURL() string {
	return c.sources[0].BaseURL()
}

// Sources returns the sources in lookup order.
func (c *Chain) Sources() []Source {
	return append([]Source(nil), c.sources...)
}

// GetMetadata returns metadata from the source that owns ga.
func (c *Chain) GetMetadata(ctx context.Context, ga coord.GA) (*Metadata, error) {
	c.ownerMu.RLock()
	idx, found := c.owner[ga]
	c.ownerMu.RUnlock()
	if found {
		return c.sources[idx].GetMetadata(ctx, ga)
	}

	var failures []error
	for i, src := range c.sources {
		m, err := src.GetMetadata(ctx, ga)
		if err == nil {
			c.ownerMu.Lock()
			if _, exists := c.owner[ga]; !exists {
				c.owner[ga] = i
			}
			c.ownerMu.Unlock()
			return m, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !IsNotFound(err) {
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return nil, zerr.With(zerr.Wrap(errors.Join(failures...), "no registry could serve metadata"), "coordinate", ga.String())
	}
	return nil, notFound(c, ga)
}

// Versions returns the published versions of ga.
func (c *Chain) Versions(ctx context.Context, ga coord.GA) ([]string, error) {
	return versionsFrom(ctx, c, ga)
}

// Forbidden reports whether gav must not be used.
func (c *Chain) Forbidden(ctx context.Context, gav coord.GAV) (string, bool, error) {
	return forbiddenFrom(ctx, c, gav)
}
