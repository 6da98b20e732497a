package calc

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/version"
)

// ErrVersionLookup wraps failures of the [VersionSource].
var ErrVersionLookup = zerr.New("version lookup failed")

// DefaultBuildNumberWidth pads incremental build numbers to one digit,
// which leaves them unpadded.
const DefaultBuildNumberWidth = 1

// Config selects how project versions are computed. The first non-empty of
// OverrideVersion, Suffix and IncrementalSuffix wins.
type Config struct {
	// OverrideVersion replaces every project version verbatim.
	OverrideVersion string
	// Suffix is appended as a qualifier, e.g. "redhat-1".
	Suffix string
	// IncrementalSuffix is appended with the next free build number, e.g.
	// "redhat" yields "1.0.0.redhat-4" when "1.0.0.redhat-3" exists.
	IncrementalSuffix string
	// PreserveSnapshot keeps a SNAPSHOT marker on computed versions.
	PreserveSnapshot bool
	// Compat rewrites computed versions to the three-number dotted form.
	Compat bool
	// BuildNumberWidth zero-pads incremental build numbers.
	BuildNumberWidth int
}

// Enabled reports whether the configuration changes any version.
func (c Config) Enabled() bool {
	return c.OverrideVersion != "" || c.Suffix != "" || c.IncrementalSuffix != "" || c.Compat
}

// incremental reports whether incremental suffixing is in effect.
func (c Config) incremental() bool {
	return c.OverrideVersion == "" && c.Suffix == "" && c.IncrementalSuffix != ""
}

// Calculator computes project versions. Published version lookups are
// cached for the calculator's lifetime.
type Calculator struct {
	cfg        Config
	source     VersionSource
	prefetched map[coord.GA][]string
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[coord.GA][]string
}

// Option configures a [Calculator].
type Option func(*Calculator)

// WithVersionSource sets where published versions are looked up.
func WithVersionSource(src VersionSource) Option {
	return func(c *Calculator) { c.source = src }
}

// WithPrefetched supplies published versions known up front. They take
// precedence over the [VersionSource].
func WithPrefetched(versions map[coord.GA][]string) Option {
	return func(c *Calculator) { c.prefetched = versions }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a calculator for cfg.
func New(cfg Config, opts ...Option) *Calculator {
	if cfg.BuildNumberWidth < DefaultBuildNumberWidth {
		cfg.BuildNumberWidth = DefaultBuildNumberWidth
	}
	c := &Calculator{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		cache:  make(map[coord.GA][]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate returns the aligned version for the project ga currently at
// current, before compat conversion. Malformed versions come back
// unchanged.
func (c *Calculator) Calculate(ctx context.Context, ga coord.GA, current string) (string, error) {
	cfg := c.cfg
	if cfg.OverrideVersion != "" {
		return cfg.OverrideVersion, nil
	}
	if version.Parse(current).Malformed() {
		c.logger.Debug("version is not parseable, leaving it unchanged", "project", ga.String(), "version", current)
		return current, nil
	}

	next := current
	switch {
	case cfg.Suffix != "":
		next = version.AppendQualifierSuffix(current, cfg.Suffix)
	case cfg.IncrementalSuffix != "":
		candidates, err := c.candidates(ctx, ga)
		if err != nil {
			return "", err
		}
		next = version.AppendQualifierSuffix(current, cfg.IncrementalSuffix)
		candidates = append(slices.Clone(candidates), current)
		build := version.FindHighestMatchingBuildNumber(next, candidates) + 1
		next = version.SetBuildNumber(next, version.PadBuildNumber(build, cfg.BuildNumberWidth))
	default:
		return current, nil
	}
	if !cfg.PreserveSnapshot {
		next = version.RemoveSnapshot(next)
	}
	return next, nil
}

// candidates returns the published versions of ga.
func (c *Calculator) candidates(ctx context.Context, ga coord.GA) ([]string, error) {
	if versions, ok := c.prefetched[ga]; ok {
		return versions, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if versions, ok := c.cache[ga]; ok {
		return versions, nil
	}
	if c.source == nil {
		c.logger.Debug("no version source configured", "project", ga.String())
		c.cache[ga] = nil
		return nil, nil
	}
	versions, err := c.source.Versions(ctx, ga)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(ErrVersionLookup, err), "lookup published versions"), "project", ga.String())
	}
	c.cache[ga] = versions
	c.logger.Debug("published versions", "project", ga.String(), "count", len(versions))
	return versions, nil
}
