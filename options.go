package realign

import (
	"context"
	"log/slog"
	"maps"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/calc"
	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/override"
	"github.com/albertocavalcante/go-realign/property"
	"github.com/albertocavalcante/go-realign/registry"
	"github.com/albertocavalcante/go-realign/version"
)

// maxBuildNumberWidth bounds zero padding of build numbers.
const maxBuildNumberWidth = 10

// TranslationService maps declared coordinates to recommended versions.
// [registry.Client] implements it.
type TranslationService interface {
	Translate(ctx context.Context, gavs []coord.GAV) ([]registry.Translation, error)
}

// VersionPolicy says whether a version must not be used. The registry
// sources implement it.
type VersionPolicy interface {
	Forbidden(ctx context.Context, gav coord.GAV) (reason string, forbidden bool, err error)
}

// Option configures an alignment run.
type Option func(*config) error

// config holds all alignment configuration.
type config struct {
	calc calc.Config

	strict       bool
	failOnStrict bool
	transitive   bool

	precedence     override.Precedence
	conflictPolicy property.ConflictPolicy

	bomSource  override.Source
	boms       []coord.GAV
	translator TranslationService

	dependencyOverrides map[string]string
	pluginOverrides     map[string]string

	metadata   calc.VersionSource
	prefetched map[coord.GA][]string

	policy           VersionPolicy
	forbidden        ForbiddenBehavior
	allowedForbidden []string

	// logger is nil unless WithLogger was used; see log().
	logger *slog.Logger
}

// WithSuffix appends a fixed qualifier suffix, such as "redhat-1", to every
// project version.
func WithSuffix(suffix string) Option {
	return func(c *config) error {
		c.calc.Suffix = suffix
		return nil
	}
}

// WithIncrementalSuffix appends a qualifier suffix, such as "redhat", with
// the next build number not yet published.
func WithIncrementalSuffix(suffix string) Option {
	return func(c *config) error {
		c.calc.IncrementalSuffix = suffix
		return nil
	}
}

// WithOverrideVersion sets every project version verbatim.
func WithOverrideVersion(v string) Option {
	return func(c *config) error {
		c.calc.OverrideVersion = v
		return nil
	}
}

// WithPreserveSnapshot keeps SNAPSHOT markers on computed project versions.
func WithPreserveSnapshot(preserve bool) Option {
	return func(c *config) error {
		c.calc.PreserveSnapshot = preserve
		return nil
	}
}

// WithCompatVersions rewrites computed project versions to the
// major.minor.micro.qualifier form.
func WithCompatVersions(compat bool) Option {
	return func(c *config) error {
		c.calc.Compat = compat
		return nil
	}
}

// WithBuildNumberPadding zero-pads incremental build numbers to width
// digits.
func WithBuildNumberPadding(width int) Option {
	return func(c *config) error {
		if width < 0 || width > maxBuildNumberWidth {
			return zerr.With(zerr.Wrap(ErrInvalidConfig, "build number padding out of range"), "width", width)
		}
		c.calc.BuildNumberWidth = width
		return nil
	}
}

// WithStrict only accepts override targets that extend the current version
// with an alignment qualifier.
func WithStrict(strict bool) Option {
	return func(c *config) error {
		c.strict = strict
		return nil
	}
}

// WithFailOnStrictViolation aborts on the first target strict mode rejects.
func WithFailOnStrictViolation(fail bool) Option {
	return func(c *config) error {
		c.failOnStrict = fail
		return nil
	}
}

// WithOverrideTransitive adds overrides that matched no declaration to the
// managed sections of each inheritance root.
func WithOverrideTransitive(transitive bool) Option {
	return func(c *config) error {
		c.transitive = transitive
		return nil
	}
}

// WithPrecedence orders bill of materials overrides against translation
// service overrides.
func WithPrecedence(p override.Precedence) Option {
	return func(c *config) error {
		c.precedence = p
		return nil
	}
}

// WithPropertyConflictPolicy sets how disagreeing property rewrites are
// resolved.
func WithPropertyConflictPolicy(p property.ConflictPolicy) Option {
	return func(c *config) error {
		c.conflictPolicy = p
		return nil
	}
}

// WithBOMs loads override tables for boms from src. When two boms manage
// the same coordinate the one listed first wins.
func WithBOMs(src override.Source, boms ...coord.GAV) Option {
	return func(c *config) error {
		c.bomSource = src
		c.boms = append(c.boms, boms...)
		return nil
	}
}

// WithTranslationService asks svc for recommended versions of every
// declared coordinate.
func WithTranslationService(svc TranslationService) Option {
	return func(c *config) error {
		c.translator = svc
		return nil
	}
}

// WithDependencyOverrides adds dependency module overrides, keyed
// "group:artifact@module" or "group:artifact@*".
func WithDependencyOverrides(overrides map[string]string) Option {
	return func(c *config) error {
		if c.dependencyOverrides == nil {
			c.dependencyOverrides = make(map[string]string, len(overrides))
		}
		maps.Copy(c.dependencyOverrides, overrides)
		return nil
	}
}

// WithPluginOverrides adds plugin module overrides.
func WithPluginOverrides(overrides map[string]string) Option {
	return func(c *config) error {
		if c.pluginOverrides == nil {
			c.pluginOverrides = make(map[string]string, len(overrides))
		}
		maps.Copy(c.pluginOverrides, overrides)
		return nil
	}
}

// WithMetadataSource sets where published versions are looked up for
// incremental suffixing.
func WithMetadataSource(src calc.VersionSource) Option {
	return func(c *config) error {
		c.metadata = src
		return nil
	}
}

// WithPrefetchedVersions supplies published versions known up front. They
// take precedence over the metadata source and the translation service.
func WithPrefetchedVersions(versions map[coord.GA][]string) Option {
	return func(c *config) error {
		if c.prefetched == nil {
			c.prefetched = make(map[coord.GA][]string, len(versions))
		}
		maps.Copy(c.prefetched, versions)
		return nil
	}
}

// WithVersionPolicy checks every alignment target against policy.
func WithVersionPolicy(policy VersionPolicy, behavior ForbiddenBehavior) Option {
	return func(c *config) error {
		c.policy = policy
		c.forbidden = behavior
		return nil
	}
}

// WithAllowedForbiddenVersions exempts "group:artifact:version" entries
// from the version policy. "all" exempts everything.
func WithAllowedForbiddenVersions(allowed ...string) Option {
	return func(c *config) error {
		c.allowedForbidden = append(c.allowedForbidden, allowed...)
		return nil
	}
}

// WithLogger sets a structured logger for alignment diagnostics.
// If not set, logging is disabled.
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "realign")
//	realign.Align(ctx, g, realign.WithSuffix("redhat-1"), realign.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *config) validate() error {
	invalid := func(msg string) error {
		return zerr.Wrap(ErrInvalidConfig, msg)
	}
	if c.calc.Suffix != "" && c.calc.IncrementalSuffix != "" {
		return invalid("suffix and incremental suffix are mutually exclusive")
	}
	if c.calc.Suffix != "" && version.Parse("0."+trimDelims(c.calc.Suffix)).Malformed() {
		return zerr.With(invalid("suffix is not a valid qualifier"), "suffix", c.calc.Suffix)
	}
	if s := c.calc.IncrementalSuffix; s != "" {
		v := version.Parse("0." + trimDelims(s))
		if v.Malformed() || v.BuildNumber() != "" || v.IsSnapshot() {
			return zerr.With(invalid("incremental suffix must be a bare qualifier"), "suffix", s)
		}
	}
	if c.failOnStrict && !c.strict {
		return invalid("failing on strict violations requires strict mode")
	}
	if len(c.boms) > 0 && c.bomSource == nil {
		return invalid("bills of materials need an override source")
	}
	if c.forbidden != ForbiddenAllow && c.policy == nil {
		return invalid("forbidden version checks need a version policy")
	}
	return nil
}

func trimDelims(s string) string {
	for s != "" && version.IsDelimiter(s[0]) {
		s = s[1:]
	}
	return s
}

// strictSuffix is the qualifier strict mode expects override targets to
// add.
func (c *config) strictSuffix() string {
	if c.calc.Suffix != "" {
		return c.calc.Suffix
	}
	return c.calc.IncrementalSuffix
}

// log returns the configured logger, or one that discards everything.
func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newConfig applies opts and validates the result.
func newConfig(opts ...Option) (*config, error) {
	c := &config{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
