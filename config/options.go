package config

import (
	"log/slog"
	"maps"

	"go.trai.ch/zerr"

	realign "github.com/albertocavalcante/go-realign"
	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/override"
	"github.com/albertocavalcante/go-realign/overridefile"
	"github.com/albertocavalcante/go-realign/property"
	"github.com/albertocavalcante/go-realign/registry"
)

// Options converts c into alignment options. Override files are read and
// registry clients created here; nothing is fetched yet.
func (c *Config) Options(logger *slog.Logger) ([]realign.Option, error) {
	opts := []realign.Option{
		realign.WithSuffix(c.Version.Suffix),
		realign.WithIncrementalSuffix(c.Version.IncrementalSuffix),
		realign.WithOverrideVersion(c.Version.Override),
		realign.WithPreserveSnapshot(c.Version.PreserveSnapshot),
		realign.WithCompatVersions(c.Version.Compat),
		realign.WithBuildNumberPadding(c.Version.BuildNumberPadding),
		realign.WithStrict(c.Override.Strict),
		realign.WithFailOnStrictViolation(c.Override.FailOnStrictViolation),
		realign.WithOverrideTransitive(c.Override.Transitive),
	}
	if logger != nil {
		opts = append(opts, realign.WithLogger(logger))
	}

	precedence, err := override.ParsePrecedence(c.Override.Precedence)
	if err != nil {
		return nil, err
	}
	policy, err := property.ParseConflictPolicy(c.Override.ConflictPolicy)
	if err != nil {
		return nil, err
	}
	opts = append(opts, realign.WithPrecedence(precedence), realign.WithPropertyConflictPolicy(policy))

	overrideOpts, err := c.overrideOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, overrideOpts...)

	registryOpts, err := c.registryOptions()
	if err != nil {
		return nil, err
	}
	return append(opts, registryOpts...), nil
}

func (c *Config) overrideOptions() ([]realign.Option, error) {
	deps := make(map[string]string)
	plugins := make(map[string]string)
	var opts []realign.Option

	if c.Override.File != "" {
		f, err := overridefile.ParseFile(c.Override.File)
		if err != nil {
			return nil, err
		}
		boms := f.BOMs()
		if len(c.Override.BOMs) > 0 {
			boms = nil
			for _, s := range c.Override.BOMs {
				gav, err := coord.ParseGAV(s)
				if err != nil {
					return nil, zerr.With(zerr.Wrap(ErrInvalid, "bad bill of materials coordinate"), "bom", s)
				}
				boms = append(boms, gav)
			}
		}
		opts = append(opts, realign.WithBOMs(f, boms...))
		maps.Copy(deps, f.DependencyOverrides())
		maps.Copy(plugins, f.PluginOverrides())
	} else if len(c.Override.BOMs) > 0 {
		return nil, zerr.Wrap(ErrInvalid, "bills of materials need an override file")
	}

	for _, src := range []struct {
		path string
		into map[string]string
	}{
		{c.Override.DependencyFile, deps},
		{c.Override.PluginFile, plugins},
	} {
		if src.path == "" {
			continue
		}
		m, err := override.LoadOverrideFile(src.path)
		if err != nil {
			return nil, err
		}
		maps.Copy(src.into, m)
	}

	// Command line entries win over files.
	for _, src := range []struct {
		entries []string
		into    map[string]string
	}{
		{c.Override.Dependencies, deps},
		{c.Override.Plugins, plugins},
	} {
		parsed, err := override.ParseModuleOverrideList(src.entries)
		if err != nil {
			return nil, err
		}
		for _, m := range parsed {
			src.into[m.Key] = rawValue(m)
		}
	}

	return append(opts,
		realign.WithDependencyOverrides(deps),
		realign.WithPluginOverrides(plugins),
	), nil
}

// rawValue restores the value of a parsed module override.
func rawValue(m override.ModuleOverride) string {
	if m.Ref != nil {
		return override.ReferencePrefix + m.Ref.String()
	}
	return m.Value
}

func (c *Config) registryOptions() ([]realign.Option, error) {
	clientOpts := []registry.ClientOption{
		registry.WithChunkSize(c.Registry.ChunkSize),
		registry.WithConcurrency(c.Registry.Concurrency),
	}
	if c.Registry.Timeout > 0 {
		clientOpts = append(clientOpts, registry.WithTimeout(c.Registry.Timeout))
	}

	var opts []realign.Option
	var policy realign.VersionPolicy
	if c.Registry.URL != "" {
		client := registry.NewClient(c.Registry.URL, clientOpts...)
		opts = append(opts, realign.WithTranslationService(client), realign.WithMetadataSource(client))
		policy = client
	}
	if len(c.Registry.Metadata) > 0 {
		chain, err := registry.NewChainFromURLs(c.Registry.Metadata, clientOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, realign.WithMetadataSource(chain))
		policy = chain
	}

	behavior, err := realign.ParseForbiddenBehavior(c.Registry.Forbidden)
	if err != nil {
		return nil, err
	}
	if behavior != realign.ForbiddenAllow {
		if policy == nil {
			return nil, zerr.Wrap(ErrInvalid, "forbidden version checks need a registry")
		}
		opts = append(opts,
			realign.WithVersionPolicy(policy, behavior),
			realign.WithAllowedForbiddenVersions(c.Registry.AllowForbidden...))
	}
	return opts, nil
}
