// Package config loads the settings of the realign command from a file,
// REALIGN_* environment variables and command line flags, and turns them
// into [realign.Option] values.
//
// Keys are grouped by concern:
//
//	version:
//	  incremental_suffix: redhat
//	override:
//	  strict: true
//	  file: overrides.star
//	  dependencies:
//	    - "org.slf4j:slf4j-api@*=1.7.36.redhat-2"
//	registry:
//	  url: https://da.example.com/api
//	  forbidden: error
//
// Environment variables replace dots with underscores, for example
// REALIGN_VERSION_INCREMENTAL_SUFFIX.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.trai.ch/zerr"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "REALIGN"

// ErrInvalid indicates a configuration that fails validation.
var ErrInvalid = zerr.New("invalid configuration")

// Config is the complete command configuration.
type Config struct {
	// Graph is the reactor snapshot to align.
	Graph string `mapstructure:"graph" validate:"required"`
	// Output is where the aligned reactor is written. Empty means in place.
	Output string `mapstructure:"output"`
	// Report is where the run report is written. Empty means stdout.
	Report       string `mapstructure:"report"`
	ReportFormat string `mapstructure:"report_format" validate:"oneof=text json"`
	Verbose      bool   `mapstructure:"verbose"`

	Version  VersionConfig  `mapstructure:"version"`
	Override OverrideConfig `mapstructure:"override"`
	Registry RegistryConfig `mapstructure:"registry"`
}

// VersionConfig controls project version computation.
type VersionConfig struct {
	Suffix             string `mapstructure:"suffix" validate:"excluded_with=IncrementalSuffix"`
	IncrementalSuffix  string `mapstructure:"incremental_suffix"`
	Override           string `mapstructure:"override"`
	PreserveSnapshot   bool   `mapstructure:"preserve_snapshot"`
	Compat             bool   `mapstructure:"compat"`
	BuildNumberPadding int    `mapstructure:"build_number_padding" validate:"gte=0,lte=10"`
}

// OverrideConfig controls dependency and plugin overrides.
type OverrideConfig struct {
	Strict                bool `mapstructure:"strict"`
	FailOnStrictViolation bool `mapstructure:"fail_on_strict_violation"`
	Transitive            bool `mapstructure:"transitive"`

	Precedence     string `mapstructure:"precedence"`
	ConflictPolicy string `mapstructure:"conflict_policy"`

	// File is a Starlark override file declaring bills of materials and
	// module overrides.
	File string `mapstructure:"file"`
	// BOMs selects bills of materials declared in File. Empty means all of
	// them, in file order.
	BOMs []string `mapstructure:"boms" validate:"dive,required"`

	// Dependencies and Plugins hold "target@module=version" entries.
	Dependencies []string `mapstructure:"dependencies" validate:"dive,required"`
	Plugins      []string `mapstructure:"plugins" validate:"dive,required"`

	// DependencyFile and PluginFile are TOML, YAML or JSON override maps.
	DependencyFile string `mapstructure:"dependency_file"`
	PluginFile     string `mapstructure:"plugin_file"`
}

// RegistryConfig points at the translation service and metadata sources.
type RegistryConfig struct {
	// URL is the REST translation service.
	URL string `mapstructure:"url" validate:"omitempty,url"`
	// Metadata lists metadata sources in lookup order; file:// URLs are
	// local directories.
	Metadata []string `mapstructure:"metadata" validate:"dive,required"`

	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	ChunkSize   int           `mapstructure:"chunk_size" validate:"gte=0"`
	Concurrency int           `mapstructure:"concurrency" validate:"gte=0"`

	Forbidden      string   `mapstructure:"forbidden" validate:"oneof=allow warn error"`
	AllowForbidden []string `mapstructure:"allow_forbidden"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		ReportFormat: "text",
		Version:      VersionConfig{BuildNumberPadding: 1},
		Override:     OverrideConfig{Precedence: "primary-first", ConflictPolicy: "fail"},
		Registry:     RegistryConfig{Forbidden: "allow"},
	}
}

// New returns a viper instance with defaults registered and the
// environment bound.
func New() *viper.Viper {
	v := viper.New()
	d := Defaults()
	for key, value := range map[string]any{
		"graph":                             d.Graph,
		"output":                            d.Output,
		"report":                            d.Report,
		"report_format":                     d.ReportFormat,
		"verbose":                           d.Verbose,
		"version.suffix":                    d.Version.Suffix,
		"version.incremental_suffix":        d.Version.IncrementalSuffix,
		"version.override":                  d.Version.Override,
		"version.preserve_snapshot":         d.Version.PreserveSnapshot,
		"version.compat":                    d.Version.Compat,
		"version.build_number_padding":      d.Version.BuildNumberPadding,
		"override.strict":                   d.Override.Strict,
		"override.fail_on_strict_violation": d.Override.FailOnStrictViolation,
		"override.transitive":               d.Override.Transitive,
		"override.precedence":               d.Override.Precedence,
		"override.conflict_policy":          d.Override.ConflictPolicy,
		"override.file":                     d.Override.File,
		"override.boms":                     []string{},
		"override.dependencies":             []string{},
		"override.plugins":                  []string{},
		"override.dependency_file":          d.Override.DependencyFile,
		"override.plugin_file":              d.Override.PluginFile,
		"registry.url":                      d.Registry.URL,
		"registry.metadata":                 []string{},
		"registry.timeout":                  d.Registry.Timeout,
		"registry.chunk_size":               d.Registry.ChunkSize,
		"registry.concurrency":              d.Registry.Concurrency,
		"registry.forbidden":                d.Registry.Forbidden,
		"registry.allow_forbidden":          []string{},
	} {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, when set, into v and returns the validated result.
// The format follows the file extension.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "read config file"), "path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, zerr.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return zerr.Wrap(err, "validate config")
	}
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		msgs = append(msgs, fe.Namespace()+" fails "+fe.Tag())
	}
	return zerr.With(zerr.Wrap(ErrInvalid, strings.Join(msgs, "; ")), "fields", len(fields))
}
