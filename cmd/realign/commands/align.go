package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	realign "github.com/albertocavalcante/go-realign"
	"github.com/albertocavalcante/go-realign/config"
	"github.com/albertocavalcante/go-realign/report"
)

// alignFlags maps flag names to configuration keys.
var alignFlags = []struct {
	name, key string
}{
	{"graph", "graph"},
	{"output", "output"},
	{"report", "report"},
	{"report-format", "report_format"},
	{"suffix", "version.suffix"},
	{"incremental-suffix", "version.incremental_suffix"},
	{"override-version", "version.override"},
	{"preserve-snapshot", "version.preserve_snapshot"},
	{"compat", "version.compat"},
	{"build-number-padding", "version.build_number_padding"},
	{"strict", "override.strict"},
	{"fail-on-strict-violation", "override.fail_on_strict_violation"},
	{"transitive", "override.transitive"},
	{"precedence", "override.precedence"},
	{"conflict-policy", "override.conflict_policy"},
	{"override-file", "override.file"},
	{"bom", "override.boms"},
	{"dependency-override", "override.dependencies"},
	{"plugin-override", "override.plugins"},
	{"dependency-file", "override.dependency_file"},
	{"plugin-file", "override.plugin_file"},
	{"registry-url", "registry.url"},
	{"metadata", "registry.metadata"},
	{"timeout", "registry.timeout"},
	{"forbidden", "registry.forbidden"},
	{"allow-forbidden", "registry.allow_forbidden"},
}

func (c *CLI) newAlignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align [graph]",
		Short: "Align a reactor snapshot",
		Example: `  realign align reactor.yaml --incremental-suffix redhat --registry-url https://da.example.com/api
  realign align -g reactor.yaml -o aligned.yaml --override-file overrides.star --strict
  realign align reactor.yaml --suffix redhat-1 -d 'org.slf4j:slf4j-api@*=1.7.36.redhat-2'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.v.Set("graph", args[0])
			}
			return c.runAlign(cmd)
		},
	}

	f := cmd.Flags()
	f.StringP("graph", "g", "", "Reactor snapshot to align")
	f.StringP("output", "o", "", "Where to write the aligned reactor (default: in place)")
	f.String("report", "", "Where to write the run report (default: stdout)")
	f.String("report-format", "text", "Report format: text or json")

	f.String("suffix", "", "Static qualifier suffix, e.g. redhat-1")
	f.String("incremental-suffix", "", "Incremental qualifier suffix, e.g. redhat")
	f.String("override-version", "", "Set every project version verbatim")
	f.Bool("preserve-snapshot", false, "Keep SNAPSHOT markers on project versions")
	f.Bool("compat", false, "Rewrite project versions to major.minor.micro.qualifier")
	f.Int("build-number-padding", 1, "Zero-pad incremental build numbers to this width")

	f.Bool("strict", false, "Only accept targets that extend the current version")
	f.Bool("fail-on-strict-violation", false, "Abort on the first strict violation")
	f.Bool("transitive", false, "Manage unmatched overrides in inheritance roots")
	f.String("precedence", "primary-first", "Bill of materials vs translation service precedence")
	f.String("conflict-policy", "fail", "Property conflict policy: fail, overwrite or keep-first")

	f.String("override-file", "", "Starlark override file")
	f.StringSlice("bom", nil, "Bill of materials from the override file to apply (default: all)")
	f.StringArrayP("dependency-override", "d", nil, "Dependency override target@module=version")
	f.StringArrayP("plugin-override", "p", nil, "Plugin override target@module=version")
	f.String("dependency-file", "", "TOML, YAML or JSON dependency override map")
	f.String("plugin-file", "", "TOML, YAML or JSON plugin override map")

	f.String("registry-url", "", "Translation service base URL")
	f.StringSlice("metadata", nil, "Metadata sources in lookup order (http(s):// or file://)")
	f.Duration("timeout", 0, "Registry request timeout")
	f.String("forbidden", "allow", "Forbidden version behavior: allow, warn or error")
	f.StringSlice("allow-forbidden", nil, "Forbidden group:artifact:version to accept, or all")

	for _, fl := range alignFlags {
		_ = c.v.BindPFlag(fl.key, f.Lookup(fl.name))
	}
	return cmd
}

func (c *CLI) runAlign(cmd *cobra.Command) error {
	cfg, err := config.Load(c.v, c.configPath())
	if err != nil {
		return err
	}
	logger := newLogger(c.stderr, cfg.Verbose)

	opts, err := cfg.Options(logger)
	if err != nil {
		return err
	}

	out := cfg.Output
	if out == "" {
		out = cfg.Graph
	}
	result, err := realign.AlignFile(cmd.Context(), cfg.Graph, out, opts...)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if cfg.Report != "" {
		f, err := os.Create(cfg.Report)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "create report"), "path", cfg.Report)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return report.Write(w, result, cfg.ReportFormat)
}
