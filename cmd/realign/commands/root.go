// Package commands implements the CLI commands of realign.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/albertocavalcante/go-realign/config"
)

// CLI represents the command line interface for realign.
type CLI struct {
	rootCmd *cobra.Command
	v       *viper.Viper
	stdout  io.Writer
	stderr  io.Writer
}

// New creates the command tree. Output goes to stdout, logs to stderr.
func New(stdout, stderr io.Writer) *CLI {
	rootCmd := &cobra.Command{
		Use:   "realign",
		Short: "Align the versions of a multi-module build",
		Long: `realign rewrites project, dependency and plugin versions of a reactor
snapshot to a curated set of target versions.

Settings come from a config file (--config), REALIGN_* environment
variables and flags, flags winning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	c := &CLI{
		rootCmd: rootCmd,
		v:       config.New(),
		stdout:  stdout,
		stderr:  stderr,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to a YAML, TOML or JSON configuration file")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	_ = c.v.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(c.newAlignCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Root returns the root command.
func (c *CLI) Root() *cobra.Command {
	return c.rootCmd
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) configPath() string {
	path, _ := c.rootCmd.PersistentFlags().GetString("config")
	return path
}

// newLogger returns a slog logger backed by charmbracelet/log.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "realign",
		ReportTimestamp: true,
	})
	return slog.New(handler)
}
