// Package cli implements the typegraph command-line interface.
//
// The commands decode typed JSON documents with the timeline registry:
//   - inspect: decode a document and print its object graph as a tree
//   - check: decode one or more documents and report the first error of each
//   - schemas: list the registered schemas, versions and downgrades
//
// All commands support --verbose (-v) for debug-level logging of the decoder
// (downgrade steps, reference resolution) and --config for a YAML or TOML
// settings file.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/reoring/typegraph"
	"github.com/reoring/typegraph/i18n"
	"github.com/reoring/typegraph/internal/config"
	"github.com/reoring/typegraph/source/gojson"
	"github.com/reoring/typegraph/timeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger   *log.Logger
	Registry *typegraph.Registry

	config  config.Config
	verbose bool
	cfgPath string
	lang    string
	driver  string
}

// New creates a CLI logging to w at level, decoding with the timeline
// registry.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Registry: timeline.NewRegistry(),
		config:   config.Default(),
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "typegraph",
		Short:         "Decode typed, versioned JSON object graphs",
		Long:          `typegraph decodes JSON documents whose objects carry a schema name, a schema version and optional reference-ids into typed object graphs, downgrading newer schema versions on the way.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.cfgPath, "config", "c", "", "configuration file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringVar(&c.lang, "lang", "", "message language (en, ja)")
	root.PersistentFlags().StringVar(&c.driver, "driver", "", "JSON driver (encoding/json, go-json)")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.schemasCommand())

	return root
}

// setup loads the configuration, applies flag overrides and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return err
	}
	if c.lang != "" {
		cfg.Language = c.lang
	}
	if c.driver != "" {
		cfg.JSONDriver = c.driver
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.config = cfg

	if c.verbose {
		c.Logger.SetLevel(log.DebugLevel)
	}
	i18n.SetLanguage(cfg.Language)
	if cfg.JSONDriver == config.DriverGoJSON {
		typegraph.SetJSONDriver(gojson.Driver())
	} else {
		typegraph.UseDefaultJSONDriver()
	}
	c.Logger.Debug("configured", "driver", typegraph.CurrentJSONDriver().Name(), "language", cfg.Language)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// decodeOpt builds decode options from the loaded configuration.
func (c *CLI) decodeOpt(l *log.Logger) typegraph.DecodeOpt {
	opt := c.config.DecodeOpt()
	opt.Registry = c.Registry
	opt.Logger = l
	return opt
}
