package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stricttuple/internal/config"
	"github.com/roach88/stricttuple/internal/logging"
	"github.com/roach88/stricttuple/render"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Style      string // table style for describe and --table output
	ConfigFile string

	// Schema is the default schema file from configuration.
	Schema string
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the stricttuple CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stricttuple",
		Short: "Validate records against strict record type schemas",
		Long: `Define named, fixed-field record types in CUE or YAML schema files and
check record data against them. Every value is validated when the record is built;
the first failing rule of the first failing field is reported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultFormat, "output format ("+strings.Join(config.ValidFormats, "|")+")")
	cmd.PersistentFlags().StringVar(&opts.Style, "style", config.DefaultStyle, "table style (light|rounded|plain|markdown)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./stricttuple.yaml)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// load resolves configuration layers into opts.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigFile, cmd.Flags())
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}

	o.Format = cfg.Format
	o.Style = cfg.Style
	o.Verbose = cfg.Verbose
	o.Schema = cfg.Schema
	o.Logger = logging.New(cmd.ErrOrStderr(), logging.Level(cfg.Verbose))

	if cfg.File != "" {
		o.Logger.Debug("config loaded", "file", cfg.File)
	}
	return nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}

func (o *RootOptions) tableStyle() render.Style {
	style, err := render.ParseStyle(o.Style)
	if err != nil {
		return render.StyleLight
	}
	return style
}

// schemaArg returns the schema file from args[0], falling back to configuration.
func (o *RootOptions) schemaArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return o.Schema
}
