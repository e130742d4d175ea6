package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/dronectl/internal/compiler"
	"github.com/roach88/dronectl/internal/config"
	"github.com/roach88/dronectl/internal/drone"
	"github.com/roach88/dronectl/internal/graph"
	"github.com/roach88/dronectl/internal/ir"
	"github.com/roach88/dronectl/internal/logging"
	"github.com/roach88/dronectl/internal/ui"
)

// RootOptions holds global flags for all commands, and the settings they
// resolve to once the config file and environment are applied.
type RootOptions struct {
	ConfigPath string
	Profile    string
	LogLevel   string
	NoColor    bool
	Verbose    bool
	Format     string // "json" | "text"

	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dronectl CLI. Without a
// subcommand it starts the interactive console.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "dronectl",
		Version: ir.EngineVersion,
		Short:   "dronectl - drone subsystem console",
		Long: `Operate a simulated drone: enable and disable subsystems under a
declarative constraint graph and drive the vehicle through its guarded
flight states.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(opts, cmd)
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.Profile, "profile", "", "path to a CUE vehicle profile (default: embedded quadcopter)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "diagnostic level (debug|info|warn|error)")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable coloured output")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewREPLCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve validates the flags and builds the configuration and logger.
// Precedence: defaults, config file, environment, flags.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if o.Profile != "" {
		cfg.Profile = o.Profile
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	if o.NoColor {
		cfg.Color = config.ColorNever
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	o.Config = cfg
	o.Logger = logger
	return nil
}

// formatter builds an output formatter writing to cmd's output.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	out := cmd.OutOrStdout()
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    out,
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		Styles:    ui.GetStyles(out, o.colorMode()),
	}
}

func (o *RootOptions) colorMode() string {
	if o.Config == nil {
		return config.ColorNever
	}
	return o.Config.Color
}

// settings fills in defaults when a subcommand runs without the root's
// pre-run, as it does when constructed on its own.
func (o *RootOptions) settings() {
	if o.Config == nil {
		o.Config = config.Default()
		if o.Profile != "" {
			o.Config.Profile = o.Profile
		}
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
}

// loadGraph compiles the configured profile, or the embedded default.
func (o *RootOptions) loadGraph(path string) (*graph.Graph, error) {
	if path == "" {
		return compiler.Default()
	}
	return compiler.LoadFile(path)
}

// newDrone wires a drone from the resolved configuration.
func (o *RootOptions) newDrone() (*drone.Drone, error) {
	o.settings()
	g, err := o.loadGraph(o.Config.Profile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load profile", err)
	}
	d, err := drone.New(drone.Options{
		Graph:             g,
		Logger:            o.Logger,
		TelemetryCapacity: o.Config.TelemetryCapacity,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to start drone", err)
	}
	return d, nil
}
