package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	FSM bool // export the vehicle state machine instead
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the dependency graph as DOT",
		Long: `Print the subsystem constraint graph of the loaded profile in Graphviz
DOT format. With --fsm, print the vehicle state machine instead.

Examples:
  dronectl graph | dot -Tsvg > deps.svg
  dronectl graph --fsm
  dronectl graph --profile ./fixedwing.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.FSM, "fsm", false, "export the vehicle state machine")

	return cmd
}

func runGraph(opts *GraphOptions, cmd *cobra.Command) error {
	d, err := opts.newDrone()
	if err != nil {
		return err
	}
	defer d.Close()

	var dot string
	if opts.FSM {
		dot = d.Vehicle.ExportStateGraph()
	} else {
		dot = d.Engine.ExportDependencyGraph()
	}

	f := opts.formatter(cmd)
	if f.JSON() {
		kind := "dependencies"
		if opts.FSM {
			kind = "fsm"
		}
		return f.Success(map[string]string{"kind": kind, "dot": dot})
	}
	fmt.Fprint(f.Writer, dot)
	return nil
}
