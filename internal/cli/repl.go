package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/roach88/dronectl/internal/console"
)

// NewREPLCommand creates the interactive console command.
func NewREPLCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive console (default)",
		Long: `Read console commands from stdin until quit or end of input.

Type 'help' at the prompt for the command list.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(rootOpts, cmd)
		},
	}
}

func runREPL(opts *RootOptions, cmd *cobra.Command) error {
	d, err := opts.newDrone()
	if err != nil {
		return err
	}
	defer d.Close()

	in := console.New(d)
	f := opts.formatter(cmd)
	w := f.Writer
	ctx := cmd.Context()

	d.Telemetry.LogInfo("console", "session started")
	defer d.Telemetry.LogInfo("console", "session ended")

	banner := f.Styles.Banner.
		Border(lipgloss.DoubleBorder()).
		Padding(0, 2).
		Render(fmt.Sprintf("dronectl  vehicle console\nprofile: %s", d.Graph().Profile().Name))
	fmt.Fprintln(w, banner)
	fmt.Fprint(w, "Type 'help' for available commands.\n\n")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprintf(w, "%s > ", f.Styles.Prompt.Render("["+d.Vehicle.CurrentStateName()+"]"))

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return WrapExitError(ExitCommandError, "failed to read input", err)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, f.Styles.Warning.Render("EOF - exiting."))
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		res := in.Execute(ctx, line)
		f.Result(res)
		if res.Quit {
			return nil
		}
		fmt.Fprintln(w)
	}
}
