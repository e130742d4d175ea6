package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dronectl/internal/console"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	KeepGoing bool // continue after a failed command
}

// CommandResult is the outcome of one scripted console command.
type CommandResult struct {
	Line    int    `json:"line"`
	Command string `json:"command"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RunResult is the JSON output of the run command.
type RunResult struct {
	Commands []CommandResult `json:"commands"`
	Failed   int             `json:"failed"`
	State    string          `json:"state"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script|->",
		Short: "Run console commands from a file",
		Long: `Execute a script of console commands, one per line.

Blank lines and lines starting with '#' are skipped. Execution stops at
the first failing command unless --keep-going is set. Use '-' to read
the script from stdin.

Exit codes:
  0 - Every command succeeded
  1 - At least one command failed
  2 - Command error (unreadable script, invalid profile)

Examples:
  dronectl run flight.txt
  dronectl run flight.txt --keep-going --format json
  echo "enable IMU" | dronectl run -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "continue after a failed command")

	return cmd
}

func runScript(opts *RunOptions, path string, cmd *cobra.Command) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		file, err := os.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open script", err)
		}
		defer file.Close()
		r = file
	}

	d, err := opts.newDrone()
	if err != nil {
		return err
	}
	defer d.Close()

	in := console.New(d)
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	out := RunResult{Commands: []CommandResult{}}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		f.VerboseLog("> %s", line)
		res := in.Execute(ctx, line)
		out.Commands = append(out.Commands, CommandResult{
			Line:    lineNo,
			Command: line,
			Success: res.Success,
			Message: res.Message,
		})

		if !f.JSON() {
			fmt.Fprintf(f.Writer, "%s %s\n", f.Styles.Prompt.Render("["+d.Vehicle.CurrentStateName()+"]"), line)
			f.Result(res)
		}

		if !res.Success {
			out.Failed++
			if !opts.KeepGoing {
				break
			}
		}
		if res.Quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read script", err)
	}

	out.State = d.Vehicle.CurrentStateName()

	if f.JSON() {
		if out.Failed > 0 {
			if err := f.Encode(Response{
				Status: "error",
				Data:   out,
				Error:  &ErrorInfo{Code: ErrCodeCommandFailed, Message: fmt.Sprintf("%d command(s) failed", out.Failed)},
			}); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d command(s) failed", out.Failed))
		}
		return f.Success(out)
	}

	if out.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d command(s) failed", out.Failed))
	}
	return nil
}
