package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dronectl/internal/compiler"
	"github.com/roach88/dronectl/internal/graph"
)

// ProfileSummary is the validate command's report for a valid profile.
type ProfileSummary struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Subsystems  int    `json:"subsystems"`
	Groups      int    `json:"groups"`
	Relations   int    `json:"relations"`
	FlightModes int    `json:"flight_modes"`
	Fingerprint string `json:"fingerprint"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [profile.cue]",
		Short: "Validate a vehicle profile",
		Long: `Compile and validate a CUE vehicle profile, then report its size and
fingerprint. Without an argument the --profile flag, the configured
profile, or the embedded default is checked, in that order.

Exit codes:
  0 - Profile is valid
  1 - Profile has validation errors
  2 - Command error (unreadable file, CUE syntax error)

Examples:
  dronectl validate ./quad.cue
  dronectl validate --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	opts.settings()
	if path == "" {
		path = opts.Config.Profile
	}
	source := path
	if source == "" {
		source = compiler.DefaultProfileName
	}

	f := opts.formatter(cmd)
	f.VerboseLog("Validating %s", source)

	g, err := opts.loadGraph(path)
	if err != nil {
		var perr *compiler.ProfileError
		if errors.As(err, &perr) {
			if err := f.Error(ErrCodeProfile, fmt.Sprintf("%s: invalid profile", perr.Filename), perr.Errors); err != nil {
				return err
			}
			if !f.JSON() {
				for _, ve := range perr.Errors {
					fmt.Fprintf(f.Writer, "  %s\n", ve.Error())
				}
			}
			return NewExitError(ExitFailure, fmt.Sprintf("profile has %d validation error(s)", len(perr.Errors)))
		}
		return WrapExitError(ExitCommandError, "failed to load profile", err)
	}

	summary := summarize(source, g)
	if f.JSON() {
		return f.Success(summary)
	}

	w := f.Writer
	fmt.Fprintln(w, f.Styles.Success.Render(fmt.Sprintf("✓ %s is valid", summary.Name)))
	fmt.Fprintf(w, "  source:       %s\n", summary.Source)
	fmt.Fprintf(w, "  subsystems:   %d\n", summary.Subsystems)
	fmt.Fprintf(w, "  groups:       %d\n", summary.Groups)
	fmt.Fprintf(w, "  relations:    %d\n", summary.Relations)
	fmt.Fprintf(w, "  flight modes: %d\n", summary.FlightModes)
	fmt.Fprintf(w, "  fingerprint:  %s\n", summary.Fingerprint)
	return nil
}

func summarize(source string, g *graph.Graph) ProfileSummary {
	p := g.Profile()
	return ProfileSummary{
		Name:        p.Name,
		Source:      source,
		Subsystems:  g.Len(),
		Groups:      len(p.Groups),
		Relations:   len(p.Relations),
		FlightModes: len(g.FlightModes()),
		Fingerprint: g.Fingerprint(),
	}
}
