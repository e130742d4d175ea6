package console

import (
	"fmt"
	"strings"
)

const commandHelp = `Available commands:
  enable  <subsystem>   -- enable a named subsystem
  disable <subsystem>   -- disable a named subsystem
  status                -- show all subsystem and vehicle state
  arm                   -- arm the vehicle (Preflight -> Armed)
  disarm                -- disarm the vehicle (Armed -> Preflight)
  takeoff               -- take off (Armed -> Flying)
  land                  -- land (Flying -> Landing)
  landing_complete      -- signal landing complete (Landing -> Armed)
  disarm_after_landing  -- disarm directly from landing (Landing -> Preflight)
  emergency [reason]    -- trigger emergency stop
  reset                 -- reset from Emergency to Preflight
  log [n] [category]    -- show last n telemetry entries (default 20)
  graph                 -- export subsystem graph as GraphViz DOT
  fsm                   -- export vehicle state machine as GraphViz DOT
  json                  -- export current state as JSON
  metrics               -- show command and event counters
  help                  -- show this list
  quit                  -- exit
`

// HelpText lists the commands followed by the subsystem names of the
// loaded profile, one line per group.
func (i *Interpreter) HelpText() string {
	var b strings.Builder
	b.WriteString(commandHelp)
	b.WriteString("\nSubsystem names:\n")
	for _, g := range i.d.Graph().Groups() {
		fmt.Fprintf(&b, "  %-14s%s\n", g.Name+":", strings.Join(g.Members, ", "))
	}
	return b.String()
}
