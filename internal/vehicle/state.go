package vehicle

// State is a vehicle lifecycle state.
type State int

const (
	Preflight State = iota
	Armed
	Flying
	Landing
	Emergency
)

var stateNames = [...]string{
	Preflight: "Preflight",
	Armed:     "Armed",
	Flying:    "Flying",
	Landing:   "Landing",
	Emergency: "Emergency",
}

// States lists every state in declaration order.
func States() []State {
	return []State{Preflight, Armed, Flying, Landing, Emergency}
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Command is an operator request that may move the vehicle between states.
type Command string

const (
	CmdArm                Command = "arm"
	CmdDisarm             Command = "disarm"
	CmdTakeoff            Command = "takeoff"
	CmdLand               Command = "land"
	CmdLandingComplete    Command = "landing_complete"
	CmdDisarmAfterLanding Command = "disarm_after_landing"
	CmdEmergency          Command = "emergency"
	CmdReset              Command = "reset"
)

// Commands lists every command in table order.
func Commands() []Command {
	return []Command{
		CmdArm, CmdDisarm, CmdTakeoff, CmdLand,
		CmdLandingComplete, CmdDisarmAfterLanding, CmdEmergency, CmdReset,
	}
}

// Transition is one legal (from, command) -> to edge.
type Transition struct {
	From    State
	Command Command
	To      State
}

// transitions is the complete table. Anything not listed is illegal.
var transitions = []Transition{
	{Preflight, CmdArm, Armed},
	{Armed, CmdDisarm, Preflight},
	{Armed, CmdTakeoff, Flying},
	{Flying, CmdLand, Landing},
	{Landing, CmdLandingComplete, Armed},
	{Landing, CmdDisarmAfterLanding, Preflight},
	{Armed, CmdEmergency, Emergency},
	{Flying, CmdEmergency, Emergency},
	{Landing, CmdEmergency, Emergency},
	{Emergency, CmdReset, Preflight},
}

// Transitions returns a copy of the transition table.
func Transitions() []Transition {
	return append([]Transition(nil), transitions...)
}

// Lookup returns the destination of cmd from s, if the table permits it.
func Lookup(s State, cmd Command) (State, bool) {
	for _, t := range transitions {
		if t.From == s && t.Command == cmd {
			return t.To, true
		}
	}
	return 0, false
}

// sources returns the states from which cmd is legal, in table order.
func sources(cmd Command) []State {
	var out []State
	for _, t := range transitions {
		if t.Command == cmd {
			out = append(out, t.From)
		}
	}
	return out
}
