package ir

// RelationKind names one of the constraint relations between subsystems.
type RelationKind string

const (
	// Requires: enabling From needs To enabled; To cannot be disabled while
	// From is enabled.
	Requires RelationKind = "requires"

	// Implies: enabling From also tries to enable To. Failure is tolerated.
	Implies RelationKind = "implies"

	// Conflicts: From and To may not be enabled together. Symmetric.
	Conflicts RelationKind = "conflicts"

	// Preempts: enabling From force-disables To (and everything that
	// requires To) and keeps To inhibited while From stays enabled.
	Preempts RelationKind = "preempts"
)

// ValidRelationKinds defines allowed relation kinds.
var ValidRelationKinds = map[RelationKind]bool{
	Requires:  true,
	Implies:   true,
	Conflicts: true,
	Preempts:  true,
}

// Profile is a compiled vehicle profile.
//
// Subsystem registration order is the order in which group members are
// declared. Everything that reports subsystems in "registration order"
// uses this order.
type Profile struct {
	Name        string     `json:"name"`
	Groups      []Group    `json:"groups"`
	Relations   []Relation `json:"relations"`
	ArmRequired []string   `json:"arm_required"`
	FlightModes string     `json:"flight_modes"` // name of the group holding flight modes
}

// Group is a named set of subsystems. Members of an exclusive group
// conflict pairwise (a mutually exclusive group).
type Group struct {
	Name      string   `json:"name"`
	Exclusive bool     `json:"exclusive"`
	Members   []string `json:"members"`
}

// Relation is a single directed constraint edge.
type Relation struct {
	From string       `json:"from"`
	Kind RelationKind `json:"kind"`
	To   string       `json:"to"`
}

// Subsystems returns every group member in registration order.
func (p *Profile) Subsystems() []string {
	var names []string
	for _, g := range p.Groups {
		names = append(names, g.Members...)
	}
	return names
}

// Group returns the named group.
func (p *Profile) Group(name string) (Group, bool) {
	for _, g := range p.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// ToIR converts the profile to an IRObject for canonical hashing.
func (p *Profile) ToIR() IRObject {
	groups := make(IRArray, len(p.Groups))
	for i, g := range p.Groups {
		groups[i] = IRObject{
			"name":      IRString(g.Name),
			"exclusive": IRBool(g.Exclusive),
			"members":   Strings(g.Members),
		}
	}

	relations := make(IRArray, len(p.Relations))
	for i, r := range p.Relations {
		relations[i] = IRObject{
			"from": IRString(r.From),
			"kind": IRString(string(r.Kind)),
			"to":   IRString(r.To),
		}
	}

	return IRObject{
		"name":         IRString(p.Name),
		"groups":       groups,
		"relations":    relations,
		"arm_required": Strings(p.ArmRequired),
		"flight_modes": IRString(p.FlightModes),
		"version":      IRString(ProfileVersion),
	}
}
