// Package events carries engine and vehicle notifications to observers.
//
// Delivery is synchronous: Publish calls every observer in registration
// order before it returns, on the publishing goroutine. Observers must not
// publish; they receive a Feed, which can only subscribe.
//
// Every event is stamped with a sequence number from a logical Clock so
// observers can order events without relying on wall-clock time.
package events

import "fmt"

// Kind identifies the notification type.
type Kind string

const (
	// SubsystemChanged: a subsystem's enabled flag flipped.
	SubsystemChanged Kind = "subsystem_changed"

	// SubsystemError: an enable or disable request was refused.
	SubsystemError Kind = "subsystem_error"

	// StateChanged: the vehicle entered a new state. From is empty for the
	// initial entry into Preflight.
	StateChanged Kind = "state_changed"

	// TransitionRejected: a vehicle command was refused.
	TransitionRejected Kind = "transition_rejected"

	// SafetyAlert: a safety-relevant message.
	SafetyAlert Kind = "safety_alert"
)

// Event is a single notification. Which fields are meaningful depends on
// Kind:
//
//	subsystem_changed    Subsystem, Enabled
//	subsystem_error      Subsystem, Reason
//	state_changed        From, To
//	transition_rejected  Command, Reason
//	safety_alert         Message
type Event struct {
	Seq       int64  `json:"seq"`
	Kind      Kind   `json:"kind"`
	Subsystem string `json:"subsystem,omitempty"`
	Enabled   bool   `json:"enabled,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Command   string `json:"command,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Changed builds a subsystem_changed event.
func Changed(name string, enabled bool) Event {
	return Event{Kind: SubsystemChanged, Subsystem: name, Enabled: enabled}
}

// Failed builds a subsystem_error event.
func Failed(name, reason string) Event {
	return Event{Kind: SubsystemError, Subsystem: name, Reason: reason}
}

// Transitioned builds a state_changed event.
func Transitioned(from, to string) Event {
	return Event{Kind: StateChanged, From: from, To: to}
}

// Rejected builds a transition_rejected event.
func Rejected(command, reason string) Event {
	return Event{Kind: TransitionRejected, Command: command, Reason: reason}
}

// Alert builds a safety_alert event.
func Alert(message string) Event {
	return Event{Kind: SafetyAlert, Message: message}
}

// String renders the event as a single trace line, without the sequence
// number. Used for scenario traces and debug logging.
func (e Event) String() string {
	switch e.Kind {
	case SubsystemChanged:
		return fmt.Sprintf("%s %s enabled=%t", e.Kind, e.Subsystem, e.Enabled)
	case SubsystemError:
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Subsystem, e.Reason)
	case StateChanged:
		from := e.From
		if from == "" {
			from = "(initial)"
		}
		return fmt.Sprintf("%s %s -> %s", e.Kind, from, e.To)
	case TransitionRejected:
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Command, e.Reason)
	case SafetyAlert:
		return fmt.Sprintf("%s %s", e.Kind, e.Message)
	default:
		return string(e.Kind)
	}
}
