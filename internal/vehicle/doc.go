// Package vehicle implements the guarded vehicle lifecycle state machine.
//
//	Preflight -> Armed      arm (guard: arming readiness)
//	Armed     -> Preflight  disarm
//	Armed     -> Flying     takeoff (guard: a flight mode is active)
//	Flying    -> Landing    land
//	Landing   -> Armed      landing_complete
//	Landing   -> Preflight  disarm_after_landing
//	Armed, Flying, Landing -> Emergency   emergency
//	Emergency -> Preflight  reset
//
// The table in state.go is the single source of truth: it configures the
// underlying stateless machine and drives the wrong-state checks. Guards
// are evaluated before firing so a rejection carries a readable reason.
//
// Notification order for an accepted emergency request:
//
//	safety_alert <reason>
//	safety_alert EmergencyState entered
//	state_changed <from> -> Emergency
package vehicle
