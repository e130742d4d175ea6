// Package engine implements the subsystem constraint engine.
//
// The engine holds the enabled-set of one vehicle and applies the four
// relation kinds of a compiled profile on every Enable and Disable:
//
//   - Requires: enabling X first enables every Y that X requires.
//   - Implies: after X is enabled, Y is enabled on a best-effort basis.
//   - Conflicts: X cannot be enabled while a conflicting Y is enabled.
//   - Preempts: enabling X force-disables Y together with everything that
//     transitively requires Y, and holds that latch until X is disabled.
//
// Enable Processing:
// 1. Validate the name (EMPTY_NAME, UNKNOWN_SUBSYSTEM)
// 2. Build a plan over a speculative overlay of the enabled-set
// 3. On success, commit the plan and publish one subsystem_changed per flip
// 4. On failure, discard the plan and publish one subsystem_error
//
// CRITICAL PATTERNS:
//
// Atomic cascades:
// A rejected Enable leaves the enabled-set exactly as it was. Observers
// never see a partial cascade.
//
// Deterministic ordering:
// Requires are visited in declaration order. Forced disables run
// dependents first, ordered by topological rank. The inhibiting subsystem
// reported for a latch is the first one in registration order.
package engine
