// Package ir provides the intermediate representation of a vehicle profile.
//
// A profile names the subsystems of a vehicle, groups them, and declares the
// constraint relations between them (requires, implies, conflicts, preempts).
// Profiles are produced by the compiler from CUE sources and consumed by the
// graph package, which turns them into index tables for the engine.
//
// This package imports nothing internal. It also owns canonical JSON
// (RFC 8785) and the domain-separated hashes used to fingerprint profiles
// and engine snapshots.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - All JSON tags use snake_case
//   - Declaration order is significant and must be preserved
package ir
