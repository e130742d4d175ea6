// Package graph compiles a vehicle profile into the static constraint graph
// the engine evaluates against.
//
// A Graph is immutable once built. Subsystems are addressed by their
// registration index; every adjacency list is kept in registration order so
// that engine cascades and error messages are deterministic.
//
// Requires edges are loaded into an lvlath directed graph. Its topological
// sort gives each subsystem a rank in which dependents come before their
// dependencies; the engine uses that rank to order forced disables.
package graph
