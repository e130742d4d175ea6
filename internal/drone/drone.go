// Package drone wires one vehicle together: the notification hub, the
// constraint engine, the vehicle state machine and its observers.
package drone

import (
	"fmt"
	"log/slog"

	"github.com/roach88/dronectl/internal/compiler"
	"github.com/roach88/dronectl/internal/engine"
	"github.com/roach88/dronectl/internal/events"
	"github.com/roach88/dronectl/internal/graph"
	"github.com/roach88/dronectl/internal/metrics"
	"github.com/roach88/dronectl/internal/telemetry"
	"github.com/roach88/dronectl/internal/vehicle"
)

// Options configures New. The zero value builds the default quadcopter
// with default telemetry capacity and the default logger.
type Options struct {
	// Graph is the compiled profile. Nil selects the embedded default.
	Graph *graph.Graph

	// Hub receives every notification. Nil creates a private hub. Pass a
	// hub with observers already attached to see the initial
	// state_changed notification.
	Hub *events.Hub

	// Logger for engine, vehicle and telemetry diagnostics.
	Logger *slog.Logger

	// TelemetryCapacity bounds the telemetry log; 0 selects the default.
	TelemetryCapacity int

	// Clock timestamps telemetry entries. Nil selects the wall clock.
	Clock telemetry.Clock
}

// Drone is one fully wired vehicle.
type Drone struct {
	Hub       *events.Hub
	Engine    *engine.Engine
	Vehicle   *vehicle.Machine
	Telemetry *telemetry.Log
	Metrics   *metrics.Collector
	Logger    *slog.Logger
}

// New builds a drone. Observers subscribe before the vehicle is created so
// they all see its initial entry into Preflight.
func New(opts Options) (*Drone, error) {
	g := opts.Graph
	if g == nil {
		var err error
		if g, err = compiler.Default(); err != nil {
			return nil, fmt.Errorf("load default profile: %w", err)
		}
	}
	hub := opts.Hub
	if hub == nil {
		hub = events.NewHub()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	topts := []telemetry.Option{
		telemetry.WithCapacity(opts.TelemetryCapacity),
		telemetry.WithLogger(logger),
	}
	if opts.Clock != nil {
		topts = append(topts, telemetry.WithClock(opts.Clock))
	}
	tlog, err := telemetry.Open(hub, topts...)
	if err != nil {
		return nil, err
	}

	d := &Drone{
		Hub:       hub,
		Telemetry: tlog,
		Metrics:   metrics.New(hub),
		Logger:    logger,
	}
	d.Engine = engine.New(g,
		engine.WithPublisher(hub),
		engine.WithLogger(logger.With("component", "engine")))
	d.Vehicle = vehicle.New(d.Engine,
		vehicle.WithPublisher(hub),
		vehicle.WithLogger(logger.With("component", "vehicle")))

	logger.Debug("drone ready",
		"profile", g.Profile().Name,
		"subsystems", g.Len(),
		"fingerprint", g.Fingerprint(),
		"observers", hub.Len(),
		"session", tlog.Session())
	return d, nil
}

// Graph returns the compiled profile.
func (d *Drone) Graph() *graph.Graph { return d.Engine.Graph() }

// Close detaches the observers and releases the telemetry database.
func (d *Drone) Close() error {
	d.Metrics.Close()
	return d.Telemetry.Close()
}
