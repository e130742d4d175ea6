package metrics

import (
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dronectl/internal/events"
)

func TestCollector_CountsEvents(t *testing.T) {
	hub := events.NewHub()
	c := New(hub)
	defer c.Close()

	hub.Publish(events.Transitioned("", "Preflight"))
	hub.Publish(events.Changed("IMU", true))
	hub.Publish(events.Changed("GPS", true))
	hub.Publish(events.Changed("GPS", false))
	hub.Publish(events.Failed("ESC", "cannot disable 'ESC': 'MotorMix' requires it"))
	hub.Publish(events.Transitioned("Preflight", "Armed"))
	hub.Publish(events.Rejected("takeoff", "no flight mode is active"))
	hub.Publish(events.Rejected("takeoff", "no flight mode is active"))
	hub.Publish(events.Alert("EmergencyState entered"))

	assert.Equal(t, 1.0, promtest.ToFloat64(c.subsystemChanges.WithLabelValues("IMU", "true")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.subsystemChanges.WithLabelValues("GPS", "false")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.subsystemsEnabled))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.subsystemErrors.WithLabelValues("ESC")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.stateTransitions.WithLabelValues("Preflight", "Armed")))
	assert.Equal(t, 2.0, promtest.ToFloat64(c.rejections.WithLabelValues("takeoff")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.safetyAlerts))
	assert.Equal(t, 0.0, promtest.ToFloat64(c.vehicleState.WithLabelValues("Preflight")))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.vehicleState.WithLabelValues("Armed")))
}

func TestCollector_InitialStateIsNotATransition(t *testing.T) {
	hub := events.NewHub()
	c := New(hub)

	hub.Publish(events.Transitioned("", "Preflight"))

	assert.Equal(t, 0, promtest.CollectAndCount(c.stateTransitions))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.vehicleState.WithLabelValues("Preflight")))
}

func TestCollector_Close(t *testing.T) {
	hub := events.NewHub()
	c := New(hub)
	c.Close()

	hub.Publish(events.Alert("ignored"))
	assert.Equal(t, 0.0, promtest.ToFloat64(c.safetyAlerts))
	assert.Equal(t, 0, hub.Len())
}

func TestCollector_Summary(t *testing.T) {
	hub := events.NewHub()
	c := New(hub)

	hub.Publish(events.Changed("IMU", true))
	c.ObserveCommand("enable", true, time.Millisecond)

	out, err := c.Summary()
	require.NoError(t, err)

	assert.Contains(t, out, `dronectl_subsystem_changes_total{enabled="true",subsystem="IMU"} 1`+"\n")
	assert.Contains(t, out, "dronectl_subsystems_enabled 1\n")
	assert.Contains(t, out, "dronectl_safety_alerts_total 0\n")
	assert.Contains(t, out, `dronectl_command_duration_seconds_count{command="enable",success="true"} 1`+"\n")
}

func TestCollector_PrivateRegistries(t *testing.T) {
	a := New(nil)
	b := New(nil)

	a.ObserveCommand("status", true, time.Microsecond)

	assert.Equal(t, 1, promtest.CollectAndCount(a.commandDuration))
	assert.Equal(t, 0, promtest.CollectAndCount(b.commandDuration))
	assert.NotSame(t, a.Registry(), b.Registry())
}
