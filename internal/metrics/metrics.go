// Package metrics counts vehicle notifications and console commands.
//
// A Collector owns a private Prometheus registry, so several collectors
// (one per vehicle, or one per test) never collide. It observes an
// events.Feed and never publishes.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/roach88/dronectl/internal/events"
)

const namespace = "dronectl"

// Collector aggregates counters over a notification feed.
type Collector struct {
	registry *prometheus.Registry
	sub      *events.Subscription

	subsystemChanges  *prometheus.CounterVec
	subsystemErrors   *prometheus.CounterVec
	stateTransitions  *prometheus.CounterVec
	rejections        *prometheus.CounterVec
	safetyAlerts      prometheus.Counter
	subsystemsEnabled prometheus.Gauge
	vehicleState      *prometheus.GaugeVec
	commandDuration   *prometheus.HistogramVec
	lastState         string
}

// New creates a collector and subscribes it to feed. A nil feed yields a
// collector that only records command durations.
func New(feed events.Feed) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		subsystemChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subsystem_changes_total",
			Help:      "Subsystem enable/disable flips.",
		}, []string{"subsystem", "enabled"}),
		subsystemErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subsystem_errors_total",
			Help:      "Refused enable/disable requests.",
		}, []string{"subsystem"}),
		stateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Accepted vehicle state transitions.",
		}, []string{"from", "to"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_rejected_total",
			Help:      "Rejected vehicle commands.",
		}, []string{"command"}),
		safetyAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "safety_alerts_total",
			Help:      "Safety alerts raised.",
		}),
		subsystemsEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subsystems_enabled",
			Help:      "Number of currently enabled subsystems.",
		}),
		vehicleState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vehicle_state",
			Help:      "1 for the current vehicle state.",
		}, []string{"state"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Console command execution time.",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"command", "success"}),
	}

	c.registry.MustRegister(
		c.subsystemChanges,
		c.subsystemErrors,
		c.stateTransitions,
		c.rejections,
		c.safetyAlerts,
		c.subsystemsEnabled,
		c.vehicleState,
		c.commandDuration,
	)

	if feed != nil {
		c.sub = feed.Subscribe(c.observe)
	}
	return c
}

// Registry exposes the private registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Close stops observing the feed.
func (c *Collector) Close() { c.sub.Close() }

func (c *Collector) observe(e events.Event) {
	switch e.Kind {
	case events.SubsystemChanged:
		c.subsystemChanges.WithLabelValues(e.Subsystem, fmt.Sprint(e.Enabled)).Inc()
		if e.Enabled {
			c.subsystemsEnabled.Inc()
		} else {
			c.subsystemsEnabled.Dec()
		}
	case events.SubsystemError:
		c.subsystemErrors.WithLabelValues(e.Subsystem).Inc()
	case events.StateChanged:
		if e.From != "" {
			c.stateTransitions.WithLabelValues(e.From, e.To).Inc()
		}
		if c.lastState != "" {
			c.vehicleState.WithLabelValues(c.lastState).Set(0)
		}
		c.vehicleState.WithLabelValues(e.To).Set(1)
		c.lastState = e.To
	case events.TransitionRejected:
		c.rejections.WithLabelValues(e.Command).Inc()
	case events.SafetyAlert:
		c.safetyAlerts.Inc()
	}
}

// ObserveCommand records how long one console command took.
func (c *Collector) ObserveCommand(command string, success bool, d time.Duration) {
	c.commandDuration.WithLabelValues(command, fmt.Sprint(success)).Observe(d.Seconds())
}

// Summary renders every counter and gauge sample as "name{labels} value"
// lines, sorted. Histograms are summarised by their sample count.
func (c *Collector) Summary() (string, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			var v float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				v = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				v = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				name += "_count"
				v = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			lines = append(lines, fmt.Sprintf("%s%s %g", name, formatLabels(m.GetLabel()), v))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n", nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
