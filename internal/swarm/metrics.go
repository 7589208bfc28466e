package swarm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records bring-up and teardown activity. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	stepsTotal    *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	phaseDuration *prometheus.HistogramVec
	nodesDesired  *prometheus.GaugeVec
	nodesJoined   *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a private registry labelled with stack.
func NewMetrics(stack string) *Metrics {
	constLabels := prometheus.Labels{"stack": stack}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "swarmflow",
				Subsystem:   "machine",
				Name:        "steps_total",
				Help:        "Machine steps by step, role and result",
				ConstLabels: constLabels,
			},
			[]string{"step", "role", "result"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   "swarmflow",
				Subsystem:   "machine",
				Name:        "step_duration_seconds",
				Help:        "Duration of machine steps in seconds",
				ConstLabels: constLabels,
				Buckets:     prometheus.ExponentialBuckets(0.5, 2, 10), // 500ms to ~4min
			},
			[]string{"step"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   "swarmflow",
				Subsystem:   "swarm",
				Name:        "phase_duration_seconds",
				Help:        "Duration of bring-up phases in seconds",
				ConstLabels: constLabels,
				Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"phase", "result"},
		),
		nodesDesired: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   "swarmflow",
				Subsystem:   "swarm",
				Name:        "nodes_desired",
				Help:        "Desired number of nodes by role",
				ConstLabels: constLabels,
			},
			[]string{"role"},
		),
		nodesJoined: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   "swarmflow",
				Subsystem:   "swarm",
				Name:        "nodes_joined",
				Help:        "Number of nodes that initialized or joined the swarm by role",
				ConstLabels: constLabels,
			},
			[]string{"role"},
		),
	}
	m.registry.MustRegister(m.stepsTotal, m.stepDuration, m.phaseDuration, m.nodesDesired, m.nodesJoined)
	return m
}

// Gatherer exposes the private registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes all metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) recordOutcome(o Outcome) {
	if m == nil {
		return
	}
	result := "success"
	switch {
	case o.Skipped:
		result = "skipped"
	case o.Err != nil:
		result = "failure"
	}
	m.stepsTotal.WithLabelValues(string(o.Step), string(o.Role), result).Inc()
	if !o.Skipped {
		m.stepDuration.WithLabelValues(string(o.Step)).Observe(o.Duration.Seconds())
	}
}

func (m *Metrics) recordPhase(phase string, err error, seconds float64) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.phaseDuration.WithLabelValues(phase, result).Observe(seconds)
}

func (m *Metrics) recordTopology(topo Topology, report *Report) {
	if m == nil {
		return
	}
	joined := map[Role]int{}
	for _, name := range report.Members() {
		if spec, ok := ParseMachineSpec(name); ok {
			joined[spec.Role]++
		}
	}
	for _, role := range []Role{RoleManager, RoleWorker} {
		m.nodesDesired.WithLabelValues(string(role)).Set(float64(topo.Count(role)))
		m.nodesJoined.WithLabelValues(string(role)).Set(float64(joined[role]))
	}
}
