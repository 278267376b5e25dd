package sim

import (
	"context"

	"modellbahn-go/bus"
	"modellbahn-go/errcode"
	"modellbahn-go/types"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors railway bus events into prometheus collectors.
type Metrics struct {
	Steps           prometheus.Counter
	InvalidWrites   *prometheus.CounterVec
	RoutingFailures prometheus.Counter
	TransferErrors  prometheus.Counter
	CurrentTrack    prometheus.Gauge
	SwitchThrows    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railway_steps_total",
			Help: "Transitions taken by the traversal engine",
		}),
		InvalidWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railway_invalid_writes_total",
			Help: "Output writes rejected by the expansion chain",
		}, []string{"error"}),
		RoutingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railway_routing_failures_total",
			Help: "Times the engine halted because no route was found",
		}),
		TransferErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railway_transfer_errors_total",
			Help: "Failed expansion chain transfers",
		}),
		CurrentTrack: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railway_current_track",
			Help: "Id of the occupied track",
		}),
		SwitchThrows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railway_switch_throws_total",
			Help: "Switch position changes",
		}, []string{"track", "state"}),
	}
	reg.MustRegister(m.Steps, m.InvalidWrites, m.RoutingFailures, m.TransferErrors, m.CurrentTrack, m.SwitchThrows)
	return m
}

// Observe updates the collectors for one bus message.
func (m *Metrics) Observe(msg *bus.Message) {
	switch p := msg.Payload.(type) {
	case types.Transition:
		m.Steps.Inc()
		m.CurrentTrack.Set(float64(p.Next))
	case types.InvalidWrite:
		m.InvalidWrites.WithLabelValues(p.Error).Inc()
	case types.TransferError:
		m.TransferErrors.Inc()
	case types.SwitchPosition:
		m.SwitchThrows.WithLabelValues(p.Name, p.State).Inc()
	case types.EngineState:
		if p.Level == types.EngineHalted && p.Status == string(errcode.RoutingFailure) {
			m.RoutingFailures.Inc()
		}
	}
}

// Watch feeds every railway/# message to Observe until ctx ends.
func (m *Metrics) Watch(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(bus.T("railway", "#"))
	defer conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			m.Observe(msg)
		}
	}
}
