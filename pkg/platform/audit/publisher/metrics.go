package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Emitted      prometheus.Counter
	Dropped      prometheus.Counter
	SinkFailures *prometheus.CounterVec
	SinkSkipped  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Emitted: f.NewCounter(prometheus.CounterOpts{
			Name: "forms_audit_events_emitted_total",
			Help: "Audit events accepted into the publish buffer",
		}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "forms_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full",
		}),
		SinkFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "forms_audit_sink_failures_total",
			Help: "Audit events a sink failed to persist",
		}, []string{"sink"}),
		SinkSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "forms_audit_sink_skipped_total",
			Help: "Audit events not sent to a sink because its circuit was open",
		}, []string{"sink"}),
	}
}
