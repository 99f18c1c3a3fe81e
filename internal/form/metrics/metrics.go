package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the form module: structural edits,
// answer submissions and rejections.
type Metrics struct {
	StructureMutations *prometheus.CounterVec
	FrozenRejections   prometheus.Counter
	AnswersSubmitted   *prometheus.CounterVec
	AnswerRejections   *prometheus.CounterVec
	SubmitDuration     prometheus.Histogram
	MutationDuration   *prometheus.HistogramVec
}

// New registers the form metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StructureMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "forms_structure_mutations_total",
			Help: "Structural edits to forms, sections, questions and sub-questions by operation and outcome",
		}, []string{"operation", "outcome"}),
		FrozenRejections: f.NewCounter(prometheus.CounterOpts{
			Name: "forms_frozen_rejections_total",
			Help: "Structural edits rejected because the form already has answers",
		}),
		AnswersSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "forms_answers_submitted_total",
			Help: "Answer submissions by validity",
		}, []string{"valid"}),
		AnswerRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "forms_answer_rejections_total",
			Help: "Failed validations by validation type",
		}, []string{"validation_type"}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "forms_submit_answer_duration_seconds",
			Help:    "Duration of answer submission including dependent re-evaluation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		MutationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forms_structure_mutation_duration_seconds",
			Help:    "Duration of structural edits including the transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// ObserveMutation records one structural edit. outcome is "ok", "rejected",
// "frozen" or "error".
func (m *Metrics) ObserveMutation(operation, outcome string, start time.Time) {
	m.StructureMutations.WithLabelValues(operation, outcome).Inc()
	m.MutationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if outcome == "frozen" {
		m.FrozenRejections.Inc()
	}
}

// ObserveSubmission records one answer submission.
func (m *Metrics) ObserveSubmission(valid bool, start time.Time) {
	m.AnswersSubmitted.WithLabelValues(strconv.FormatBool(valid)).Inc()
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

// IncrementRejection records one failed validation rule.
func (m *Metrics) IncrementRejection(validationType int) {
	m.AnswerRejections.WithLabelValues(strconv.Itoa(validationType)).Inc()
}
