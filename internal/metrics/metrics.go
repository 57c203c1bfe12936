package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the vault.
type Metrics struct {
	SubjectsInitialized  prometheus.Counter
	SubjectsErased       prometheus.Counter
	LedgerRecordFailures prometheus.Counter
	EvidenceFailures     prometheus.Counter
}

// New creates all vault metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SubjectsInitialized: factory.NewCounter(prometheus.CounterOpts{
			Name: "cleargdpr_subjects_initialized_total",
			Help: "Total number of subject initializations and updates",
		}),
		SubjectsErased: factory.NewCounter(prometheus.CounterOpts{
			Name: "cleargdpr_subjects_erased_total",
			Help: "Total number of completed subject erasures",
		}),
		LedgerRecordFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cleargdpr_ledger_record_failures_total",
			Help: "Total number of failed erasure ledger notifications",
		}),
		EvidenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "cleargdpr_evidence_archive_failures_total",
			Help: "Total number of failed erasure evidence uploads",
		}),
	}
}

// IncrementSubjectsInitialized increments the initialization counter by 1.
func (m *Metrics) IncrementSubjectsInitialized() {
	m.SubjectsInitialized.Inc()
}

// IncrementSubjectsErased increments the erasure counter by 1.
func (m *Metrics) IncrementSubjectsErased() {
	m.SubjectsErased.Inc()
}

// IncrementLedgerRecordFailures increments the ledger failure counter by 1.
func (m *Metrics) IncrementLedgerRecordFailures() {
	m.LedgerRecordFailures.Inc()
}

// IncrementEvidenceFailures increments the evidence failure counter by 1.
func (m *Metrics) IncrementEvidenceFailures() {
	m.EvidenceFailures.Inc()
}
