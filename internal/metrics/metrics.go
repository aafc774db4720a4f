// Package metrics exposes Prometheus instruments for the bill lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the bill lifecycle counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	billsCreated   *prometheus.CounterVec
	billsDeleted   prometheus.Counter
	payments       *prometheus.CounterVec
	rollovers      *prometheus.CounterVec
	statusSweeps   prometheus.Counter
	statusChanged  prometheus.Counter
	importedBills  prometheus.Counter
	rejectedStatus *prometheus.CounterVec
}

// New registers the instruments on reg. Use prometheus.NewRegistry in tests.
func New(reg prometheus.Registerer, serviceName string) *Metrics {
	if serviceName == "" {
		serviceName = "budgetwise"
	}

	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		billsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "budgetwise_bills_created_total",
			Help:        "Bills created, by recurrence.",
			ConstLabels: constLabels,
		}, []string{"recurring"}),
		billsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "budgetwise_bills_deleted_total",
			Help:        "Bills deleted by users.",
			ConstLabels: constLabels,
		}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "budgetwise_payments_recorded_total",
			Help:        "Payments recorded, by recurrence and whether they were late.",
			ConstLabels: constLabels,
		}, []string{"recurring", "late"}),
		rollovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "budgetwise_bill_rollovers_total",
			Help:        "Recurring bills rolled forward to their next occurrence.",
			ConstLabels: constLabels,
		}, []string{"recurring"}),
		statusSweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "budgetwise_status_sweeps_total",
			Help:        "Status refresh sweeps executed.",
			ConstLabels: constLabels,
		}),
		statusChanged: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "budgetwise_status_changes_total",
			Help:        "Bills whose status changed during a sweep.",
			ConstLabels: constLabels,
		}),
		importedBills: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "budgetwise_bills_imported_total",
			Help:        "Bills created through CSV import.",
			ConstLabels: constLabels,
		}),
		rejectedStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "budgetwise_payments_rejected_total",
			Help:        "Pay requests rejected, by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.billsCreated,
			m.billsDeleted,
			m.payments,
			m.rollovers,
			m.statusSweeps,
			m.statusChanged,
			m.importedBills,
			m.rejectedStatus,
		)
	}

	return m
}

func (m *Metrics) BillCreated(recurring string) {
	if m == nil {
		return
	}

	m.billsCreated.WithLabelValues(recurring).Inc()
}

func (m *Metrics) BillDeleted() {
	if m == nil {
		return
	}

	m.billsDeleted.Inc()
}

func (m *Metrics) PaymentRecorded(recurring string, late, rolled bool) {
	if m == nil {
		return
	}

	lateLabel := "false"
	if late {
		lateLabel = "true"
	}

	m.payments.WithLabelValues(recurring, lateLabel).Inc()

	if rolled {
		m.rollovers.WithLabelValues(recurring).Inc()
	}
}

func (m *Metrics) PaymentRejected(reason string) {
	if m == nil {
		return
	}

	m.rejectedStatus.WithLabelValues(reason).Inc()
}

func (m *Metrics) StatusSweep(changed int) {
	if m == nil {
		return
	}

	m.statusSweeps.Inc()
	m.statusChanged.Add(float64(changed))
}

func (m *Metrics) BillsImported(n int) {
	if m == nil {
		return
	}

	m.importedBills.Add(float64(n))
}
