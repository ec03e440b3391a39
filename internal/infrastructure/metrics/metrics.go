// Package metrics exposes prometheus collectors for the licence ledger,
// the roster import and the reconciliation job.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Licence sources.
const (
	SourceManual = "manual"
	SourceImport = "import"
)

// Outcome labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

var durationBuckets = []float64{
	0.01, // 10ms
	0.05, // 50ms
	0.1,  // 100ms
	0.5,  // 500ms
	1.0,  // 1s
	5.0,  // 5s
	15.0, // 15s
	60.0, // 1m
	300,  // 5m
}

var (
	// LicencesCreated counts licences written to the ledger.
	LicencesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensing_licences_created_total",
			Help: "Number of licences recorded",
		},
		[]string{"source"},
	)

	// CapacityRejections counts requests refused for lack of available licences.
	CapacityRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensing_capacity_rejections_total",
			Help: "Number of distributions or roster rows refused because the allocation was full",
		},
		[]string{"source"},
	)

	// ImportedAccounts counts roster rows by how the account was resolved.
	ImportedAccounts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensing_import_accounts_total",
			Help: "Roster accounts processed by the import, by outcome",
		},
		[]string{"outcome"}, // created or updated
	)

	// ImportFailures counts failed roster imports by error code.
	ImportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensing_import_failures_total",
			Help: "Failed roster imports by error code",
		},
		[]string{"code"},
	)

	// ReconciliationDuration tracks the latency of reconciliation runs.
	ReconciliationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "licensing_reconciliation_duration_seconds",
			Help:    "Duration of reconciliation runs in seconds",
			Buckets: durationBuckets,
		},
		[]string{"status"},
	)

	// EnrolmentFailures counts distributions whose product handler failed.
	EnrolmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensing_enrolment_failures_total",
			Help: "Distributions whose enrolment failed, by product type",
		},
		[]string{"product_type"},
	)

	// DistributionsEnrolled counts distributions handed to product handlers successfully.
	DistributionsEnrolled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "licensing_distributions_enrolled_total",
			Help: "Distributions enrolled by the reconciliation job",
		},
	)
)

// RecordLicencesCreated adds n licences for source.
func RecordLicencesCreated(source string, n int) {
	if n <= 0 {
		return
	}
	LicencesCreated.WithLabelValues(source).Add(float64(n))
}

// RecordCapacityRejection records a refused distribution or roster row.
func RecordCapacityRejection(source string) {
	CapacityRejections.WithLabelValues(source).Inc()
}

// RecordImportedAccount records a created or updated roster account.
func RecordImportedAccount(created bool) {
	outcome := "updated"
	if created {
		outcome = "created"
	}
	ImportedAccounts.WithLabelValues(outcome).Inc()
}

// RecordImportFailure records a failed roster import.
func RecordImportFailure(code string) {
	ImportFailures.WithLabelValues(code).Inc()
}

// RecordReconciliationDuration records the duration of a reconciliation run.
func RecordReconciliationDuration(status string, seconds float64) {
	ReconciliationDuration.WithLabelValues(status).Observe(seconds)
}

// RecordEnrolment records the outcome of one distribution's enrolment.
func RecordEnrolment(productType string, err error) {
	if err != nil {
		EnrolmentFailures.WithLabelValues(productType).Inc()
		return
	}
	DistributionsEnrolled.Inc()
}
