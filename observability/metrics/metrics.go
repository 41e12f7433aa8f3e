// Package metrics exposes Prometheus collectors for the ledger engine.
// Observe* helpers are no-ops until Init has run, so packages can call them
// unconditionally (including from tests).
package metrics

import (
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	metricPrefix = "condo_ledger_"

	resultSuccess = "success"
	resultError   = "error"
)

// Batch item outcomes.
const (
	BatchCreated = "created"
	BatchSkipped = "skipped"
	BatchFailed  = "failed"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	batchRuns  *prometheus.CounterVec
	batchItems *prometheus.CounterVec

	casesOpened     prometheus.Counter
	caseTransitions *prometheus.CounterVec

	paymentsRecorded *prometheus.CounterVec

	sweepRuns    *prometheus.CounterVec
	sweepUpdated prometheus.Counter

	reportLatency *prometheus.HistogramVec
)

// Init registers collectors with reg. db may be nil; when set, gauges over
// the SQLite tables are registered as well.
func Init(reg prometheus.Registerer, db *sql.DB, log *zap.Logger) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
		batchRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_batch_runs_total",
				Help: "Batch billing runs by result",
			},
			[]string{"result"},
		)
		batchItems = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_batch_items_total",
				Help: "Batch billing items by outcome",
			},
			[]string{"outcome"},
		)
		casesOpened = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "collection_cases_opened_total",
				Help: "Collection cases opened",
			},
		)
		caseTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "collection_case_transitions_total",
				Help: "Collection case status changes by target status",
			},
			[]string{"to"},
		)
		paymentsRecorded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payments_recorded_total",
				Help: "Payments recorded by collection",
			},
			[]string{"collection"},
		)
		sweepRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "overdue_sweep_runs_total",
				Help: "Overdue sweep runs by result",
			},
			[]string{"result"},
		)
		sweepUpdated = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "overdue_sweep_items_marked_total",
				Help: "Items moved from pending to late by the sweeper",
			},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_duration_seconds",
				Help:    "Report build latency by report and result",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report", "result"},
		)

		reg.MustRegister(
			httpRequests,
			httpLatency,
			batchRuns,
			batchItems,
			casesOpened,
			caseTransitions,
			paymentsRecorded,
			sweepRuns,
			sweepUpdated,
			reportLatency,
		)

		if db != nil {
			registerDBMetrics(reg, db, log)
		}
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, code int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}

// ObserveBatchRun records a finished batch run.
func ObserveBatchRun(err error) {
	if batchRuns != nil {
		batchRuns.WithLabelValues(result(err)).Inc()
	}
}

// AddBatchItems adds count items with the given outcome.
func AddBatchItems(outcome string, count int) {
	if count <= 0 {
		return
	}
	if batchItems != nil {
		batchItems.WithLabelValues(outcome).Add(float64(count))
	}
}

// ObserveCaseOpened increments the opened-cases counter.
func ObserveCaseOpened() {
	if casesOpened != nil {
		casesOpened.Inc()
	}
}

// ObserveCaseTransition counts a status change.
func ObserveCaseTransition(to string) {
	if to == "" {
		to = "unknown"
	}
	if caseTransitions != nil {
		caseTransitions.WithLabelValues(to).Inc()
	}
}

// ObservePayment counts a recorded payment.
func ObservePayment(collection string) {
	if paymentsRecorded != nil {
		paymentsRecorded.WithLabelValues(collection).Inc()
	}
}

// ObserveSweep records a sweep run and how many items it marked late.
func ObserveSweep(marked int, err error) {
	if sweepRuns != nil {
		sweepRuns.WithLabelValues(result(err)).Inc()
	}
	if sweepUpdated != nil && marked > 0 {
		sweepUpdated.Add(float64(marked))
	}
}

// ObserveReport records report build latency.
func ObserveReport(report string, err error, duration time.Duration) {
	if reportLatency != nil {
		reportLatency.WithLabelValues(report, result(err)).Observe(duration.Seconds())
	}
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
