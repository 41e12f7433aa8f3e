package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func registerDBMetrics(reg prometheus.Registerer, db *sql.DB, log *zap.Logger) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "receivables_open",
			Help: "Receivables not yet paid",
		},
		func() float64 {
			return queryCount(db, log, "SELECT COUNT(*) FROM receivables WHERE status <> 'paid'")
		},
	))

	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "collection_cases_open",
			Help: "Collection cases not yet settled",
		},
		func() float64 {
			return queryCount(db, log, "SELECT COUNT(*) FROM collection_cases WHERE status <> 'settled'")
		},
	))
}

func queryCount(db *sql.DB, log *zap.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if log != nil {
			log.Warn("metrics query failed", zap.Error(err))
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
