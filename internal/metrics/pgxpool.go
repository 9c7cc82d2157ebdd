package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterPgxPoolMetrics exposes catalog database pool statistics as gauges.
func RegisterPgxPoolMetrics(pool *pgxpool.Pool) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "catalog_db_pool_acquired_conns",
		Help: "Connections currently checked out of the pool",
	}, func() float64 {
		return float64(pool.Stat().AcquiredConns())
	})
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "catalog_db_pool_idle_conns",
		Help: "Connections sitting idle in the pool",
	}, func() float64 {
		return float64(pool.Stat().IdleConns())
	})
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "catalog_db_pool_total_conns",
		Help: "Connections currently open, acquired or idle",
	}, func() float64 {
		return float64(pool.Stat().TotalConns())
	})
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "catalog_db_pool_max_conns",
		Help: "Upper bound on pool size",
	}, func() float64 {
		return float64(pool.Stat().MaxConns())
	})
}
