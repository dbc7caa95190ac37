package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
)

// DBStatsFunc returns connection pool statistics.
type DBStatsFunc func() sql.DBStats

type dbStatsCollector struct {
	statFunc DBStatsFunc

	openDesc  *prometheus.Desc
	idleDesc  *prometheus.Desc
	inUseDesc *prometheus.Desc
	waitDesc  *prometheus.Desc
}

// NewDBStatsCollector creates a collector that exposes pool gauges.
func NewDBStatsCollector(statFunc DBStatsFunc) prometheus.Collector {
	return &dbStatsCollector{
		statFunc: statFunc,
		openDesc: prometheus.NewDesc(
			"todo_db_pool_open_conns",
			"Number of open connections in the DB pool.",
			nil, nil,
		),
		idleDesc: prometheus.NewDesc(
			"todo_db_pool_idle_conns",
			"Number of idle connections in the DB pool.",
			nil, nil,
		),
		inUseDesc: prometheus.NewDesc(
			"todo_db_pool_in_use_conns",
			"Number of connections currently in use.",
			nil, nil,
		),
		waitDesc: prometheus.NewDesc(
			"todo_db_pool_wait_count_total",
			"Total number of connections waited for.",
			nil, nil,
		),
	}
}

func (c *dbStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openDesc
	ch <- c.idleDesc
	ch <- c.inUseDesc
	ch <- c.waitDesc
}

func (c *dbStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.statFunc()
	ch <- prometheus.MustNewConstMetric(c.openDesc, prometheus.GaugeValue, float64(stats.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stats.Idle))
	ch <- prometheus.MustNewConstMetric(c.inUseDesc, prometheus.GaugeValue, float64(stats.InUse))
	ch <- prometheus.MustNewConstMetric(c.waitDesc, prometheus.CounterValue, float64(stats.WaitCount))
}
