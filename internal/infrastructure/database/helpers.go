package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"classifieds-backend/pkg/metrics"
)

// Close đóng tất cả connections trong pool. Safe to call multiple times.
func (db *PostgresDB) Close() {
	if db.Pool == nil {
		return
	}
	db.Pool.Close()
	db.Pool = nil
	log.Info().Msg("[DATABASE] Connection pool closed")
}

// MonitorPoolHealth publishes pool statistics as Prometheus gauges and warns
// on saturation. Runs until ctx is cancelled; start it in its own goroutine.
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if db.Pool == nil {
				continue
			}
			stats := db.Pool.Stat()

			metrics.DBTotalConns.Set(float64(stats.TotalConns()))
			metrics.DBIdleConns.Set(float64(stats.IdleConns()))
			metrics.DBAcquiredConns.Set(float64(stats.AcquiredConns()))

			if stats.MaxConns() > 0 {
				utilization := float64(stats.AcquiredConns()) / float64(stats.MaxConns()) * 100
				if utilization > 80 {
					log.Warn().
						Float64("utilization_pct", utilization).
						Int32("acquired", stats.AcquiredConns()).
						Int32("max", stats.MaxConns()).
						Msg("[MONITOR] High pool utilization")
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
