package metrics

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DatabaseMetricsCollector publishes connection pool gauges and backs the health check.
type DatabaseMetricsCollector struct {
	metrics  *Metrics
	logger   *zap.Logger
	sqlDB    *sql.DB
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewDatabaseMetricsCollector(metrics *Metrics, logger *zap.Logger, db *gorm.DB) *DatabaseMetricsCollector {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get sql.DB from gorm.DB", zap.Error(err))
		metrics.RecordDBConnectionError()
	}

	return &DatabaseMetricsCollector{
		metrics: metrics,
		logger:  logger,
		sqlDB:   sqlDB,
		stopCh:  make(chan struct{}),
	}
}

func (dmc *DatabaseMetricsCollector) Start(interval time.Duration) {
	if dmc.sqlDB == nil {
		dmc.logger.Warn("Cannot start database metrics collector: sqlDB is nil")
		return
	}

	dmc.ticker = time.NewTicker(interval)
	go dmc.collectLoop()
	dmc.logger.Info("Database metrics collector started", zap.Duration("interval", interval))
}

func (dmc *DatabaseMetricsCollector) Stop() {
	dmc.stopOnce.Do(func() {
		if dmc.ticker != nil {
			dmc.ticker.Stop()
		}
		close(dmc.stopCh)
	})
}

func (dmc *DatabaseMetricsCollector) collectLoop() {
	dmc.collect()

	for {
		select {
		case <-dmc.ticker.C:
			dmc.collect()
		case <-dmc.stopCh:
			return
		}
	}
}

func (dmc *DatabaseMetricsCollector) collect() {
	if dmc.sqlDB == nil {
		return
	}

	stats := dmc.sqlDB.Stats()
	dmc.metrics.DBConnectionsInUse.Set(float64(stats.InUse))
	dmc.metrics.DBConnectionsIdle.Set(float64(stats.Idle))

	dmc.logger.Debug("Database connection stats",
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	)
}

// WithMetrics times fn as one database operation on table.
func (dmc *DatabaseMetricsCollector) WithMetrics(operation, table string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = "not_found"
		}
	}

	dmc.metrics.RecordDBQuery(operation, table, status, duration)

	if duration > 100*time.Millisecond {
		dmc.logger.Warn("Slow database query",
			zap.String("operation", operation),
			zap.String("table", table),
			zap.String("status", status),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}

	return err
}

// HealthCheck pings the database.
func (dmc *DatabaseMetricsCollector) HealthCheck(ctx context.Context) error {
	if dmc.sqlDB == nil {
		dmc.metrics.RecordDBConnectionError()
		return sql.ErrConnDone
	}

	return dmc.WithMetrics("ping", "health_check", func() error {
		return dmc.sqlDB.PingContext(ctx)
	})
}
