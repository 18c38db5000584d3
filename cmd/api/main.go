package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/Behyna/bankgateway/internal/api"
	"github.com/Behyna/bankgateway/internal/api/middleware"
	v1 "github.com/Behyna/bankgateway/internal/api/v1"
	"github.com/Behyna/bankgateway/internal/api/validator"
	"github.com/Behyna/bankgateway/internal/config"
	apperrors "github.com/Behyna/bankgateway/internal/errors"
	"github.com/Behyna/bankgateway/internal/metrics"
	"github.com/Behyna/bankgateway/internal/publishers"
	"github.com/Behyna/bankgateway/internal/repository"
	"github.com/Behyna/bankgateway/internal/service"
	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/gateway/resolver"
	"github.com/Behyna/bankgateway/pkg/mq"
	"github.com/Behyna/bankgateway/pkg/mysql"
	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			newRegisterer,
			metrics.NewMetrics,
			newDatabase,
			repository.NewTransactionManager,
			newTransactionRepository,
			newTransactionLogRepository,
			newStore,
			newResolver,
			newPublisher,
			publishers.NewTransactionPublisher,
			newValidator,
			service.NewPaymentService,
			v1.NewHandler,
			newFiber,
		),
		fx.Invoke(startCollectors, startServer),
	).Run()
}

func newRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

func newDatabase(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (*gorm.DB, error) {
	db, err := mysql.NewConnection(context.Background(), cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db, cfg.GatewayConfig()); err != nil {
			logger.Error("Failed to migrate gateway tables", zap.Error(err))
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func newTransactionRepository(db *gorm.DB, cfg *config.Config) repository.TransactionRepository {
	return repository.NewTransactionRepository(db, cfg.GatewayConfig())
}

func newTransactionLogRepository(db *gorm.DB, cfg *config.Config) repository.TransactionLogRepository {
	return repository.NewTransactionLogRepository(db, cfg.GatewayConfig())
}

func newStore(txManager repository.TxManager, transactions repository.TransactionRepository,
	logs repository.TransactionLogRepository, cfg *config.Config) gateway.Store {
	return repository.NewStore(txManager, transactions, logs, cfg.GatewayConfig())
}

func newResolver(cfg *config.Config, store gateway.Store, logger *zap.Logger) service.PaymentGateway {
	return resolver.New(cfg.GatewayConfig(),
		resolver.WithStore(store),
		resolver.WithLogger(logger.Named("gateway")),
	)
}

func newPublisher(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (mq.Publisher, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("Transaction events disabled")
		return mq.NopPublisher{}, nil
	}

	rabbit, err := mq.NewConnection(cfg.RabbitMQ, logger)
	if err != nil {
		return nil, err
	}

	if err := rabbit.DeclareTopology(cfg.RabbitMQ.Exchange, publishers.Bindings); err != nil {
		_ = rabbit.Close()
		return nil, err
	}

	publisher, err := rabbit.CreatePublisher()
	if err != nil {
		_ = rabbit.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return rabbit.Close()
		},
	})

	return publisher, nil
}

func newValidator(m *metrics.Metrics) (validator.IXValidator, error) {
	return validator.NewXValidator(playground.New(), m)
}

func newFiber(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.ErrorHandler(),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	})

	app.Use(middleware.TrackID())
	if cfg.Metrics.Enabled {
		app.Use(metrics.HTTPMetricsMiddleware(m, logger))
	}

	return app
}

func startCollectors(cfg *config.Config, m *metrics.Metrics, db *gorm.DB, logger *zap.Logger, lc fx.Lifecycle) {
	if !cfg.Metrics.Enabled {
		return
	}

	system := metrics.NewSystemCollector(m, logger)
	database := metrics.NewDatabaseMetricsCollector(m, logger, db)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			system.Start(cfg.Metrics.CollectInterval, cfg.Metrics.ServiceVersion, cfg.Metrics.ServiceCommit, cfg.Metrics.ServiceBuildDate)
			database.Start(cfg.Metrics.CollectInterval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			system.Stop()
			database.Stop()
			return nil
		},
	})
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, m *metrics.Metrics,
	db *gorm.DB, logger *zap.Logger, lc fx.Lifecycle) {
	database := metrics.NewDatabaseMetricsCollector(m, logger, db)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	api.SetupRoutes(app, handler, middleware.HealthCheck(cfg.Metrics.ServiceName, database.HealthCheck), metricsPath, prometheus.DefaultGatherer)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := app.Listen(cfg.API.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			logger.Info("HTTP server started", zap.String("port", cfg.API.Port))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}
