package infra

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stepwise/internal/config"
	"stepwise/internal/models/db_models"
)

// Models lists every table the service owns, in migration order.
var Models = []any{
	&db_models.Account{},
	&db_models.Workspace{},
	&db_models.WorkspaceMember{},
	&db_models.Category{},
	&db_models.Subscription{},
	&db_models.Walkthrough{},
	&db_models.WalkthroughVersion{},
	&db_models.AnalyticsEvent{},
	&db_models.Feedback{},
}

func InitPostgresql(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.IsProduction() {
		level = logger.Error
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresURL), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(Models...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("database schema migrated", zap.Int("tables", len(Models)))
	}
	return db, nil
}

func ClosePostgresql(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("get database instance", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close postgres", zap.Error(err))
		return
	}
	log.Info("postgres connection closed")
}

// RegisterPostgresLifecycle closes the pool when the fx app stops.
func RegisterPostgresLifecycle(lc fx.Lifecycle, db *gorm.DB, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			ClosePostgresql(db, log)
			return nil
		},
	})
}
