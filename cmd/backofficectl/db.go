package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// connect abre el pool con --database-url o con la configuración del entorno.
func connect(ctx context.Context) (*pgxpool.Pool, *config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New(logger.Config{Env: "development", Level: cfg.App.LogLevel})

	dsn := rootFlags[databaseURLFlag].GetString()
	if dsn == "" {
		dsn = cfg.DB.ConnectionString()
	}
	pool, err := postgres.NewPoolFromDSN(ctx, dsn)
	if err != nil {
		return nil, nil, nil, err
	}
	return pool, cfg, log, nil
}
