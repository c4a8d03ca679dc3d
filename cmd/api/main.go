package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	appaccess "github.com/jhoicas/backoffice-api/internal/application/access"
	appanalytics "github.com/jhoicas/backoffice-api/internal/application/analytics"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/backoffice-api/internal/interfaces/consumer"
	httpRouter "github.com/jhoicas/backoffice-api/internal/interfaces/http"
	"github.com/jhoicas/backoffice-api/pkg/config"
	"github.com/jhoicas/backoffice-api/pkg/logger"
	"github.com/jhoicas/backoffice-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Acceso
	permissionRegistry, err := appaccess.NewPermissionRegistry(postgres.NewPermissionRepository(pool), appaccess.DefaultPolicy{
		Page:   cfg.Access.PageDefault,
		Action: cfg.Access.ActionDefault,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("política de acceso por defecto")
	}
	gate := appaccess.NewAuthorizationGate(permissionRegistry, m, log)

	// Idempotencia: Redis si está configurado; si no, memoria del proceso (una sola instancia).
	var idem inventory.IdempotencyStore = memory.NewIdempotencyStore(cfg.Redis.TTL())
	var pingRedis func(context.Context) error
	if cfg.Redis.URL != "" {
		rdb, err := redisstore.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		idem = redisstore.NewIdempotencyStore(rdb, cfg.Redis.TTL())
		pingRedis = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// Inventario
	tz, _ := cfg.Events.Location()
	processor := inventory.NewLocationEventProcessor(
		postgres.NewTxRunner(pool),
		postgres.NewStorageBinRepository(pool),
		postgres.NewItemRepository(pool),
		idem, m, log,
		inventory.ProcessorConfig{MaxRetries: cfg.Events.MaxRetries, Location: tz},
	)
	dashboard := appanalytics.NewDashboardAggregator(postgres.NewDashboardRepository(pool))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Back-office API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Registry:  permissionRegistry,
		Gate:      gate,
		Processor: processor,
		Dashboard: dashboard,
		Metrics:   m,
		Health: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			if pingRedis != nil {
				return pingRedis(ctx)
			}
			return nil
		},
		JWTSecret: cfg.JWT.Secret,
		AppName:   cfg.App.Name,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			return err
		}
		return nil
	})

	if cfg.Kafka.Enabled() {
		reader := consumer.NewReader(cfg.Kafka)
		defer reader.Close()
		c := consumer.NewLocationEventConsumer(reader, processor, gate, cfg.Kafka.ServiceRole, log)
		g.Go(func() error { return c.Run(gctx) })
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("consumidor Kafka habilitado")
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servidor finalizado con error")
	}
	log.Info().Msg("aplicación detenida")
}
