package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/surblend-api/docs"
	appanalytics "github.com/jhoicas/surblend-api/internal/application/analytics"
	"github.com/jhoicas/surblend-api/internal/application/auth"
	"github.com/jhoicas/surblend-api/internal/application/catalog"
	"github.com/jhoicas/surblend-api/internal/application/quoting"
	"github.com/jhoicas/surblend-api/internal/application/usecase"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/pricing"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
	"github.com/jhoicas/surblend-api/internal/infrastructure/memory"
	"github.com/jhoicas/surblend-api/internal/infrastructure/metrics"
	"github.com/jhoicas/surblend-api/internal/infrastructure/postgres"
	"github.com/jhoicas/surblend-api/internal/infrastructure/postgres/migrations"
	"github.com/jhoicas/surblend-api/internal/infrastructure/redisseq"
	"github.com/jhoicas/surblend-api/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/surblend-api/internal/interfaces/http"
	"github.com/jhoicas/surblend-api/pkg/config"
	"github.com/jhoicas/surblend-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		Name:  cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("number_backend", cfg.Quote.NumberBackend).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := migrations.ApplyPool(ctx, pool, log.Component("migrations"))
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Strs("applied", applied).Msg("migraciones al día")
	}

	loc, err := cfg.Quote.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria de cotización")
	}

	// Métricas: registro propio con los colectores de proceso y runtime.
	var (
		recorder   quoting.Recorder = quoting.NopRecorder{}
		appMetrics *metrics.Metrics
		registry   = prometheus.NewRegistry()
	)
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		appMetrics = metrics.New(registry, "surblend")
		recorder = appMetrics
	}

	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	ingredientRepo := postgres.NewIngredientRepository(pool)
	priceRepo := postgres.NewPriceHistoryRepository(pool)
	blendRepo := postgres.NewBlendRepository(pool)
	quoteRepo := postgres.NewQuoteRepository(pool)
	activityRepo := postgres.NewActivityLogRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	var seqStore repository.QuoteSequenceStore
	switch cfg.Quote.NumberBackend {
	case config.NumberBackendRedis:
		client, err := redisseq.NewClient(ctx, redisseq.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		seqStore = redisseq.New(client, quoteRepo)
	case config.NumberBackendMemory:
		log.Warn().Msg("numeración en memoria: única solo dentro de este proceso")
		seqStore = memory.NewQuoteSequenceStore(quoteRepo)
	default:
		seqStore = postgres.NewQuoteSequenceStore(pool, cfg.Quote.NumberLockTimeout)
	}

	cat := catalog.NewCatalog(ingredientRepo)
	ingredientUC := catalog.NewIngredientUseCase(ingredientRepo, priceRepo, txRunner, log.Component("catalog"))
	blendUC := catalog.NewBlendUseCase(blendRepo, cat, quoteRepo, activityRepo, catalog.BlendDefaults{
		ApplicationRate: cfg.Blend.DefaultApplicationRate,
		ApplicationUnit: cfg.Blend.DefaultApplicationUnit,
	}, log.Component("blends"))

	allocator := quoting.NewAllocator(seqStore, quoting.AllocatorConfig{
		Location:    loc,
		MaxAttempts: cfg.Quote.NumberMaxAttempts,
		Backoff:     cfg.Quote.NumberBackoff,
	}, recorder, log.Component("quote_numbers"))
	engine := pricing.NewEngine(pricing.Config{Precision: cfg.Quote.PricePrecision})
	quoteUC := quoting.NewQuoteUseCase(
		txRunner, quoteRepo, customerRepo, blendUC, cat, engine, allocator,
		quoting.Config{
			ValidityDays: cfg.Quote.ValidityDays,
			DefaultMargin: entity.MarginPolicy{
				Type:  cfg.Quote.DefaultMarginType,
				Value: cfg.Quote.DefaultMarginValue,
			},
		},
		recorder, log.Component("quoting"),
	)

	customerUC := usecase.NewCustomerUseCase(customerRepo)
	userUC := usecase.NewUserUseCase(userRepo)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, loc)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	limiter := httpRouter.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	sched := scheduler.New(scheduler.Config{
		Schedule: cfg.Quote.ExpirySchedule,
		Batch:    cfg.Quote.ExpiryBatch,
	}, quoteUC, log.Component("scheduler"))
	if err := sched.AddJob("rate_limiter_cleanup", "@every 5m", func() { limiter.Cleanup() }); err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	if appMetrics != nil {
		app.Use(httpRouter.MetricsMiddleware(appMetrics))
	}
	app.Use(limiter.Handler())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FilePath:    "./docs/swagger.json",
		FileContent: docs.JSON(),
		Path:        "docs",
		Title:       docs.SwaggerInfo.Title,
	}))

	var metricsHandler fiber.Handler
	if appMetrics != nil {
		metricsHandler = adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		UserUC:       userUC,
		IngredientUC: ingredientUC,
		BlendUC:      blendUC,
		CustomerUC:   customerUC,
		QuoteUC:      quoteUC,
		DashboardUC:  dashboardUC,
		DB:           pool,
		Metrics:      metricsHandler,
		ServiceName:  cfg.App.Name,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log.Component("api"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sched.Stop()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
