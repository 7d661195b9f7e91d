package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bibbank/cardrisk/internal/application/usecase"
	"github.com/bibbank/cardrisk/internal/domain/port"
	"github.com/bibbank/cardrisk/internal/domain/service"
	"github.com/bibbank/cardrisk/internal/infrastructure/config"
	"github.com/bibbank/cardrisk/internal/infrastructure/geoip"
	"github.com/bibbank/cardrisk/internal/infrastructure/kafka"
	"github.com/bibbank/cardrisk/internal/infrastructure/postgres"
	"github.com/bibbank/cardrisk/internal/infrastructure/redis"
	"github.com/bibbank/cardrisk/internal/infrastructure/telemetry"
	grpcpresentation "github.com/bibbank/cardrisk/internal/presentation/grpc"
	"github.com/bibbank/cardrisk/internal/presentation/rest"
	"github.com/bibbank/cardrisk/pkg/auth"
	pkgkafka "github.com/bibbank/cardrisk/pkg/kafka"
	"github.com/bibbank/cardrisk/pkg/observability"
	pkgpostgres "github.com/bibbank/cardrisk/pkg/postgres"
)

const serviceName = "cardrisk"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  "json",
		Service: serviceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting cardrisk",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"environment", cfg.Environment,
	)

	// Initialize tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    !cfg.IsProduction(),
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	recorder, err := telemetry.NewRecorder(meterProvider.Meter(serviceName))
	if err != nil {
		logger.Error("failed to create metric instruments", "error", err)
		os.Exit(1)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.PoolConfig{URL: cfg.DatabaseURL})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if cfg.MigrationsDir != "" {
		if err := pkgpostgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied", "dir", cfg.MigrationsDir)
	}

	// Wire infrastructure adapters.
	transactionRepo := postgres.NewTransactionRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	var (
		profiles     port.ProfileLookup = profileRepo
		profileCache port.ProfileCache
	)

	readiness := map[string]rest.Checker{
		"postgres": rest.CheckerFunc(func(ctx context.Context) error {
			return pkgpostgres.HealthCheck(ctx, pool)
		}),
	}

	if cfg.Redis.Addr != "" {
		ttl, _ := cfg.ProfileCacheTTL()
		client := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer func() { _ = client.Close() }()

		cache := redis.NewCachedProfileLookup(profiles, client, ttl, logger)
		profiles = cache
		profileCache = cache
		readiness["redis"] = cache
		logger.Info("profile cache enabled", "addr", cfg.Redis.Addr, "ttl", ttl)
	}

	kafkaCfg := cfg.KafkaSettings()
	producer, err := pkgkafka.NewProducer(kafkaCfg)
	if err != nil {
		logger.Error("failed to create kafka producer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = producer.Close() }()
	eventPublisher := kafka.NewPublisher(producer, cfg.Kafka.Topic, logger)

	scoreOpts := []usecase.ScoreOption{
		usecase.WithScoreRecorder(recorder),
		usecase.WithScoreLogger(logger),
	}
	if cfg.GeoIPCityDB != "" {
		locator, err := geoip.Open(cfg.GeoIPCityDB)
		if err != nil {
			logger.Error("failed to open geoip database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = locator.Close() }()
		scoreOpts = append(scoreOpts, usecase.WithGeoLocator(locator))
		logger.Info("geoip enrichment enabled", "db", cfg.GeoIPCityDB)
	}

	// Wire domain services.
	var scorerOpts []service.Option
	if cfg.CaseInsensitiveLocations() {
		scorerOpts = append(scorerOpts, service.WithCaseInsensitiveLocations())
	}
	riskScorer := service.NewRiskScorer(scorerOpts...)

	fillPolicy, _ := cfg.FillPolicy()
	aggregator := service.NewStatisticsAggregator(
		service.WithFillPolicy(fillPolicy),
		service.WithLogger(logger),
	)

	// Wire use cases.
	scoreTransactionUC := usecase.NewScoreTransaction(profiles, transactionRepo, transactionRepo, eventPublisher, riskScorer, scoreOpts...)
	getTransactionUC := usecase.NewGetTransaction(transactionRepo)
	reviewTransactionUC := usecase.NewReviewTransaction(transactionRepo, eventPublisher)
	getStatisticsUC := usecase.NewGetStatistics(transactionRepo, aggregator)
	updateProfileUC := usecase.NewUpdateProfile(profileRepo, profileCache)

	// JWT service for gRPC auth (validation-only when a public key is set).
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:       cfg.JWT.Secret,
		PublicKeyPEM: cfg.JWT.PublicKeyPEM,
		Issuer:       cfg.JWT.Issuer,
	})
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewCardRiskServiceHandler(
		scoreTransactionUC, getTransactionUC, reviewTransactionUC, getStatisticsUC, logger,
	)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:      cfg.GRPCAddress(),
		TLSCertFile:  cfg.TLSCertFile,
		TLSKeyFile:   cfg.TLSKeyFile,
		ClientCAFile: cfg.TLSClientCAFile,
		Reflection:   !cfg.IsProduction(),
	}, jwtSvc, logger)
	if err != nil {
		logger.Error("failed to create gRPC server", "error", err)
		os.Exit(1)
	}

	// HTTP server (health checks and metrics).
	healthHandler := rest.NewHealthHandler(logger, readiness, metricsHandler)
	httpMux := http.NewServeMux()
	healthHandler.RegisterRoutes(httpMux)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      httpMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 4)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if cfg.Kafka.ReviewTopic != "" {
		reviewHandler := kafka.NewReviewDecisionHandler(reviewTransactionUC, logger)
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.ReviewTopic, reviewHandler.Handle, logger)
		if err != nil {
			logger.Error("failed to create review consumer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = consumer.Close() }()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("review consumer error: %w", err)
			}
		}()
	}

	if cfg.Kafka.ProfileTopic != "" {
		profileHandler := kafka.NewProfileUpdateHandler(updateProfileUC, logger)
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.ProfileTopic, profileHandler.Handle, logger)
		if err != nil {
			logger.Error("failed to create profile consumer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = consumer.Close() }()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("profile consumer error: %w", err)
			}
		}()
	}

	logger.Info("cardrisk started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down cardrisk")
	cancel()

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("cardrisk stopped")
}
