package poolservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"ridepool/internal/domain/pricing"
	"ridepool/internal/general/config"
	"ridepool/internal/general/jwt"
	"ridepool/internal/general/logger"
	"ridepool/internal/general/postgres"
	"ridepool/internal/general/rabbitmq"
	"ridepool/internal/observability"
	fleethandler "ridepool/internal/software/fleet/handler"
	fleetservice "ridepool/internal/software/fleet/service"
	poolhandler "ridepool/internal/software/pool/handler"
	poolsvc "ridepool/internal/software/pool/service"
	ridehandler "ridepool/internal/software/ride/handler"
	rideservice "ridepool/internal/software/ride/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run wires the pool service and blocks until ctx is cancelled.
func Run(ctx context.Context, maxConcurrent int) error {
	// static request ID for startup logs
	logger := logger.New("pool-service")
	ctx = logger.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	db, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer db.Close()

	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	pub := rabbitmq.NewEventPublisher(rmq)

	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)

	uow := postgres.NewUnitOfWork(db)
	rideRepo := postgres.NewRideRepo()
	poolRepo := postgres.NewPoolRepo()
	vehicleRepo := postgres.NewVehicleRepo()

	calculator := pricing.NewCalculator(pricing.Options{
		BaseFare:            cfg.Pricing.BaseFare,
		RatePerKm:           cfg.Pricing.RatePerKm,
		PoolDiscount:        cfg.Pricing.PoolDiscount,
		DetourPenaltyWeight: cfg.Pricing.DetourPenaltyWeight,
		SurgeMultiplier:     cfg.Pricing.SurgeMultiplier,
	})
	selector := fleetservice.NewFirstFitSelector(vehicleRepo)

	rideSvc := rideservice.NewRideService(logger, uow, rideRepo, poolRepo, selector, calculator, pub)
	poolSvc := poolsvc.NewPoolService(logger, uow, poolRepo)
	fleetSvc := fleetservice.NewFleetService(logger, uow, vehicleRepo)

	mux := http.NewServeMux()
	ridehandler.NewRideHTTPHandler(rideSvc, logger, jwtManager).RegisterRoutes(mux)
	poolhandler.NewPoolHTTPHandler(poolSvc, logger, jwtManager).RegisterRoutes(mux)
	fleethandler.NewFleetHTTPHandler(fleetSvc, logger, jwtManager).RegisterRoutes(mux)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", healthHandler(db))

	// concurrency limiter (global), blocks when capacity is full
	limitedHandler := withConcurrencyLimit(maxConcurrent, observability.HTTPMetricsMiddleware(mux))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Services.PoolServicePort),
		Handler:           limitedHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("Pool Service started on port %d", cfg.Services.PoolServicePort),
		map[string]any{"port": cfg.Services.PoolServicePort, "max_concurrent": maxConcurrent},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		// graceful HTTP shutdown on context cancel
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, "shutdown_started", "Shutting down Pool Service", nil)
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": cfg.Services.PoolServicePort})
			return err
		}
		return nil
	}

	return nil
}

// RunMigrations applies pending migrations from dir and exits.
func RunMigrations(ctx context.Context, dir string) error {
	logger := logger.New("pool-service")
	ctx = logger.WithRequestID(ctx, "migrate-001")

	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	db, err := postgres.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, dir, logger); err != nil {
		logger.Error(ctx, "migration_failed", "Failed to apply migrations", err, nil)
		return err
	}

	logger.Info(ctx, "migrations_done", "All migrations applied", map[string]any{"dir": dir})
	return nil
}

// healthHandler reports liveness plus a database ping.
func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := db.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded","database":"down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// It controls how many HTTP requests can be in-progress at the same time.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}: // acquire
			defer func() { <-sem }() // release
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			// client canceled or server is shutting down
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
