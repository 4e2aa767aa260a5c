package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"

	"contractor-verify/internal/constants"
	"contractor-verify/internal/domain"
	"contractor-verify/internal/infrastructure/repository"
	"contractor-verify/internal/places"
	"contractor-verify/internal/ratelimit"
	"contractor-verify/internal/server"
	"contractor-verify/internal/verification"
	"contractor-verify/pkg/config"
	"contractor-verify/pkg/container"
	"contractor-verify/pkg/database"
	"contractor-verify/pkg/events"
	"contractor-verify/pkg/health"
	"contractor-verify/pkg/logging"
	metricsPkg "contractor-verify/pkg/metrics"
	"contractor-verify/pkg/monitoring"
)

func main() {
	// Build container and register providers
	c := container.New()

	// Config (singleton)
	_ = c.Provide(func() *config.Config { return config.Load() }, true)

	// Logger (singleton)
	_ = c.Provide(func(cfg *config.Config) (*logging.Logger, error) {
		lc := logging.DefaultLogConfig()
		lc.Level = logging.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
		lc.EnableFile = cfg.EnableFileLogging
		lc.FilePath = cfg.LogFile
		return logging.NewLogger(lc)
	}, true)

	// Database (singleton)
	_ = c.Provide(func(cfg *config.Config) (*database.DB, error) { return database.NewWithConfig(cfg.DatabaseURL, cfg) }, true)

	// Repository (singleton)
	_ = c.Provide(func(db *database.DB) domain.Repository { return repository.NewSQLRepository(db) }, true)

	// External clients (singletons)
	_ = c.Provide(func(cfg *config.Config, lg *logging.Logger) (*places.Client, error) {
		return places.NewClient(cfg.GoogleMapsAPIKey, lg)
	}, true)
	_ = c.Provide(func(pc *places.Client) places.Provider { return pc }, true)

	// Verification service (singleton)
	_ = c.Provide(func(p places.Provider, repo domain.Repository, lg *logging.Logger) *verification.Service {
		return verification.NewService(p, repo, lg)
	}, true)

	// Event store and rate limit gate (singletons)
	_ = c.Provide(func(db *database.DB) (events.EventStore, error) { return events.NewSQLEventStore(db) }, true)
	_ = c.Provide(func(cfg *config.Config, es events.EventStore, lg *logging.Logger) (*ratelimit.Gate, error) {
		policy := ratelimit.DefaultPolicy()
		policy.DefaultLimit = cfg.RateLimitDefault
		policy.DefaultWindow = cfg.RateLimitWindowMinutes
		if cfg.RateLimitPolicyPath != "" {
			loaded, err := ratelimit.LoadPolicy(cfg.RateLimitPolicyPath)
			if err != nil {
				return nil, err
			}
			policy = loaded
		}
		return ratelimit.NewGate(es, policy, lg), nil
	}, true)

	// Resolve config early for validation and monitoring setup
	var cfg *config.Config
	if err := c.Resolve(&cfg); err != nil {
		log.Fatal("config resolve:", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal("config validation: ", err)
	}
	monitoring.EnableProfiling(cfg.ProfilingEnabled)

	var logger *logging.Logger
	if err := c.Resolve(&logger); err != nil {
		log.Fatal("logger resolve:", err)
	}
	defer logger.Close()
	logger.Info("Starting contractor verification service",
		logging.String("env", cfg.Env),
		logging.String("port", cfg.Port))

	// Resolve runtime dependencies
	var (
		db   *database.DB
		svc  *verification.Service
		gate *ratelimit.Gate
	)
	if err := c.Resolve(&db); err != nil {
		log.Fatal("db resolve:", err)
	}
	if err := c.Resolve(&svc); err != nil {
		log.Fatal("service resolve:", err)
	}
	if err := c.Resolve(&gate); err != nil {
		log.Fatal("gate resolve:", err)
	}

	// Start config watcher for hot-reload of rate limit defaults
	cw := config.NewWatcher(time.Duration(cfg.ConfigReloadIntervalSeconds) * time.Second)
	cw.Start()
	defer cw.Close()
	chgCh := cw.Subscribe()
	go func() {
		for chg := range chgCh {
			if chg.Err != nil {
				logger.Warn("Config reload failed", logging.String("error", chg.Err.Error()))
				continue
			}
			policy := ratelimit.DefaultPolicy()
			policy.DefaultLimit = chg.New.RateLimitDefault
			policy.DefaultWindow = chg.New.RateLimitWindowMinutes
			if chg.New.RateLimitPolicyPath != "" {
				loaded, err := ratelimit.LoadPolicy(chg.New.RateLimitPolicyPath)
				if err != nil {
					logger.Warn("Rate limit policy reload failed", logging.String("error", err.Error()))
					continue
				}
				policy = loaded
			}
			gate.SetPolicy(policy)
			cfg = chg.New
			logger.Info("Config applied", logging.Any("fields", chg.Fields))
		}
	}()

	// Health checks
	hm := health.NewManager("1.0.0", constants.HealthTimeoutDefault, logger)
	hm.Register(health.NewDatabaseChecker(db.Conn(), "mysql"))
	hm.Register(health.NewHTTPChecker("https://maps.googleapis.com/maps/api/place/details/json", "google_places", 10*time.Second))

	// Graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("Received shutdown signal, initiating graceful shutdown")
		cancel()
	}()

	// HTTP routing
	router := mux.NewRouter()

	var reqMetrics *monitoring.Metrics
	if cfg.MetricsEnabled {
		reqMetrics = monitoring.NewMetrics(512)
		router.Use(monitoring.Middleware(reqMetrics))
	}
	router.Use(server.CORS, server.RequestID)

	router.HandleFunc("/verify-business", server.VerifyBusinessHandler(svc, logger)).Methods("POST", "OPTIONS")
	router.HandleFunc("/rate-limit", server.RateLimitHandler(gate, logger)).Methods("POST", "OPTIONS")

	var repo domain.Repository
	if err := c.Resolve(&repo); err != nil {
		log.Fatal("repo resolve:", err)
	}
	router.HandleFunc("/contractors/{id}/verification-history", server.VerificationHistoryHandler(repo, logger)).Methods("GET")
	router.HandleFunc(cfg.HealthCheckPath, hm.Handler()).Methods("GET")
	router.HandleFunc(cfg.HealthCheckPath+"/live", hm.LivenessHandler()).Methods("GET")

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}

	var adminServer *http.Server
	if cfg.ProfilingEnabled || cfg.MetricsEnabled {
		adminMux := http.NewServeMux()
		if cfg.ProfilingEnabled {
			monitoring.RegisterPprof(adminMux)
		}
		if cfg.MetricsEnabled {
			adminMux.Handle(cfg.MetricsPath, metricsPkg.Handler())
			if reqMetrics != nil && cfg.MetricsPath != "/metrics.json" {
				adminMux.Handle("/metrics.json", monitoring.MetricsHandler(reqMetrics))
			}
		}
		adminServer = &http.Server{Addr: ":" + cfg.ProfilingPort, Handler: adminMux}
		go func() {
			fmt.Printf("Admin server (pprof/metrics) starting on port %s\n", cfg.ProfilingPort)
			if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("Admin HTTP server error", logging.String("error", err.Error()))
			}
		}()
	}

	go func() {
		fmt.Printf("Server starting on port %s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error:", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeoutDefault)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", logging.String("error", err.Error()))
	}
	if adminServer != nil {
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Admin HTTP server shutdown error", logging.String("error", err.Error()))
		}
	}
	if err := db.Close(); err != nil {
		logger.Warn("Database close error", logging.String("error", err.Error()))
	}
	logger.Info("Application shutdown complete")
}
