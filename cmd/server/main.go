// Package main runs the space travel agency API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/nekoneko-space/travel-platform/internal/app"
	"github.com/nekoneko-space/travel-platform/internal/app/httpapi"
	"github.com/nekoneko-space/travel-platform/internal/app/metrics"
	"github.com/nekoneko-space/travel-platform/internal/app/storage/postgres"
	"github.com/nekoneko-space/travel-platform/internal/config"
	"github.com/nekoneko-space/travel-platform/internal/middleware"
	"github.com/nekoneko-space/travel-platform/internal/monitor"
	"github.com/nekoneko-space/travel-platform/internal/notify"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	addr := flag.String("addr", "", "listen address override, host:port")
	flag.Parse()

	// A local .env is optional.
	_ = godotenv.Load()

	cfg, err := config.LoadFromPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err := run(cfg, *addr, log); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
}

func run(cfg *config.Config, addrOverride string, log *logger.Logger) error {
	stores := app.Stores{}
	if cfg.Database.DSN != "" {
		db, err := openDatabase(cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()

		pg := postgres.New(db)
		stores = app.Stores{
			Users:    pg,
			Bookings: pg,
			Training: pg,
			Health:   pg,
			Payments: pg,
		}
	} else {
		log.Warn("no database DSN configured; using in-memory storage")
	}

	application, err := app.New(cfg, stores, nil, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	notifier := notify.New(cfg.Notifier, log)

	if !cfg.Monitor.DisableSystemMonitor {
		mon := monitor.New(cfg.Monitor, log)
		mon.OnAlert(func(ctx context.Context, a monitor.Alert) {
			notifier.Broadcast(ctx, notify.Alert{
				Title:    fmt.Sprintf("Resource alert: %s", a.Resource),
				Message:  a.Message,
				Severity: notify.SeverityWarning,
			})
		})
		if err := application.Attach(mon); err != nil {
			return fmt.Errorf("attach monitor: %w", err)
		}
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := application.Start(startCtx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	handler := buildRouter(cfg, application, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if addrOverride != "" {
		addr = addrOverride
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown incomplete")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stop services: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func openDatabase(cfg config.DatabaseConfig, log *logger.Logger) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.MigrationsPath != "" {
		if err := postgres.Migrate(db, cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		log.WithField("path", cfg.MigrationsPath).Info("migrations applied")
	}
	return db, nil
}

func buildRouter(cfg *config.Config, application *app.Application, log *logger.Logger) http.Handler {
	api := httpapi.New(httpapi.Services{
		Users:    application.Users,
		Bookings: application.Bookings,
		Payments: application.Payments,
		Safety:   application.Safety,
		Weather:  application.Weather,
		Routes:   application.Routes,
		Desk:     application.Desk,
		Team:     application.Team,
	}, log)

	auth := middleware.NewAuth(cfg.Auth.JWTSecret, log, nil)
	authHandlers := newAuthHandlers(application.Users, auth, log)

	cors := middleware.NewCORS([]string{"*"})
	limiter := middleware.NewRateLimiter(50, 100, log)

	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/auth/register", authHandlers.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandlers.login).Methods(http.MethodPost)

	apiChain := metrics.InstrumentHandler(auth.Handler(http.StripPrefix("/api/v1", api)))
	r.PathPrefix("/api/v1/").Handler(apiChain)

	return cors.Handler(limiter.Handler(r))
}
