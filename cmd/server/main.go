/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave policy and accrual engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment (.env honored)
  2. Initialize SQLite store
  3. Wire resolver, ledger, request service, payroll bridge, batch runner
  4. Start background scheduler (accrual + year close)
  5. Start HTTP server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, waiting for an in-flight batch
  4. Close database connection

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - batch/scheduler.go: Background jobs
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hrworks/leave-engine/accrual"
	"github.com/hrworks/leave-engine/api"
	"github.com/hrworks/leave-engine/batch"
	"github.com/hrworks/leave-engine/calendar"
	"github.com/hrworks/leave-engine/config"
	"github.com/hrworks/leave-engine/ledger"
	"github.com/hrworks/leave-engine/payroll"
	"github.com/hrworks/leave-engine/policy"
	"github.com/hrworks/leave-engine/request"
	"github.com/hrworks/leave-engine/store/sqlite"
)

func main() {
	cfg := config.Load()

	log := newLogger(cfg)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to initialize database")
	}
	defer store.Close()

	// Domain wiring
	resolver := &policy.Resolver{Store: store}
	led := ledger.New(store)
	reqSvc := &request.Service{
		Resolver:  resolver,
		Employees: store,
		Ledger:    led,
		Validator: &request.Validator{},
	}
	bridge := &payroll.Bridge{Ledger: led}
	runner := &batch.Runner{
		Employees: store,
		Resolver:  resolver,
		Calc:      accrual.NewCalculator(),
		Ledger:    led,
		Workers:   cfg.BatchWorkers,
		Log:       log.With().Str("component", "batch").Logger(),
		RecordCloseRun: func(ctx context.Context, r batch.CloseRun) error {
			return store.SaveYearCloseRun(ctx, sqlite.YearCloseRun{
				ID:          uuid.NewString(),
				EmployeeID:  r.EmployeeID,
				LeaveType:   r.LeaveType,
				Year:        r.Year,
				CarriedOver: r.CarriedOver,
				Forfeited:   r.Forfeited,
				Status:      r.Status,
				Error:       r.Error,
				CompletedAt: r.CompletedAt,
			})
		},
	}

	if !cfg.IsProduction() {
		seedPresets(store, log)
	}

	var scheduler *batch.Scheduler
	if cfg.SchedulerEnabled {
		scheduler = batch.NewScheduler(runner, cfg.SchedulerInterval,
			log.With().Str("component", "scheduler").Logger())
		scheduler.Start()
	}

	handler := &api.Handler{
		Policies:  store,
		Employees: store,
		Resolver:  resolver,
		Ledger:    led,
		Requests:  reqSvc,
		Bridge:    bridge,
		Runner:    runner,
		Log:       log.With().Str("component", "api").Logger(),
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(handler, cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	log.Info().Msg("server stopped")
}

// seedPresets gives an empty development database a usable default
// policy so the API works out of the box.
func seedPresets(store *sqlite.Store, log zerolog.Logger) {
	ctx := context.Background()

	policies, err := store.ListPolicies(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to check for existing policies")
		return
	}
	if len(policies) > 0 {
		return
	}

	preset := policy.StandardCompanyPolicy("standard-company", calendar.StartOfYear(calendar.Today().Year()))
	if err := store.SavePolicy(ctx, preset); err != nil {
		log.Warn().Err(err).Msg("failed to seed default policy")
		return
	}
	log.Info().Str("policy", preset.Name).Msg("seeded default policy")
}

func newLogger(cfg config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsProduction() {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}
