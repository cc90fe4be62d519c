package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-core/internal/config"
	"crm-core/internal/database"
	"crm-core/internal/jobs"
	"crm-core/internal/logger"
	"crm-core/internal/repository"
	"crm-core/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	jobTimeout  time.Duration
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "crm-worker",
	Short: "CRM batch jobs",
	Long: `Runs the periodic CRM jobs against the customer/product/order store.

Jobs:
  heartbeat  - log that the CRM and its GraphQL layer are alive
  reminders  - log orders placed within the reminder window
  report     - log customer, order and revenue totals
  restock    - top up products whose stock is below 10`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every job on its cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScheduler()
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <job>",
	Short: "Run a single job once and exit",
	Long: `Run a single job once and exit.

Examples:
  crm-worker exec restock
  crm-worker exec report --timeout 30s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&jobTimeout, "timeout", 2*time.Minute, "Maximum duration of a single job run")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9091", "Address serving /metrics (empty disables it)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(execCmd)
}

// worker bundles what both commands need
type worker struct {
	log      *zap.Logger
	db       database.Service
	entries  []jobs.Entry
	registry *prometheus.Registry
}

func newWorker() (*worker, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}

	store := repository.NewStore(db.DB())
	queries := service.NewQueryResolver(store, log)
	mutations := service.NewMutationResolver(store, log)

	entries, err := jobs.Build(cfg.Jobs, queries, mutations, func(path string) (*zap.Logger, error) {
		return logger.NewFileLogger(cfg.Server.Env, path)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &worker{
		log:      log,
		db:       db,
		entries:  entries,
		registry: prometheus.NewRegistry(),
	}, nil
}

func (w *worker) close() {
	if err := w.db.Close(); err != nil {
		w.log.Error("Failed to close database connection", zap.Error(err))
	}
	w.log.Sync()
}

func runScheduler() error {
	w, err := newWorker()
	if err != nil {
		return err
	}
	defer w.close()

	scheduler := jobs.NewScheduler(w.log, jobTimeout, w.registry)
	for _, e := range w.entries {
		if err := scheduler.Add(e.Schedule, e.Job); err != nil {
			return err
		}
	}

	var metricsServer *http.Server
	if metricsAddr != "" {
		metricsServer = &http.Server{Addr: metricsAddr, Handler: metricsRouter(w.registry), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				w.log.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.Start()
	w.log.Info("Worker started", zap.Int("jobs", len(w.entries)))

	<-ctx.Done()
	w.log.Info("Shutting down worker, waiting for running jobs")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			w.log.Error("Metrics server forced to shutdown", zap.Error(err))
		}
	}
	return scheduler.Stop(shutdownCtx)
}

func metricsRouter(registry *prometheus.Registry) http.Handler {
	router := chi.NewRouter()
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return router
}

func runOnce(ctx context.Context, name string) error {
	w, err := newWorker()
	if err != nil {
		return err
	}
	defer w.close()

	job, err := jobs.Find(w.entries, name)
	if err != nil {
		return err
	}

	scheduler := jobs.NewScheduler(w.log, jobTimeout, w.registry)
	return scheduler.RunNow(ctx, job)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
