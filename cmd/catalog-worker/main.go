package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"

	"github.com/netobs/dc-catalog/internal/activity"
	"github.com/netobs/dc-catalog/internal/catalog"
	"github.com/netobs/dc-catalog/internal/config"
	"github.com/netobs/dc-catalog/internal/db"
	"github.com/netobs/dc-catalog/internal/infrahub"
	"github.com/netobs/dc-catalog/internal/logging"
	"github.com/netobs/dc-catalog/internal/metrics"
	"github.com/netobs/dc-catalog/internal/workflow"
)

const taskQueue = "catalog-tasks"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("catalog-worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg, "catalog-worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewCatalogPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to catalog database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(pool)

	tlsConfig, err := cfg.TemporalTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure temporal TLS")
	}
	dialOpts := temporalclient.Options{
		HostPort: cfg.TemporalAddress,
		Logger:   logging.NewTemporalLogger(logger),
	}
	if tlsConfig != nil {
		dialOpts.ConnectionOptions = temporalclient.ConnectionOptions{TLS: tlsConfig}
		logger.Info().Msg("temporal mTLS enabled")
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	backend := infrahub.NewClient(infrahub.Config{
		Address:       cfg.InfrahubAddress,
		Token:         cfg.InfrahubAPIToken,
		DefaultBranch: cfg.InfrahubDefaultBranch,
		Timeout:       cfg.BackendTimeout,
		Retries:       cfg.BackendRetries,
		Logger:        logger,
	})

	defaults, err := catalog.Load(cfg.DCDefaultsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog defaults")
	}

	w := worker.New(tc, taskQueue, worker.Options{
		Interceptors: []interceptor.WorkerInterceptor{&workflow.ErrorTypingInterceptor{}},
	})

	// Register activities
	w.RegisterActivity(activity.NewCatalogDB(pool))
	w.RegisterActivity(activity.NewBackend(backend, defaults))

	// Register workflows
	w.RegisterWorkflow(workflow.ProvisionDataCenterWorkflow)

	if cfg.MetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsAddr)
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	logger.Info().Str("taskQueue", taskQueue).Msg("starting temporal worker")
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal().Err(err).Msg("worker failed")
	}

	logger.Info().Msg("shutting down worker")
}
