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

	"pharma-ops/internal/backend"
	"pharma-ops/internal/config"
	"pharma-ops/internal/database"
	"pharma-ops/internal/export"
	"pharma-ops/internal/handler"
	"pharma-ops/internal/invoice"
	"pharma-ops/internal/ledger"
	"pharma-ops/internal/lifecycle"
	"pharma-ops/internal/notify"
	"pharma-ops/internal/repository"
	"pharma-ops/internal/router"
	"pharma-ops/internal/service"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// stores is the system of record selected by STORE_DRIVER.
type stores struct {
	orders     repository.OrderStore
	periodic   repository.PeriodicOrderStore
	pharmacies repository.PharmacyStore
	close      func()
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("store_driver", cfg.Store.Driver).Msg("starting pharma-ops API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	policy, err := lifecycle.ParsePolicy(cfg.Orders.TransitionPolicy)
	if err != nil {
		return fmt.Errorf("failed to parse transition policy: %w", err)
	}
	location, err := cfg.Reports.Location()
	if err != nil {
		return fmt.Errorf("failed to load report timezone: %w", err)
	}

	publisher, metrics, err := newNotifiers(ctx, cfg.Notify, logger)
	if err != nil {
		return err
	}

	deps := service.Dependencies{
		Machine:   lifecycle.New(lifecycle.WithPolicy(policy)),
		Ledger:    ledger.New(time.Now),
		Publisher: publisher,
		Metrics:   metrics,
		Renderer:  export.NewJSONRenderer(),
		Artifacts: newArtifactStore(ctx, cfg.Export, logger),
		Company: invoice.Company{
			Name:    cfg.Company.Name,
			Address: cfg.Company.Address,
			GSTIN:   cfg.Company.GSTIN,
			Email:   cfg.Company.Email,
			Phone:   cfg.Company.Phone,
		},
		Location: location,
		Now:      time.Now,
	}

	// Initialize services
	orderService := service.NewOrderService(st.orders, deps, logger)
	periodicService := service.NewPeriodicOrderService(st.periodic, deps, logger)
	pharmacyService := service.NewPharmacyService(st.pharmacies, deps, logger)

	// Initialize HTTP handlers
	v := handler.NewValidator()
	paging := handler.Paging{DefaultPageSize: cfg.Reports.DefaultPageSize, MaxPageSize: cfg.Reports.MaxPageSize}
	mux := router.New(router.Handlers{
		Orders:         handler.NewOrderHandler(orderService, v, paging, logger),
		PeriodicOrders: handler.NewPeriodicOrderHandler(periodicService, v, paging, logger),
		Pharmacies:     handler.NewPharmacyHandler(pharmacyService, v, paging, logger),
		Notifications:  handler.NewNotificationHandler(notify.NewReadSet(), v, logger),
	}, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("address", cfg.Server.Address()).Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
		return nil
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		return &stores{
			orders:     repository.NewOrderStore(pool, logger),
			periodic:   repository.NewPeriodicOrderStore(pool, logger),
			pharmacies: repository.NewPharmacyStore(pool, logger),
			close:      pool.Close,
		}, nil
	default:
		client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger, backend.WithToken(cfg.Backend.Token))
		logger.Info().Str("base_url", cfg.Backend.BaseURL).Msg("using REST backend as system of record")
		return &stores{
			orders:     client.Orders(),
			periodic:   client.PeriodicOrders(),
			pharmacies: client.Pharmacies(),
			close:      func() {},
		}, nil
	}
}

// newArtifactStore prefers S3 and falls back to the local directory when S3 is disabled,
// cannot be initialised or rejects a write.
func newArtifactStore(ctx context.Context, cfg config.ExportConfig, logger zerolog.Logger) export.ArtifactStore {
	local := export.NewFileStore(cfg.LocalDir, logger)
	if !cfg.S3Enabled {
		logger.Info().Str("dir", cfg.LocalDir).Msg("using local file system for exports (S3 disabled)")
		return local
	}

	s3Store, err := export.NewS3Store(ctx, cfg.Bucket, cfg.Region, cfg.Prefix, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise S3 store, falling back to local file system only")
		return local
	}
	return export.NewFallbackStore(s3Store, local, true, logger)
}

func newNotifiers(ctx context.Context, cfg config.NotifyConfig, logger zerolog.Logger) (notify.Publisher, notify.Metrics, error) {
	publisher := notify.NewNopPublisher()
	metrics := notify.NewNopMetrics()
	if !cfg.SQSEnabled && !cfg.MetricsEnabled {
		return publisher, metrics, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.SQSEnabled {
		publisher = notify.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.QueueURL, logger)
		logger.Info().Str("queue_url", cfg.QueueURL).Msg("status change notifications enabled")
	}
	if cfg.MetricsEnabled {
		metrics = notify.NewCloudWatchMetrics(cloudwatch.NewFromConfig(awsCfg), cfg.MetricsNamespace, logger)
		logger.Info().Str("namespace", cfg.MetricsNamespace).Msg("CloudWatch metrics enabled")
	}
	return publisher, metrics, nil
}
