// Package app wires the storefront components together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/abgdnv/gostorefront/internal/auth"
	"github.com/abgdnv/gostorefront/internal/cart"
	"github.com/abgdnv/gostorefront/internal/cart/storage"
	"github.com/abgdnv/gostorefront/internal/catalog"
	catalogstore "github.com/abgdnv/gostorefront/internal/catalog/store"
	"github.com/abgdnv/gostorefront/internal/checkout"
	"github.com/abgdnv/gostorefront/internal/config"
	"github.com/abgdnv/gostorefront/internal/dashboard"
	"github.com/abgdnv/gostorefront/internal/notify"
	"github.com/abgdnv/gostorefront/internal/platform/bootstrap"
	"github.com/abgdnv/gostorefront/internal/platform/messaging"
	"github.com/abgdnv/gostorefront/internal/platform/messaging/amqp"
	"github.com/abgdnv/gostorefront/internal/platform/messaging/nats"
	"github.com/abgdnv/gostorefront/internal/platform/server"
	"github.com/abgdnv/gostorefront/internal/platform/telemetry"
	"github.com/abgdnv/gostorefront/internal/session"
	"github.com/abgdnv/gostorefront/internal/transport/rest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// ServiceName names the service in telemetry, health checks and the environment prefix.
const ServiceName = "storefront"

type Dependencies struct {
	Services rest.Services
	Registry *session.Registry
	Health   *health.Server
	Metrics  http.Handler
	Logger   *slog.Logger

	closers []func(context.Context) error
}

// Close releases the external connections in reverse order of creation.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	for _, c := range slices.Backward(d.closers) {
		errs = append(errs, c(ctx))
	}
	return errors.Join(errs...)
}

func (d *Dependencies) onClose(f func(context.Context) error) {
	d.closers = append(d.closers, f)
}

// SetupDependencies builds every component selected by the configuration. On error the
// connections opened so far are closed.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Dependencies, err error) {
	deps := &Dependencies{Logger: logger}
	defer func() {
		if err != nil {
			_ = deps.Close(context.Background())
		}
	}()

	if err = setupTelemetry(ctx, cfg, deps); err != nil {
		return nil, err
	}

	loader, err := setupCatalogLoader(ctx, cfg.Catalog, deps)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(ctx, loader)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	holder := catalog.NewHolder(cat)
	logger.Info("Catalog loaded", "source", cfg.Catalog.Source, "products", cat.Len(), "max_price", cat.MaxPrice())

	store, err := setupCartStore(ctx, cfg.Cart, deps)
	if err != nil {
		return nil, err
	}
	publisher, err := setupPublisher(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	sink := notify.Multi{notify.NewLogSink(logger), notify.NewPublisherSink(publisher, logger), notify.Scoped{}}
	registry := session.NewRegistry(func(sessionID string) *cart.Cart {
		return cart.New(sessionID, cart.Deps{
			Catalog:   holder,
			Store:     store,
			Sink:      sink,
			Logger:    logger,
			KeyPrefix: cfg.Cart.KeyPrefix,
		})
	}, logger)

	board, err := dashboard.NewBoard()
	if err != nil {
		return nil, err
	}

	deps.Registry = registry
	deps.Health = server.NewHealthServer(ServiceName)
	deps.Services = rest.Services{
		Catalog:  holder,
		Loader:   loader,
		Sessions: registry,
		Checkout: checkout.NewService(cfg.Checkout.TaxPercent, publisher, sink, logger),
		Verifier: auth.MockVerifier{},
		Tokens:   auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TTL),
		Board:    board,
	}
	return deps, nil
}

func setupTelemetry(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	mp, metrics, err := telemetry.NewMeterProvider(ServiceName)
	if err != nil {
		return err
	}
	deps.Metrics = metrics
	deps.onClose(mp.Shutdown)

	if !cfg.Telemetry.Traces.Enabled {
		return nil
	}
	tp, err := telemetry.NewTracerProvider(ctx, ServiceName, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to create tracer provider: %w", err)
	}
	deps.onClose(tp.Shutdown)
	return nil
}

func setupCatalogLoader(ctx context.Context, cfg config.CatalogConfig, deps *Dependencies) (catalog.Loader, error) {
	if cfg.Source != config.CatalogSourcePostgres {
		return catalogstore.NewSeedLoader(cfg.SeedFile), nil
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	deps.onClose(func(context.Context) error {
		dbPool.Close()
		return nil
	})
	deps.Logger.Info("Successfully connected to the database!")
	return catalogstore.NewPgLoader(dbPool), nil
}

func setupCartStore(ctx context.Context, cfg config.CartConfig, deps *Dependencies) (storage.Store, error) {
	if cfg.Storage != config.CartStorageRedis {
		return storage.NewMemory(), nil
	}
	client, err := storage.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.Timeout)
	if err != nil {
		return nil, err
	}
	deps.onClose(func(context.Context) error { return client.Close() })
	deps.Logger.Info("Successfully connected to Redis!")
	return storage.NewBreaker("cart-storage", storage.NewRedis(client, cfg.TTL), storage.BreakerSettings{
		ConsecutiveFailures: cfg.CircuitBreaker.ConsecutiveFailures,
		ErrorRatePercent:    cfg.CircuitBreaker.ErrorRatePercent,
		OpenTimeout:         cfg.CircuitBreaker.OpenTimeout,
	}), nil
}

// setupPublisher returns the broker publishers enabled in the configuration, or a no-op one.
func setupPublisher(ctx context.Context, cfg *config.Config, deps *Dependencies) (messaging.Publisher, error) {
	var publishers messaging.Fanout
	if cfg.NATS.Enabled {
		nc, err := nats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS connection: %w", err)
		}
		deps.onClose(func(context.Context) error { return nc.Drain() })
		js, err := nats.NewJetStreamContext(nc)
		if err != nil {
			return nil, fmt.Errorf("failed to get JetStream context: %w", err)
		}
		if err := nats.EnsureStream(ctx, js, cfg.NATS.Stream); err != nil {
			return nil, err
		}
		publishers = append(publishers, nats.NewNatsPublisher(js))
	}
	if cfg.AMQP.Enabled {
		p, err := amqp.Dial(cfg.AMQP.Url, cfg.AMQP.Exchange)
		if err != nil {
			return nil, err
		}
		deps.onClose(func(context.Context) error { return p.Close() })
		publishers = append(publishers, p)
	}
	switch len(publishers) {
	case 0:
		return messaging.Noop{}, nil
	case 1:
		return publishers[0], nil
	default:
		return publishers, nil
	}
}

// SetupHttpHandler builds the instrumented router. Used by the e2e tests as well.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	rest.NewHandler(deps.Services, deps.Logger).RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	return server.Instrument(mux, ServiceName)
}

func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}
	return server.NewHTTPServer(httpCfg, SetupHttpHandler(deps))
}

// SetupGrpcServer creates the gRPC server carrying the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.WithHealth(deps.Health))
}
