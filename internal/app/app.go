// Package app wires the storefront together and runs the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-storefront/internal/catalog"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/discount"
	"github.com/xenking/kart-storefront/internal/domain/ledger"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/handler"
	"github.com/xenking/kart-storefront/internal/storage/postgres"
	"github.com/xenking/kart-storefront/pkg/health"
	"github.com/xenking/kart-storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	rate, err := cfg.Discount.Rate()
	if err != nil {
		return err
	}

	healthSvc := health.New(lg.Named("health"))
	healthSvc.Add(health.Probe{
		Name:    "goroutines",
		Kind:    health.Liveness,
		Timeout: time.Second,
		Check:   health.Goroutines(10000),
	})

	// Product catalog.
	products := catalog.NewMemory()
	if cfg.CatalogFile != "" {
		seed, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return errors.Wrap(err, "load catalog")
		}
		for _, p := range seed {
			if err := products.Add(ctx, p); err != nil {
				return errors.Wrapf(err, "add product %s", p.ID)
			}
		}
		lg.Info("Catalog loaded", zap.String("file", cfg.CatalogFile), zap.Int("products", products.Len()))
		healthSvc.Add(health.Probe{
			Name:  "catalog",
			Kind:  health.Readiness,
			Check: health.NotEmpty("catalog", products),
		})
	}

	// Optional order archive.
	var orders order.Repository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.Add(health.Probe{
			Name:    "postgres",
			Kind:    health.Readiness,
			Timeout: 5 * time.Second,
			Check:   health.Ping(pool),
		})
		orders = postgres.NewOrderRepository(pool)
		lg.Info("Order archive enabled")
	}

	// Domain state.
	l := ledger.New()
	carts := cart.NewStore()
	discounts := discount.NewManager(l, discount.Config{
		NthOrder: cfg.Discount.NthOrder,
		Rate:     rate,
	})
	engine := order.NewEngine(carts, discounts, l)

	h, err := handler.NewHandler(
		handler.HandlerConfig{
			MeterProvider:  m.MeterProvider(),
			TracerProvider: m.TracerProvider(),
		},
		products,
		cart.NewManager(carts),
		engine,
		discounts,
		l,
		orders,
	)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.RequestID(),
			httpmiddleware.Recovery(),
			httpmiddleware.Instrument("storefront", routeFinder, m),
			httpmiddleware.Labeler(routeFinder),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins:     cfg.CORS.Origins,
				Credentials: cfg.CORS.AllowCredentials,
				MaxAge:      24 * time.Hour,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
		),
	}

	healthSvc.Start(ctx, 10*time.Second)
	defer healthSvc.Stop()
	healthSvc.SetReady(true)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}
