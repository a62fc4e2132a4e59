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

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/guestcart"
	"storefront/internal/httpserver"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/recent"
	addressrepo "storefront/internal/repository/address"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	customerrepo "storefront/internal/repository/customer"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	reviewrepo "storefront/internal/repository/review"
	tokenrepo "storefront/internal/repository/token"
	anonymoussvc "storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireGuestSecret()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg config.Config, log *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer dbpool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics := metrics.NewStoreMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	bus := events.NewBus(events.WithDropHook(func(events.Event) { storeMetrics.EventDropped() }))

	var (
		guestStore  guestcart.Store = guestcart.NewMemoryStore()
		recentStore recent.Store    = recent.NewMemoryStore(cfg.RecentLimit)
		rdb         *redis.Client
	)
	if cfg.RedisEnabled() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		guestStore = guestcart.NewRedisStore(rdb, cfg.GuestCartTTL)
		recentStore = recent.NewRedisStore(rdb, cfg.RecentLimit, cfg.RecentTTL)
		log.Info().Msg("redis enabled for guest carts, recently viewed and events")
	}

	tokens := tokenrepo.NewPostgres(dbpool)
	customers := customersvc.New(customerrepo.NewPostgres(dbpool, log), tokens, cfg.AccessTokenTTL)
	catalog := catalogsvc.New(catalogsvc.Deps{
		Products:   productrepo.NewPostgres(dbpool, log),
		Categories: categoryrepo.NewPostgres(dbpool),
		Reviews:    reviewrepo.NewPostgres(dbpool),
		Identity:   customers,
		Recent:     recentStore,
		ImageHost:  cfg.FileURLHost,
		Logger:     log,
	})
	carts := cartsvc.New(cartrepo.NewPostgres(dbpool, log), catalog, customers, bus, storeMetrics, log)
	orders := ordersvc.New(ordersvc.Deps{
		Orders:    orderrepo.NewPostgres(dbpool, log),
		Addresses: addressrepo.NewPostgres(dbpool),
		Cart:      carts,
		Catalog:   catalog,
		Identity:  customers,
		Events:    bus,
		Metrics:   storeMetrics,
		Logger:    log,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, log, dbpool, httpserver.Deps{
		CartSvc:     carts,
		GuestCart:   cartsvc.NewGuest(guestStore, catalog),
		GuestSvc:    anonymoussvc.New(cfg.GuestTokenSecret, cfg.GuestTokenTTL),
		OrderSvc:    orders,
		CustomerSvc: customers,
		CatalogSvc:  catalog,
		Events:      bus,
	}, httpserver.Options{
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     httpMetrics,
		Gatherer:    registry,
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info().Msg("server stopped")
		return nil
	})
	if rdb != nil {
		instance := uuid.NewString()
		all, cancel := bus.SubscribeAll()
		defer cancel()
		forwarder := events.NewRedisForwarder(rdb, cfg.EventsChannel, instance, log)
		relay := events.NewRedisRelay(rdb, cfg.EventsChannel, instance, bus, log)
		g.Go(func() error {
			forwarder.Run(gctx, all)
			return nil
		})
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}
	g.Go(func() error {
		sweepTokens(gctx, tokens, cfg.TokenSweepEvery, log)
		return nil
	})

	return g.Wait()
}

type expiredTokenSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// sweepTokens removes expired access tokens until ctx is done.
func sweepTokens(ctx context.Context, tokens expiredTokenSweeper, every time.Duration, log *zerolog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, now)
			if err != nil {
				log.Warn().Err(err).Msg("token sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("expired tokens removed")
			}
		}
	}
}
