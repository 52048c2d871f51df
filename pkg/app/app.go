// Package app wires the configured components into one Application shared
// by the HTTP API and the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ontime-app/ontime/pkg/cachedresults"
	"github.com/ontime-app/ontime/pkg/config"
	"github.com/ontime-app/ontime/pkg/kvstore"
	"github.com/ontime-app/ontime/pkg/metrics"
	"github.com/ontime-app/ontime/pkg/redis_client"
	"github.com/ontime-app/ontime/pkg/refresher"
	"github.com/ontime-app/ontime/pkg/resolver"
	"github.com/ontime-app/ontime/pkg/savedroutes"
	"github.com/ontime-app/ontime/pkg/tago"
	"github.com/ontime-app/ontime/pkg/transit"
	"github.com/rs/zerolog/log"
)

type Application struct {
	Config  *config.Config
	Metrics *metrics.Metrics

	Gateway     *tago.Client
	Cache       *cachedresults.Cache
	Storage     kvstore.Store
	Resolver    *resolver.Resolver
	SavedRoutes *savedroutes.Store
	Refresher   *refresher.Refresher

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	application := &Application{
		Config:  cfg,
		Metrics: metrics.New(),
	}

	application.Gateway = tago.NewClient(tago.Config{
		BaseURL:           cfg.TAGO.BaseURL,
		ServiceKey:        cfg.TAGO.ServiceKey,
		Timeout:           cfg.TAGO.Timeout,
		RequestsPerSecond: cfg.TAGO.RequestsPerSecond,
		Burst:             cfg.TAGO.Burst,
		StationPageSize:   cfg.TAGO.StationPageSize,
		RoutePageSize:     cfg.TAGO.RoutePageSize,
		ArrivalPageSize:   cfg.TAGO.ArrivalPageSize,
		Metrics:           application.Metrics,
	})

	cache, err := application.openCache(ctx)
	if err != nil {
		return nil, err
	}
	application.Cache = cache

	storage, err := kvstore.Open(ctx, kvstore.Options{
		Backend:         kvstore.Backend(cfg.Storage.Backend),
		SQLitePath:      cfg.Storage.Path,
		RedisAddress:    cfg.Redis.Address,
		RedisPassword:   cfg.Redis.Password,
		RedisDatabase:   cfg.Redis.Database,
		RedisPrefix:     cfg.Redis.Prefix,
		MongoConnection: cfg.MongoDB.Connection,
		MongoDatabase:   cfg.MongoDB.Database,
	})
	if err != nil {
		_ = application.Close()
		return nil, fmt.Errorf("unable to open %s storage: %w", cfg.Storage.Backend, err)
	}
	application.Storage = storage
	application.closers = append(application.closers, storage.Close)

	application.assemble()

	log.Info().
		Str("storage", cfg.Storage.Backend).
		Str("cache", cfg.Cache.Backend).
		Msg("Application ready")

	return application, nil
}

// NewWithComponents builds an Application around an existing gateway and
// storage, skipping every external connection.
func NewWithComponents(cfg *config.Config, gateway *tago.Client, storage kvstore.Store, m *metrics.Metrics) *Application {
	application := &Application{
		Config:  cfg,
		Metrics: m,
		Gateway: gateway,
		Cache:   cachedresults.NewMemory(m),
		Storage: storage,
	}
	application.assemble()

	return application
}

func (a *Application) assemble() {
	a.Resolver = resolver.New(a.Gateway, a.Cache, resolver.Options{
		DebounceDelay:    a.Config.Search.DebounceDelay,
		MinQueryLength:   a.Config.Search.MinQueryLength,
		Concurrency:      a.Config.Search.Concurrency,
		ArrivalsPerRoute: a.Config.Search.ArrivalsPerRoute,
	})

	a.SavedRoutes = savedroutes.New(a.Storage)
	a.SavedRoutes.OnChange(func(routes []transit.SavedRoute) {
		a.Metrics.SetSavedRoutes(len(routes))
		log.Debug().Int("routes", len(routes)).Msg("Saved routes changed")
	})

	a.Refresher = refresher.New(a.Gateway, a.SavedRoutes, refresher.Options{
		Interval:     a.Config.Refresh.Interval,
		RouteTimeout: a.Config.Refresh.RouteTimeout,
		Concurrency:  a.Config.Refresh.Concurrency,
		MaxRetries:   a.Config.Refresh.MaxRetries,
		RetryBackoff: a.Config.Refresh.RetryBackoff,
	}, a.Metrics)
}

func (a *Application) openCache(ctx context.Context) (*cachedresults.Cache, error) {
	if a.Config.Cache.Backend != "redis" {
		return cachedresults.NewMemory(a.Metrics), nil
	}

	client, err := redis_client.Connect(ctx, redis_client.Options{
		Address:  a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		Database: a.Config.Redis.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to connect redis cache: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	return cachedresults.NewRedis(client, a.Config.Cache.SessionLength, a.Metrics), nil
}

// Close stops the refresher and releases every connection.
func (a *Application) Close() error {
	if a.Refresher != nil {
		a.Refresher.Stop()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
