package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ontime-app/ontime/pkg/config"
	"github.com/ontime-app/ontime/pkg/kvstore"
	"github.com/ontime-app/ontime/pkg/metrics"
	"github.com/ontime-app/ontime/pkg/tago"
	"github.com/ontime-app/ontime/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.TAGO.ServiceKey = "key"
	cfg.TAGO.BaseURL = "http://127.0.0.1:1"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "ontime.db")
	return cfg
}

func TestNewWithSQLiteStorage(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(context.Background(), cfg)
	require.NoError(t, err)

	_, err = application.SavedRoutes.Add(context.Background(), transit.SavedRoute{RouteID: "R1", CityCode: "25", NodeID: "N1"})
	require.NoError(t, err)
	require.NoError(t, application.Close())

	reopened, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	routes, err := reopened.SavedRoutes.List(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "R1", routes[0].RouteID)
}

func TestNewWithRedisBackends(t *testing.T) {
	server := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Storage.Backend = "redis"
	cfg.Cache.Backend = "redis"
	cfg.Redis.Address = server.Addr()

	application, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = application.Close() }()

	assert.IsType(t, &kvstore.RedisStore{}, application.Storage)

	_, err = application.SavedRoutes.Add(context.Background(), transit.SavedRoute{RouteID: "R1", CityCode: "25", NodeID: "N1"})
	require.NoError(t, err)
	assert.True(t, server.Exists("ontime:storage:savedBuses"))
}

func TestNewFailsWithoutRedis(t *testing.T) {
	server := miniredis.RunT(t)
	address := server.Addr()
	server.Close()

	cfg := testConfig(t)
	cfg.Cache.Backend = "redis"
	cfg.Redis.Address = address

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSavedRoutesGaugeFollowsChanges(t *testing.T) {
	cfg := testConfig(t)
	m := metrics.New()
	gateway := tago.NewClient(tago.Config{BaseURL: cfg.TAGO.BaseURL, ServiceKey: "key", Metrics: m})

	application := NewWithComponents(cfg, gateway, kvstore.NewMemoryStore(), m)
	ctx := context.Background()

	_, err := application.SavedRoutes.Add(ctx, transit.SavedRoute{RouteID: "R1", CityCode: "25", NodeID: "N1"})
	require.NoError(t, err)
	_, err = application.SavedRoutes.Add(ctx, transit.SavedRoute{RouteID: "R2", CityCode: "25", NodeID: "N1"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SavedRoutes))

	require.NoError(t, application.SavedRoutes.Remove(ctx, "R1"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SavedRoutes))

	require.NoError(t, application.SavedRoutes.Clear(ctx))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SavedRoutes))
}
