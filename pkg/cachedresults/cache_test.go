package cachedresults

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ontime-app/ontime/pkg/metrics"
	"github.com/ontime-app/ontime/pkg/transit"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stationsProducer(calls *int, stations []transit.Station, err error) func(context.Context) ([]transit.Station, error) {
	return func(context.Context) ([]transit.Station, error) {
		*calls++
		return stations, err
	}
}

func testMemoize(t *testing.T, c *Cache) {
	ctx := context.Background()
	key := Key("stations", url.Values{"citycode": {"25"}, "nodeNm": {"시청"}})
	expected := []transit.Station{{ID: "DJB8001793", Name: "시청", CityCode: "25"}}

	calls := 0
	value, err := Memoize(ctx, c, key, stationsProducer(&calls, expected, nil))
	require.NoError(t, err)
	assert.Equal(t, expected, value)

	value, err = Memoize(ctx, c, key, stationsProducer(&calls, nil, errors.New("not called")))
	require.NoError(t, err)
	assert.Equal(t, expected, value)
	assert.Equal(t, 1, calls)

	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestMemoizeMemory(t *testing.T) {
	testMemoize(t, NewMemory(nil))
}

func TestMemoizeRedis(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	c := NewRedis(client, 0, nil)
	testMemoize(t, c)

	keys := server.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "ontime:cache:"))
	assert.Positive(t, server.TTL(keys[0]))
}

func TestRedisSessionsAreIsolated(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	ctx := context.Background()

	first := NewRedis(client, 0, nil)
	second := NewRedis(client, 0, nil)

	calls := 0
	_, err := Memoize(ctx, first, "cities", stationsProducer(&calls, []transit.Station{}, nil))
	require.NoError(t, err)
	_, err = Memoize(ctx, second, "cities", stationsProducer(&calls, []transit.Station{}, nil))
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestMemoizeDoesNotCacheFailures(t *testing.T) {
	c := NewMemory(nil)
	ctx := context.Background()
	failure := errors.New("upstream down")

	calls := 0
	_, err := Memoize(ctx, c, "routes", stationsProducer(&calls, nil, failure))
	assert.ErrorIs(t, err, failure)

	expected := []transit.Station{{ID: "N1"}}
	value, err := Memoize(ctx, c, "routes", stationsProducer(&calls, expected, nil))
	require.NoError(t, err)
	assert.Equal(t, expected, value)
	assert.Equal(t, 2, calls)
}

func TestMemoizeEmptyResultIsCached(t *testing.T) {
	c := NewMemory(nil)
	ctx := context.Background()

	calls := 0
	for i := 0; i < 3; i++ {
		value, err := Memoize(ctx, c, "empty", stationsProducer(&calls, []transit.Station{}, nil))
		require.NoError(t, err)
		assert.Empty(t, value)
	}
	assert.Equal(t, 1, calls)
}

func TestMemoizeNilCache(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Memoize(context.Background(), nil, "k", stationsProducer(&calls, nil, nil))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestKey(t *testing.T) {
	a := Key("stations", url.Values{"nodeNm": {"a&citycode=1"}, "citycode": {"25"}})
	b := Key("stations", url.Values{"citycode": {"25"}, "nodeNm": {"a&citycode=1"}})
	c := Key("stations", url.Values{"citycode": {"25"}, "nodeNm": {"a"}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "cities", Key("cities", nil))
	assert.NotEqual(t, Key("routes", url.Values{"citycode": {"25"}}), Key("stations", url.Values{"citycode": {"25"}}))
}

func TestMemoizeRecordsMetrics(t *testing.T) {
	m := metrics.New()
	c := NewMemory(m)
	calls := 0

	for i := 0; i < 3; i++ {
		_, err := Memoize(context.Background(), c, "cities", stationsProducer(&calls, []transit.Station{}, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")))
}
