// Package resolver walks the city, station and route lookups a user goes
// through before pinning a route. Lookups are memoized for the session.
package resolver

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/ontime-app/ontime/pkg/cachedresults"
	"github.com/ontime-app/ontime/pkg/tago"
	"github.com/ontime-app/ontime/pkg/transit"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

var (
	// ErrSuperseded is returned by a search that a newer search replaced
	ErrSuperseded = errors.New("search superseded by a newer query")
	ErrNoCity     = errors.New("no city selected")
)

// Gateway is the subset of the transit API the resolver needs.
type Gateway interface {
	ListCities(ctx context.Context) ([]transit.CityCode, error)
	SearchStations(ctx context.Context, cityCode string, nameQuery string) ([]transit.Station, error)
	ListThroughRoutes(ctx context.Context, cityCode string, stationID string) ([]transit.Route, error)
	GetArrivals(ctx context.Context, cityCode string, stationID string, routeID string) (tago.Arrivals, error)
	GetStationArrivals(ctx context.Context, cityCode string, stationID string) (tago.Arrivals, error)
}

type Options struct {
	DebounceDelay  time.Duration
	MinQueryLength int

	// Concurrency bounds the route lookups running for one search
	Concurrency int

	// ArrivalsPerRoute is how many predictions arrival browsing keeps
	ArrivalsPerRoute int
}

func (o Options) withDefaults() Options {
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = 300 * time.Millisecond
	}
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = 2
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.ArrivalsPerRoute <= 0 {
		o.ArrivalsPerRoute = 2
	}
	return o
}

type Resolver struct {
	gateway Gateway
	cache   *cachedresults.Cache
	options Options
}

func New(gateway Gateway, cache *cachedresults.Cache, options Options) *Resolver {
	return &Resolver{
		gateway: gateway,
		cache:   cache,
		options: options.withDefaults(),
	}
}

type StationResult struct {
	Station transit.Station `json:"station"`
	Routes  []transit.Route `json:"routes"`

	RoutesLoading     bool `json:"routesLoading"`
	RoutesUnavailable bool `json:"routesUnavailable"`
}

func (r *Resolver) Cities(ctx context.Context) ([]transit.CityCode, error) {
	return cachedresults.Memoize(ctx, r.cache, cachedresults.Key("cities", nil), r.gateway.ListCities)
}

// FilterCities returns the cities whose name contains text.
func (r *Resolver) FilterCities(ctx context.Context, text string) ([]transit.CityCode, error) {
	cities, err := r.Cities(ctx)
	if err != nil {
		return nil, err
	}
	return transit.FilterCities(cities, text), nil
}

func (r *Resolver) stations(ctx context.Context, cityCode string, query string) ([]transit.Station, error) {
	key := cachedresults.Key("stations", url.Values{"citycode": {cityCode}, "nodeNm": {query}})

	return cachedresults.Memoize(ctx, r.cache, key, func(ctx context.Context) ([]transit.Station, error) {
		return r.gateway.SearchStations(ctx, cityCode, query)
	})
}

// Routes returns the routes passing through a station.
func (r *Resolver) Routes(ctx context.Context, cityCode string, stationID string) ([]transit.Route, error) {
	key := cachedresults.Key("routes", url.Values{"citycode": {cityCode}, "nodeid": {stationID}})

	return cachedresults.Memoize(ctx, r.cache, key, func(ctx context.Context) ([]transit.Route, error) {
		return r.gateway.ListThroughRoutes(ctx, cityCode, stationID)
	})
}

// Search runs a one-off station search with route enrichment.
func (r *Resolver) Search(ctx context.Context, cityCode string, query string) ([]StationResult, error) {
	if strings.TrimSpace(cityCode) == "" {
		return nil, ErrNoCity
	}

	stations, err := r.stations(ctx, cityCode, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}

	return r.enrich(ctx, cityCode, stations), nil
}

func pendingResults(stations []transit.Station) []StationResult {
	results := make([]StationResult, len(stations))
	for i, station := range stations {
		results[i] = StationResult{Station: station, RoutesLoading: true}
	}
	return results
}

type stationRoutes struct {
	index  int
	routes []transit.Route
	err    error
}

// enrich fetches the through routes for every station concurrently. A
// station whose lookup fails is kept and marked unavailable.
func (r *Resolver) enrich(ctx context.Context, cityCode string, stations []transit.Station) []StationResult {
	results := pendingResults(stations)
	if len(stations) == 0 {
		return results
	}

	p := pool.NewWithResults[stationRoutes]().WithMaxGoroutines(r.options.Concurrency)
	for i, station := range stations {
		i, station := i, station
		p.Go(func() stationRoutes {
			routes, err := r.Routes(ctx, cityCode, station.ID)
			return stationRoutes{index: i, routes: routes, err: err}
		})
	}

	for _, result := range p.Wait() {
		station := &results[result.index]
		station.RoutesLoading = false

		if result.err != nil {
			station.RoutesUnavailable = true
			log.Warn().
				Err(result.err).
				Str("citycode", cityCode).
				Str("nodeid", station.Station.ID).
				Msg("Failed to load station routes")
			continue
		}
		station.Routes = result.routes
	}

	return results
}
