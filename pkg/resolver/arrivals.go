package resolver

import (
	"context"
	"strings"

	"github.com/ontime-app/ontime/pkg/tago"
	"github.com/ontime-app/ontime/pkg/transit"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// RouteArrivals is one row of the station arrival board.
type RouteArrivals struct {
	Route       transit.Route               `json:"route"`
	Predictions []transit.ArrivalPrediction `json:"predictions"`

	NoData              bool `json:"noData"`
	ArrivalsUnavailable bool `json:"arrivalsUnavailable"`
}

// Candidate builds the saved route for this row from its first prediction.
func (r RouteArrivals) Candidate(stationName string, cityCode string, stationID string) transit.SavedRoute {
	if strings.TrimSpace(stationName) == "" {
		stationName = "정류장"
	}

	candidate := transit.SavedRoute{
		RouteID:     r.Route.ID,
		RouteNumber: r.Route.Number,
		StationName: stationName,
		CityCode:    cityCode,
		NodeID:      stationID,
	}
	if len(r.Predictions) > 0 {
		candidate.Apply(r.Predictions[0].Update())
	}

	return candidate
}

// BrowseArrivals lists every route through a station with its next arrivals.
// A route whose arrivals cannot be loaded is kept and flagged.
func (r *Resolver) BrowseArrivals(ctx context.Context, cityCode string, stationID string) ([]RouteArrivals, error) {
	if strings.TrimSpace(cityCode) == "" {
		return nil, ErrNoCity
	}

	routes, err := r.Routes(ctx, cityCode, stationID)
	if err != nil {
		return nil, err
	}

	board := make([]RouteArrivals, len(routes))
	if len(routes) == 0 {
		return board, nil
	}

	p := pool.New().WithMaxGoroutines(r.options.Concurrency)
	for i, route := range routes {
		i, route := i, route
		p.Go(func() {
			row := RouteArrivals{Route: route}

			arrivals, err := r.gateway.GetArrivals(ctx, cityCode, stationID, route.ID)
			if err != nil {
				row.ArrivalsUnavailable = true
				log.Warn().
					Err(err).
					Str("citycode", cityCode).
					Str("nodeid", stationID).
					Str("routeid", route.ID).
					Msg("Failed to load route arrivals")
			} else {
				row.Predictions = arrivals.ForRoute(route.ID, r.options.ArrivalsPerRoute)
				row.NoData = len(row.Predictions) == 0
			}

			board[i] = row
		})
	}
	p.Wait()

	return board, nil
}

// StationArrivals returns every prediction at a station regardless of route.
func (r *Resolver) StationArrivals(ctx context.Context, cityCode string, stationID string) (tago.Arrivals, error) {
	if strings.TrimSpace(cityCode) == "" {
		return tago.Arrivals{}, ErrNoCity
	}
	return r.gateway.GetStationArrivals(ctx, cityCode, stationID)
}
