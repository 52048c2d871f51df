package refresher

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ontime-app/ontime/pkg/tago"
	"github.com/ontime-app/ontime/pkg/transit"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

type CycleState string

const (
	CycleApplied        CycleState = "applied"
	CyclePartialFailure CycleState = "partial_failure"
)

type RouteOutcome string

const (
	OutcomeUpdated RouteOutcome = "updated"
	OutcomeNoData  RouteOutcome = "no_data"
	OutcomeFailed  RouteOutcome = "failed"
)

type Report struct {
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	State     CycleState    `json:"state"`

	Routes  int `json:"routes"`
	Updated int `json:"updated"`
	NoData  int `json:"noData"`
	Failed  int `json:"failed"`

	// Applied is how many saved routes the write changed
	Applied int `json:"applied"`

	Outcomes map[string]RouteOutcome `json:"outcomes"`
	Err      error                   `json:"-"`
}

type routeResult struct {
	routeID string
	outcome RouteOutcome
	update  transit.ArrivalUpdate
	err     error
}

// RunCycle refreshes every saved route once and writes all the fresh
// predictions back in a single merge. Routes without a prediction keep their
// previous values.
func (r *Refresher) RunCycle(ctx context.Context) Report {
	r.mu.Lock()
	r.active++
	r.mu.Unlock()

	report := r.runCycle(ctx)

	r.mu.Lock()
	r.active--
	r.lastReport = &report
	r.mu.Unlock()

	r.metrics.ObserveRefreshCycle(string(report.State), report.Routes, report.Duration)

	return report
}

func (r *Refresher) runCycle(ctx context.Context) Report {
	report := Report{
		StartedAt: time.Now(),
		State:     CycleApplied,
		Outcomes:  map[string]RouteOutcome{},
	}
	defer func() {
		report.Duration = time.Since(report.StartedAt)
	}()

	routes, err := r.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read saved routes for refresh")
		report.State = CyclePartialFailure
		report.Err = err
		return report
	}
	report.Routes = len(routes)
	if len(routes) == 0 {
		return report
	}

	p := pool.NewWithResults[routeResult]().WithMaxGoroutines(r.options.Concurrency)
	for _, route := range routes {
		route := route
		p.Go(func() routeResult {
			return r.refreshRoute(ctx, route)
		})
	}

	updates := map[string]transit.ArrivalUpdate{}
	for _, result := range p.Wait() {
		report.Outcomes[result.routeID] = result.outcome
		r.metrics.ObserveRefreshRoute(string(result.outcome))

		switch result.outcome {
		case OutcomeUpdated:
			report.Updated++
			updates[result.routeID] = result.update
		case OutcomeNoData:
			report.NoData++
		case OutcomeFailed:
			report.Failed++
			log.Warn().Err(result.err).Str("routeid", result.routeID).Msg("Failed to refresh saved route")
		}
	}

	if len(updates) > 0 {
		applied, err := r.store.ApplyArrivals(ctx, updates)
		if err != nil {
			log.Error().Err(err).Msg("Failed to write refreshed arrivals")
			report.Err = err
		}
		report.Applied = applied
	}

	if report.Failed > 0 || report.Err != nil {
		report.State = CyclePartialFailure
	}

	log.Info().
		Str("state", string(report.State)).
		Int("routes", report.Routes).
		Int("updated", report.Updated).
		Int("nodata", report.NoData).
		Int("failed", report.Failed).
		Int("applied", report.Applied).
		Msg("Refreshed saved routes")

	return report
}

func (r *Refresher) refreshRoute(ctx context.Context, route transit.SavedRoute) routeResult {
	result := routeResult{routeID: route.RouteID}

	arrivals, err := r.fetchWithRetry(ctx, route)
	if err != nil {
		result.outcome = OutcomeFailed
		result.err = err
		return result
	}

	prediction := arrivals.For(route.RouteID)
	if arrivals.NoData || prediction == nil {
		result.outcome = OutcomeNoData
		return result
	}

	result.outcome = OutcomeUpdated
	result.update = prediction.Update()
	return result
}

// fetchWithRetry retries network failures with exponential backoff. Upstream
// and parse errors fail straight away.
func (r *Refresher) fetchWithRetry(ctx context.Context, route transit.SavedRoute) (tago.Arrivals, error) {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = r.options.RetryBackoff
	exponential.MaxInterval = r.options.RetryMaxBackoff
	exponential.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(exponential, uint64(r.options.MaxRetries)), ctx)

	var arrivals tago.Arrivals
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, r.options.RouteTimeout)
		defer cancel()

		result, err := r.gateway.GetArrivals(attemptCtx, route.CityCode, route.NodeID, route.RouteID)
		if err != nil {
			if tago.IsKind(err, tago.KindNetwork) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		arrivals = result
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Debug().Err(err).Str("routeid", route.RouteID).Dur("wait", wait).Msg("Retrying arrival lookup")
	}

	err := backoff.RetryNotify(operation, policy, notify)
	return arrivals, err
}
