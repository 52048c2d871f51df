// Package refresher keeps the predicted arrivals of the saved routes fresh,
// on a fixed interval and whenever the dashboard asks for it.
package refresher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ontime-app/ontime/pkg/metrics"
	"github.com/ontime-app/ontime/pkg/tago"
	"github.com/ontime-app/ontime/pkg/transit"
	"github.com/rs/zerolog/log"
)

var ErrAlreadyStarted = errors.New("refresher already started")

type Gateway interface {
	GetArrivals(ctx context.Context, cityCode string, stationID string, routeID string) (tago.Arrivals, error)
}

type Store interface {
	List(ctx context.Context) ([]transit.SavedRoute, error)
	ApplyArrivals(ctx context.Context, updates map[string]transit.ArrivalUpdate) (int, error)
}

type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
)

type Options struct {
	Interval time.Duration

	// RouteTimeout bounds every single arrival lookup
	RouteTimeout time.Duration
	Concurrency  int

	// MaxRetries is how many times a lookup failing on the network is retried
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryMaxBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 30 * time.Second
	}
	if o.RouteTimeout <= 0 {
		o.RouteTimeout = 5 * time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 250 * time.Millisecond
	}
	if o.RetryMaxBackoff <= 0 {
		o.RetryMaxBackoff = 2 * time.Second
	}
	return o
}

type Refresher struct {
	gateway Gateway
	store   Store
	options Options
	metrics *metrics.Metrics

	trigger chan struct{}

	mu         sync.Mutex
	active     int
	lastReport *Report
	cancel     context.CancelFunc
	loopDone   chan struct{}
	cycles     sync.WaitGroup
}

func New(gateway Gateway, store Store, options Options, m *metrics.Metrics) *Refresher {
	return &Refresher{
		gateway: gateway,
		store:   store,
		options: options.withDefaults(),
		metrics: m,
		trigger: make(chan struct{}, 1),
	}
}

// Start runs a cycle straight away and then one per interval until Stop is
// called or ctx is done.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.loopDone = make(chan struct{})

	log.Info().Dur("interval", r.options.Interval).Msg("Starting arrival refresher")

	go r.loop(loopCtx, r.loopDone)

	return nil
}

// Stop cancels the loop and waits for every cycle it launched.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	loopDone := r.loopDone
	r.cancel = nil
	r.loopDone = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-loopDone
	r.cycles.Wait()

	log.Info().Msg("Stopped arrival refresher")
}

// Trigger requests a cycle now, on screen focus for example. Requests made
// while one is already pending are merged.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active > 0 {
		return StateFetching
	}
	return StateIdle
}

// LastReport returns the report of the last finished cycle, or nil.
func (r *Refresher) LastReport() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastReport == nil {
		return nil
	}
	report := *r.lastReport
	return &report
}

func (r *Refresher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.options.Interval)
	defer ticker.Stop()

	r.launch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.launch(ctx)
		case <-r.trigger:
			r.launch(ctx)
		}
	}
}

// launch runs the cycle in its own goroutine so a slow cycle never holds up
// the timer. Overlapping cycles are safe as updates merge by route id.
func (r *Refresher) launch(ctx context.Context) {
	r.cycles.Add(1)
	go func() {
		defer r.cycles.Done()
		r.RunCycle(ctx)
	}()
}
