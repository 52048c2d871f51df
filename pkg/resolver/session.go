package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ontime-app/ontime/pkg/util"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// SearchState is a snapshot of a session's search box.
type SearchState struct {
	Query      string          `json:"query"`
	Typing     bool            `json:"typing"`
	Loading    bool            `json:"loading"`
	Results    []StationResult `json:"results"`
	Err        error           `json:"-"`
	Generation uint64          `json:"generation"`
}

// Session owns one station search box for a city. Only the results of the
// latest search are ever applied.
type Session struct {
	resolver *Resolver
	cityCode string

	ctx  context.Context
	stop context.CancelFunc

	mu         sync.Mutex
	state      SearchState
	inputSeq   uint64
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	onUpdate   func(SearchState)
	closed     bool
}

func (r *Resolver) Session(cityCode string) *Session {
	ctx, stop := context.WithCancel(context.Background())

	return &Session{
		resolver: r,
		cityCode: cityCode,
		ctx:      ctx,
		stop:     stop,
	}
}

// OnUpdate registers the observer called with every published state. States
// from superseded generations may still arrive out of order, compare
// Generation to discard them.
func (s *Session) OnUpdate(callback func(SearchState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onUpdate = callback
}

func (s *Session) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// snapshot must be called with mu held.
func (s *Session) snapshot() SearchState {
	state := s.state
	state.Results = slices.Clone(s.state.Results)
	return state
}

// publish must be called with mu held, it returns the delivery to run once
// the lock is released.
func (s *Session) publish() func() {
	callback := s.onUpdate
	if callback == nil {
		return func() {}
	}
	state := s.snapshot()
	return func() { callback(state) }
}

// Input records a keystroke. The search runs once the input has been stable
// for the debounce delay.
func (s *Session) Input(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.inputSeq++
	seq := s.inputSeq
	s.state.Query = text
	s.state.Typing = true

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.resolver.options.DebounceDelay, func() {
		s.settle(seq, text)
	})

	deliver := s.publish()
	s.mu.Unlock()
	deliver()
}

func (s *Session) settle(seq uint64, text string) {
	s.mu.Lock()
	if s.closed || seq != s.inputSeq {
		s.mu.Unlock()
		return
	}
	s.state.Typing = false

	query := strings.TrimSpace(text)
	if util.RuneLength(query) < s.resolver.options.MinQueryLength {
		// a short query clears the box and invalidates any search in flight
		s.supersede()
		s.state.Results = nil
		s.state.Loading = false
		s.state.Err = nil
		s.state.Generation = s.generation

		deliver := s.publish()
		s.mu.Unlock()
		deliver()
		return
	}
	s.mu.Unlock()

	if _, err := s.Search(s.ctx, query); err != nil && !errors.Is(err, ErrSuperseded) {
		log.Debug().Err(err).Str("query", query).Msg("Station search failed")
	}
}

// supersede must be called with mu held.
func (s *Session) supersede() uint64 {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return s.generation
}

func (s *Session) isLatest(generation uint64) bool {
	return !s.closed && generation == s.generation
}

// Search runs a station search immediately, canceling any search in flight.
func (s *Session) Search(ctx context.Context, text string) ([]StationResult, error) {
	if strings.TrimSpace(s.cityCode) == "" {
		return nil, ErrNoCity
	}
	query := strings.TrimSpace(text)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	generation := s.supersede()
	searchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Query = query
	s.state.Loading = true
	s.state.Err = nil
	s.state.Generation = generation
	deliver := s.publish()
	s.mu.Unlock()
	deliver()

	defer cancel()

	stations, err := s.resolver.stations(searchCtx, s.cityCode, query)

	s.mu.Lock()
	if !s.isLatest(generation) {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	if err != nil {
		s.state.Loading = false
		s.state.Results = nil
		s.state.Err = err
		deliver = s.publish()
		s.mu.Unlock()
		deliver()
		return nil, err
	}
	s.state.Results = pendingResults(stations)
	deliver = s.publish()
	s.mu.Unlock()
	deliver()

	results := s.resolver.enrich(searchCtx, s.cityCode, stations)

	s.mu.Lock()
	if !s.isLatest(generation) {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	s.state.Loading = false
	s.state.Results = results
	deliver = s.publish()
	s.mu.Unlock()
	deliver()

	return slices.Clone(results), nil
}

// Close stops the debounce timer and cancels any search in flight.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.stop()
}
