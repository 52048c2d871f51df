// Package savedroutes persists the routes pinned to the home screen. The
// whole set lives as one JSON array under a single storage key and every
// mutation is a read-modify-write of that array.
package savedroutes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ontime-app/ontime/pkg/kvstore"
	"github.com/ontime-app/ontime/pkg/transit"
	"github.com/ontime-app/ontime/pkg/util"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

const StorageKey = "savedBuses"

type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid saved route: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type Store struct {
	storage  kvstore.Store
	validate *validator.Validate

	// guards the read-modify-write of the persisted set
	mu sync.Mutex

	onChange func([]transit.SavedRoute)
}

func New(storage kvstore.Store) *Store {
	return &Store{
		storage:  storage,
		validate: validator.New(),
	}
}

// OnChange registers a callback invoked with the new set after every write.
func (s *Store) OnChange(callback func([]transit.SavedRoute)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onChange = callback
}

func (s *Store) load(ctx context.Context) ([]transit.SavedRoute, error) {
	value, found, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("unable to read saved routes: %w", err)
	}
	if !found || strings.TrimSpace(value) == "" {
		return []transit.SavedRoute{}, nil
	}

	var routes []transit.SavedRoute
	if err := json.Unmarshal([]byte(value), &routes); err != nil {
		return nil, fmt.Errorf("unable to decode saved routes: %w", err)
	}
	if routes == nil {
		routes = []transit.SavedRoute{}
	}

	return routes, nil
}

func (s *Store) persist(ctx context.Context, routes []transit.SavedRoute) error {
	encoded, err := json.Marshal(routes)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, StorageKey, string(encoded)); err != nil {
		return fmt.Errorf("unable to write saved routes: %w", err)
	}

	if s.onChange != nil {
		s.onChange(slices.Clone(routes))
	}

	return nil
}

func normalize(route transit.SavedRoute) transit.SavedRoute {
	route.RouteID = strings.TrimSpace(route.RouteID)
	route.CityCode = strings.TrimSpace(route.CityCode)
	route.NodeID = strings.TrimSpace(route.NodeID)
	return route
}

func (s *Store) validateRoute(route transit.SavedRoute) error {
	err := s.validate.Struct(route)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	validationError := &ValidationError{Err: err}
	for _, fieldError := range fieldErrors {
		validationError.Fields = append(validationError.Fields, fieldError.Field())
	}

	return validationError
}

func indexOf(routes []transit.SavedRoute, routeID string) int {
	return slices.IndexFunc(routes, func(route transit.SavedRoute) bool {
		return route.RouteID == routeID
	})
}

// Add appends candidate unless a route with the same id is already saved, in
// which case the existing entry is kept untouched and inserted is false.
func (s *Store) Add(ctx context.Context, candidate transit.SavedRoute) (inserted bool, err error) {
	candidate = normalize(candidate)
	if err := s.validateRoute(candidate); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	routes, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	if indexOf(routes, candidate.RouteID) >= 0 {
		log.Debug().Str("routeid", candidate.RouteID).Msg("Route already saved")
		return false, nil
	}

	routes = append(routes, candidate)
	if err := s.persist(ctx, routes); err != nil {
		return false, err
	}

	log.Info().
		Str("routeid", candidate.RouteID).
		Str("routeno", candidate.RouteNumber).
		Str("station", candidate.StationName).
		Msg("Saved route")

	return true, nil
}

// Remove drops the route, removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, routeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	routes, err := s.load(ctx)
	if err != nil {
		return err
	}

	removed := util.InPlaceFilter(&routes, func(route transit.SavedRoute) bool {
		return route.RouteID != routeID
	})
	if removed == 0 {
		return nil
	}

	if err := s.persist(ctx, routes); err != nil {
		return err
	}

	log.Info().Str("routeid", routeID).Msg("Removed saved route")

	return nil
}

func (s *Store) List(ctx context.Context) ([]transit.SavedRoute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Update merges the arrival snapshot into one saved route. It reports false
// when the route is not saved.
func (s *Store) Update(ctx context.Context, routeID string, update transit.ArrivalUpdate) (bool, error) {
	applied, err := s.ApplyArrivals(ctx, map[string]transit.ArrivalUpdate{routeID: update})
	return applied == 1, err
}

// ApplyArrivals merges a batch of arrival snapshots by route id against the
// currently persisted set. Ids that are no longer saved are ignored so a
// route deleted while a refresh was in flight stays deleted.
func (s *Store) ApplyArrivals(ctx context.Context, updates map[string]transit.ArrivalUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	routes, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range routes {
		update, ok := updates[routes[i].RouteID]
		if !ok {
			continue
		}
		routes[i].Apply(update)
		applied++
	}

	if applied == 0 {
		return 0, nil
	}

	if err := s.persist(ctx, routes); err != nil {
		return 0, err
	}

	return applied, nil
}

// Clear removes every saved route.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("unable to clear saved routes: %w", err)
	}

	if s.onChange != nil {
		s.onChange([]transit.SavedRoute{})
	}

	log.Info().Msg("Cleared saved routes")

	return nil
}
