package transit

// SavedRoute is a route pinned to the home screen. It is the only entity the
// core persists. The JSON keys match the device storage records written by the
// mobile client so existing sets load unchanged.
type SavedRoute struct {
	RouteID     string `json:"routeid" validate:"required"`
	RouteNumber string `json:"routeno"`
	StationName string `json:"stationName"`
	CityCode    string `json:"citycode" validate:"required"`
	NodeID      string `json:"nodeid" validate:"required"`

	LastPredictedEtaSeconds int `json:"predictTime" validate:"gte=0"`
	LastStopsRemaining      int `json:"remainingStops" validate:"gte=0"`
}

// ArrivalUpdate is the partial merged into a SavedRoute after a refresh.
type ArrivalUpdate struct {
	EtaSeconds     int `json:"predictTime"`
	StopsRemaining int `json:"remainingStops"`
}

// Apply merges the update into the saved route.
func (s *SavedRoute) Apply(update ArrivalUpdate) {
	s.LastPredictedEtaSeconds = update.EtaSeconds
	s.LastStopsRemaining = update.StopsRemaining
}
