package transit

import "fmt"

// ArrivalPrediction is one upcoming vehicle for a route at a station.
// A missing prediction is represented by a nil pointer, never by zero values.
type ArrivalPrediction struct {
	RouteID           string `json:"routeid"`
	RouteNumber       string `json:"routeno"`
	EtaSeconds        int    `json:"arrtime"`
	StopsRemaining    int    `json:"arrprevstationcnt"`
	IsLowFloorVehicle bool   `json:"lowfloor"`
}

// Summary renders the prediction the way the arrival board shows it.
func (a *ArrivalPrediction) Summary() string {
	if a == nil {
		return "no arrival info"
	}

	switch {
	case a.EtaSeconds > 0:
		return fmt.Sprintf("%d min", a.EtaSeconds/60)
	case a.StopsRemaining > 0:
		return fmt.Sprintf("%d stops away", a.StopsRemaining)
	default:
		return "arriving soon"
	}
}

// Update returns the fields the refresher stores on a saved route.
func (a *ArrivalPrediction) Update() ArrivalUpdate {
	return ArrivalUpdate{
		EtaSeconds:     a.EtaSeconds,
		StopsRemaining: a.StopsRemaining,
	}
}

// FormatETA formats seconds as "Mm Ss".
func FormatETA(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
