package transit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterCities(t *testing.T) {
	cities := []CityCode{
		{Code: "25", Name: "대전광역시"},
		{Code: "22", Name: "대구광역시"},
		{Code: "39", Name: "Jeju"},
	}

	assert.Len(t, FilterCities(cities, ""), 3)
	assert.Len(t, FilterCities(cities, "   "), 3)
	assert.Equal(t, []CityCode{{Code: "25", Name: "대전광역시"}}, FilterCities(cities, "대전"))
	assert.Equal(t, []CityCode{{Code: "39", Name: "Jeju"}}, FilterCities(cities, "jEJ"))
	assert.Empty(t, FilterCities(cities, "Seoul"))
}

func TestRouteTypeFromCode(t *testing.T) {
	assert.Equal(t, RouteTypeTrunk, RouteTypeFromCode("1"))
	assert.Equal(t, RouteTypeBranch, RouteTypeFromCode("2"))
	assert.Equal(t, RouteTypeCircular, RouteTypeFromCode("3"))
	assert.Equal(t, RouteTypeOther, RouteTypeFromCode("7"))
	assert.Equal(t, RouteTypeOther, RouteTypeFromCode(""))

	assert.Equal(t, RouteTypeTrunk, RouteTypeFromCode("간선버스"))
	assert.Equal(t, RouteTypeBranch, RouteTypeFromCode("지선버스"))
	assert.Equal(t, RouteTypeCircular, RouteTypeFromCode("순환버스"))
	assert.Equal(t, RouteTypeOther, RouteTypeFromCode("일반버스"))
}

func TestArrivalPredictionSummary(t *testing.T) {
	var absent *ArrivalPrediction
	assert.Equal(t, "no arrival info", absent.Summary())

	assert.Equal(t, "3 min", (&ArrivalPrediction{EtaSeconds: 200, StopsRemaining: 4}).Summary())
	assert.Equal(t, "2 stops away", (&ArrivalPrediction{StopsRemaining: 2}).Summary())
	assert.Equal(t, "arriving soon", (&ArrivalPrediction{}).Summary())
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "0m 0s", FormatETA(0))
	assert.Equal(t, "2m 5s", FormatETA(125))
	assert.Equal(t, "0m 0s", FormatETA(-4))
}

func TestSavedRouteStorageFormat(t *testing.T) {
	stored := `[{"routeid":"DJB30300004","routeno":"102","stationName":"대전역","predictTime":240,"remainingStops":3,"citycode":"25","nodeid":"DJB8001793"}]`

	var routes []SavedRoute
	require.NoError(t, json.Unmarshal([]byte(stored), &routes))
	require.Len(t, routes, 1)

	assert.Equal(t, SavedRoute{
		RouteID:                 "DJB30300004",
		RouteNumber:             "102",
		StationName:             "대전역",
		CityCode:                "25",
		NodeID:                  "DJB8001793",
		LastPredictedEtaSeconds: 240,
		LastStopsRemaining:      3,
	}, routes[0])

	routes[0].Apply(ArrivalUpdate{EtaSeconds: 60, StopsRemaining: 1})
	assert.Equal(t, 60, routes[0].LastPredictedEtaSeconds)
	assert.Equal(t, 1, routes[0].LastStopsRemaining)
}
