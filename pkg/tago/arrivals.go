package tago

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/ontime-app/ontime/pkg/transit"
)

type arrivalItem struct {
	RouteID           flexString `json:"routeid"`
	RouteNo           flexString `json:"routeno"`
	ArrTime           flexInt    `json:"arrtime"`
	ArrPrevStationCnt flexInt    `json:"arrprevstationcnt"`
	VehicleType       flexString `json:"vehicletp"`
}

func (a arrivalItem) prediction() transit.ArrivalPrediction {
	vehicleType := a.VehicleType.String()

	return transit.ArrivalPrediction{
		RouteID:           a.RouteID.String(),
		RouteNumber:       a.RouteNo.String(),
		EtaSeconds:        int(a.ArrTime),
		StopsRemaining:    int(a.ArrPrevStationCnt),
		IsLowFloorVehicle: vehicleType == "1" || strings.Contains(vehicleType, "저상"),
	}
}

// Arrivals is the result of an arrival lookup. NoData is set when the
// upstream reported that nothing is currently predicted, which is distinct
// from a failed request.
type Arrivals struct {
	Items  []transit.ArrivalPrediction
	NoData bool
}

// For returns the first prediction for routeID, or nil when there is none.
// The endpoint can return predictions for several routes at once.
func (a Arrivals) For(routeID string) *transit.ArrivalPrediction {
	for i := range a.Items {
		if a.Items[i].RouteID == routeID {
			prediction := a.Items[i]
			return &prediction
		}
	}
	return nil
}

// ForRoute returns up to limit predictions for routeID in upstream order.
func (a Arrivals) ForRoute(routeID string, limit int) []transit.ArrivalPrediction {
	var predictions []transit.ArrivalPrediction
	for _, item := range a.Items {
		if item.RouteID != routeID {
			continue
		}
		predictions = append(predictions, item)
		if limit > 0 && len(predictions) == limit {
			break
		}
	}
	return predictions
}

// GetArrivals returns the predictions for one route at a station.
func (c *Client) GetArrivals(ctx context.Context, cityCode string, stationID string, routeID string) (Arrivals, error) {
	params := url.Values{}
	params.Set("routeId", routeID)

	return c.arrivals(ctx, "arrivals", cityCode, stationID, params)
}

// GetStationArrivals returns the predictions for every route at a station.
func (c *Client) GetStationArrivals(ctx context.Context, cityCode string, stationID string) (Arrivals, error) {
	return c.arrivals(ctx, "station_arrivals", cityCode, stationID, url.Values{})
}

func (c *Client) arrivals(ctx context.Context, op string, cityCode string, stationID string, params url.Values) (Arrivals, error) {
	params.Set("cityCode", cityCode)
	params.Set("nodeId", stationID)
	params.Set("numOfRows", strconv.Itoa(c.arrivalPageSize))

	body, err := c.get(ctx, op, pathArrivals, params)
	if err != nil {
		return Arrivals{}, err
	}

	items, noData, err := decodeEnvelope[arrivalItem](op, body)
	if err != nil {
		return Arrivals{}, err
	}

	arrivals := Arrivals{NoData: noData}
	for _, item := range items {
		arrivals.Items = append(arrivals.Items, item.prediction())
	}

	return arrivals, nil
}
