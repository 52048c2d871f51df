package tago

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ontime-app/ontime/pkg/transit"
)

type routeItem struct {
	RouteID     flexString `json:"routeid"`
	RouteNo     flexString `json:"routeno"`
	RouteType   flexString `json:"routetp"`
	StartNodeNm string     `json:"startnodenm"`
	EndNodeNm   string     `json:"endnodenm"`
}

// ListThroughRoutes returns the routes passing through a station.
func (c *Client) ListThroughRoutes(ctx context.Context, cityCode string, stationID string) ([]transit.Route, error) {
	const op = "routes"

	params := url.Values{}
	params.Set("cityCode", cityCode)
	params.Set("nodeid", stationID)
	params.Set("numOfRows", strconv.Itoa(c.routePageSize))

	body, err := c.get(ctx, op, pathThroughRoutes, params)
	if err != nil {
		return nil, err
	}

	items, _, err := decodeEnvelope[routeItem](op, body)
	if err != nil {
		return nil, err
	}

	routes := make([]transit.Route, 0, len(items))
	for _, item := range items {
		routes = append(routes, transit.Route{
			ID:              item.RouteID.String(),
			Number:          item.RouteNo.String(),
			Type:            transit.RouteTypeFromCode(item.RouteType.String()),
			OriginName:      item.StartNodeNm,
			DestinationName: item.EndNodeNm,
		})
	}

	return routes, nil
}
