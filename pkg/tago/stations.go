package tago

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ontime-app/ontime/pkg/transit"
)

type stationItem struct {
	CityCode flexString `json:"citycode"`
	NodeID   flexString `json:"nodeid"`
	NodeName string     `json:"nodenm"`
	NodeNo   flexString `json:"nodeno"`
}

// SearchStations finds stations in a city whose name contains nameQuery.
func (c *Client) SearchStations(ctx context.Context, cityCode string, nameQuery string) ([]transit.Station, error) {
	const op = "stations"

	params := url.Values{}
	params.Set("cityCode", cityCode)
	params.Set("nodeNm", nameQuery)
	params.Set("numOfRows", strconv.Itoa(c.stationPageSize))

	body, err := c.get(ctx, op, pathStationSearch, params)
	if err != nil {
		return nil, err
	}

	items, _, err := decodeEnvelope[stationItem](op, body)
	if err != nil {
		return nil, err
	}

	stations := make([]transit.Station, 0, len(items))
	for _, item := range items {
		station := transit.Station{
			ID:       item.NodeID.String(),
			Name:     item.NodeName,
			Number:   item.NodeNo.String(),
			CityCode: item.CityCode.String(),
		}
		if station.CityCode == "" {
			station.CityCode = cityCode
		}

		stations = append(stations, station)
	}

	return stations, nil
}
