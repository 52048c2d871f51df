package tago

import (
	"context"
	"net/url"

	"github.com/ontime-app/ontime/pkg/transit"
)

type cityItem struct {
	CityCode flexString `json:"citycode"`
	CityName string     `json:"cityname"`
}

// ListCities returns every city the arrival service covers.
func (c *Client) ListCities(ctx context.Context) ([]transit.CityCode, error) {
	const op = "cities"

	body, err := c.get(ctx, op, pathCityList, url.Values{})
	if err != nil {
		return nil, err
	}

	items, _, err := decodeEnvelope[cityItem](op, body)
	if err != nil {
		return nil, err
	}

	cities := make([]transit.CityCode, 0, len(items))
	for _, item := range items {
		cities = append(cities, transit.CityCode{
			Code: item.CityCode.String(),
			Name: item.CityName,
		})
	}

	return cities, nil
}
