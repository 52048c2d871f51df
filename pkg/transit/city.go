package transit

import "strings"

// CityCode is a TAGO city identifier, e.g. 25 for Daejeon.
type CityCode struct {
	Code string `json:"citycode"`
	Name string `json:"cityname"`
}

// FilterCities returns the cities whose name contains text, ignoring case.
// An empty or blank text returns every city.
func FilterCities(cities []CityCode, text string) []CityCode {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return cities
	}

	var filtered []CityCode
	for _, city := range cities {
		if strings.Contains(strings.ToLower(city.Name), needle) {
			filtered = append(filtered, city)
		}
	}

	return filtered
}
