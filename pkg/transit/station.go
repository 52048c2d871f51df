package transit

// Station is a bus stop found by a name search. Stations only live for the
// duration of a search and are never persisted.
type Station struct {
	ID       string `json:"nodeid"`
	Name     string `json:"nodenm"`
	Number   string `json:"nodeno,omitempty"`
	CityCode string `json:"citycode"`
}
