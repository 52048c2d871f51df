package transit

import "strings"

type RouteType string

const (
	RouteTypeTrunk    RouteType = "trunk"
	RouteTypeBranch   RouteType = "branch"
	RouteTypeCircular RouteType = "circular"
	RouteTypeOther    RouteType = "other"
)

// RouteTypeFromCode maps the upstream routetp value onto a RouteType. Some
// cities report the numeric code, others the label (간선버스, 지선버스, 순환버스).
func RouteTypeFromCode(code string) RouteType {
	code = strings.TrimSpace(code)

	switch {
	case code == "1" || strings.Contains(code, "간선"):
		return RouteTypeTrunk
	case code == "2" || strings.Contains(code, "지선"):
		return RouteTypeBranch
	case code == "3" || strings.Contains(code, "순환"):
		return RouteTypeCircular
	default:
		return RouteTypeOther
	}
}

// Route is a through-route serving a station.
type Route struct {
	ID              string    `json:"routeid"`
	Number          string    `json:"routeno"`
	Type            RouteType `json:"routetp"`
	OriginName      string    `json:"startnodenm"`
	DestinationName string    `json:"endnodenm"`
}
