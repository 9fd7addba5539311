package routing

import "strconv"

type directionsRequest struct {
	Coordinates []Coordinates `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary RouteSummary `json:"summary"`
	} `json:"routes"`
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// FormatKilometers renders a distance in meters as kilometers with two
// decimals, e.g. 12345.6 becomes "12.35 km".
func FormatKilometers(meters float64) string {
	return strconv.FormatFloat(meters/1000, 'f', 2, 64) + " km"
}

// FormatMinutes renders a duration in seconds as minutes with two decimals,
// e.g. 912 becomes "15.20 mins".
func FormatMinutes(seconds float64) string {
	return strconv.FormatFloat(seconds/60, 'f', 2, 64) + " mins"
}
