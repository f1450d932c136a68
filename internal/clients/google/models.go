package google

// Wire types for the Google Maps web service responses. Only the fields the
// engine consumes are mapped.

type distanceMatrixResponse struct {
	Status       string              `json:"status"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Rows         []distanceMatrixRow `json:"rows"`
}

type distanceMatrixRow struct {
	Elements []distanceMatrixElement `json:"elements"`
}

type distanceMatrixElement struct {
	Status   string    `json:"status"`
	Distance valueText `json:"distance"`
	Duration valueText `json:"duration"`
}

type directionsResponse struct {
	Status       string           `json:"status"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Routes       []directionsRoute `json:"routes"`
}

type directionsRoute struct {
	OverviewPolyline polylinePoints  `json:"overview_polyline"`
	Legs             []directionsLeg `json:"legs"`
}

type directionsLeg struct {
	Distance valueText `json:"distance"`
	Duration valueText `json:"duration"`
}

type polylinePoints struct {
	Points string `json:"points"`
}

type valueText struct {
	// Value is meters for distances, seconds for durations.
	Value int64  `json:"value"`
	Text  string `json:"text"`
}
