package dto

// FredObservationsResponse is the wire format of the FRED series
// observations endpoint.
type FredObservationsResponse struct {
	Observations []FredObservation `json:"observations"`
}

// FredObservation is a single dated observation. FRED encodes missing
// values as "." in the value field.
type FredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}
