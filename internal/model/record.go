package model

// Record is a single POI document as stored in the spots collection.
// Fields is the raw document content: sources disagree on shapes, so the
// map is kept verbatim and typed access goes through internal/dedupe's
// extraction helpers. The raw map is also what backup artifacts preserve.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// GeoPoint is a store-native latitude/longitude pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Known source tags for POI provenance.
const (
	SourceOSM          = "openstreetmap"
	SourceGooglePlaces = "google_places"
)
