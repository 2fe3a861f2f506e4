package providers

import "context"

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder converts an address to coordinates. One implementation exists per
// resolution strategy (city-specific GIS geocoder, general-purpose service).
// A nil result with a nil error means the address could not be resolved; the
// caller treats that the same as an error.
type Geocoder interface {
	Geocode(ctx context.Context, address, city string) (*Coordinates, error)
}

// Place is a nearby point of interest returned by a places lookup
type Place struct {
	ID          string
	Name        string
	Coordinates *Coordinates
}

// PlacesProvider finds places of the given types within a radius of a point,
// ranked by the provider's own distance ordering.
type PlacesProvider interface {
	NearbyPlaces(ctx context.Context, lat, lon float64, includedTypes []string, radiusMiles float64, maxResults int) ([]Place, error)
}
