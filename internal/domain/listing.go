package domain

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Listing is a single food listing in the catalog.
type Listing struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`

	// Distance is only set on render copies, in kilometres.
	Distance *float64 `json:"distance_km,omitempty"`
}

// Position returns the listing coordinate.
func (l Listing) Position() Point {
	return Point{Lat: l.Lat, Lon: l.Lon}
}

// HasAnyTag reports whether the listing carries at least one of tags.
func (l Listing) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range l.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// FilterParameters holds the live discovery inputs of a session.
type FilterParameters struct {
	Query         string   `json:"query"`
	Tags          []string `json:"tags"`
	MaxDistanceKm float64  `json:"max_distance_km"`
}
