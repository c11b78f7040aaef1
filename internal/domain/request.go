package domain

import "encoding/json"

// CatalogStatusResponse reports the catalog load state.
type CatalogStatusResponse struct {
	State    CatalogState `json:"state"`
	Listings int          `json:"listings"`
	Error    string       `json:"error,omitempty"`
}

// TagsResponse lists the tag vocabulary of the catalog.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// ListingsResponse is one render of the discovery pipeline.
type ListingsResponse struct {
	Method   Method           `json:"method,omitempty"`
	Params   FilterParameters `json:"params"`
	Listings []Listing        `json:"listings"`
	Count    int              `json:"count"`
	Empty    bool             `json:"empty"`
	Message  string           `json:"message,omitempty"`
}

// UpdateParamsRequest changes the live filter parameters. Absent fields
// are left as they are.
type UpdateParamsRequest struct {
	Query         *string   `json:"query,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	MaxDistanceKm *float64  `json:"max_distance_km,omitempty"`
}

// UpdateParamsResponse returns the parameters after an update.
type UpdateParamsResponse struct {
	Params  FilterParameters `json:"params"`
	Method  Method           `json:"method,omitempty"`
	Changed bool             `json:"changed"`
}

// SelectRequest is a listing selection during a trial.
type SelectRequest struct {
	ListingID *int `json:"listing_id"`
}

// SelectResponse reports the outcome of a selection.
type SelectResponse struct {
	Ignored bool            `json:"ignored"`
	Hit     bool            `json:"hit"`
	Result  *TrialResult    `json:"result,omitempty"`
	Session SessionSnapshot `json:"session"`
}

// TransitionResponse is returned by start and continue.
type TransitionResponse struct {
	Changed bool            `json:"changed"`
	Session SessionSnapshot `json:"session"`
}

// ExportResponse carries a minted results document.
type ExportResponse struct {
	ExportID string          `json:"export_id"`
	Filename string          `json:"filename"`
	Document json.RawMessage `json:"document"`
}

// ListExportsResponse lists the artifacts minted in this session.
type ListExportsResponse struct {
	Exports []ExportArtifact `json:"exports"`
}
