package types

// GeoPoint is a geocoded coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceDetail is the normalized record every search branch maps into.
// PlaceID is the provider-assigned identifier and the deduplication key;
// records without one are never merged against each other.
type PlaceDetail struct {
	PlaceID     *string  `json:"place_id,omitempty"`
	Name        string   `json:"name"`
	Address     *string  `json:"address,omitempty"`
	Website     *string  `json:"website,omitempty"`
	PhoneNumber *string  `json:"phone_number,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	PhotoRefs   []string `json:"photo_refs,omitempty"`
}

// HasContactInfo reports whether the record already carries the fields only a
// details lookup can provide. Used to decide which records need enrichment.
func (p PlaceDetail) HasContactInfo() bool {
	return p.Website != nil || p.PhoneNumber != nil
}
