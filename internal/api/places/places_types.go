package places

// Wire types for the Google Places and Geocoding web services. Only the
// fields the aggregator reads are mapped.

type findPlaceResponse struct {
	Candidates []struct {
		PlaceID string `json:"place_id"`
	} `json:"candidates"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type searchResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress *string  `json:"formatted_address,omitempty"`
	Vicinity         *string  `json:"vicinity,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	Photos           []photo  `json:"photos,omitempty"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
}

type detailsResponse struct {
	Result struct {
		PlaceID              string   `json:"place_id"`
		Name                 string   `json:"name"`
		FormattedAddress     *string  `json:"formatted_address,omitempty"`
		Website              *string  `json:"website,omitempty"`
		FormattedPhoneNumber *string  `json:"formatted_phone_number,omitempty"`
		Rating               *float64 `json:"rating,omitempty"`
		Photos               []photo  `json:"photos,omitempty"`
	} `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}
