package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/FACorreiaa/go-pet-explorer/config"
	"github.com/FACorreiaa/go-pet-explorer/internal/types"
)

var _ Client = (*GoogleClient)(nil)

// Client is the provider surface the aggregator runs against: four place
// operations plus geocoding.
type Client interface {
	FindPlaceFromText(ctx context.Context, query string) ([]string, error)
	TextSearch(ctx context.Context, query string, location *types.GeoPoint, radius int) ([]types.PlaceDetail, error)
	NearbySearch(ctx context.Context, location types.GeoPoint, radius int, placeType, keyword string) ([]types.PlaceDetail, error)
	PlaceDetails(ctx context.Context, placeID string) (*types.PlaceDetail, error)
	Geocode(ctx context.Context, address string) (*types.GeoPoint, error)
}

// GoogleClient talks to the Google Places and Geocoding web services,
// authenticating with an API key passed as a query parameter.
type GoogleClient struct {
	apiKey         string
	placesBaseURL  string
	geocodeBaseURL string
	httpClient     *http.Client
}

func NewGoogleClient(cfg config.GoogleConfig) *GoogleClient {
	return &GoogleClient{
		apiKey:         cfg.MapsAPIKey,
		placesBaseURL:  cfg.PlacesBaseURL,
		geocodeBaseURL: cfg.GeocodeBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// get issues a GET against baseURL/endpoint with the API key appended and
// decodes the JSON body into out.
func (c *GoogleClient) get(ctx context.Context, baseURL, endpoint string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %s", res.Status)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatus maps the provider's application-level status to an error.
// ZERO_RESULTS is a valid empty answer, not a failure.
func checkStatus(status, errorMessage string) error {
	if status == "OK" || status == "ZERO_RESULTS" {
		return nil
	}
	if errorMessage != "" {
		return fmt.Errorf("places api status %s: %s", status, errorMessage)
	}
	return fmt.Errorf("places api status %s", status)
}

func (c *GoogleClient) FindPlaceFromText(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("input", query)
	params.Set("inputtype", "textquery")
	params.Set("fields", "place_id")

	var resp findPlaceResponse
	if err := c.get(ctx, c.placesBaseURL, "findplacefromtext/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Candidates))
	for _, cand := range resp.Candidates {
		if cand.PlaceID != "" {
			ids = append(ids, cand.PlaceID)
		}
	}
	return ids, nil
}

func (c *GoogleClient) TextSearch(ctx context.Context, query string, location *types.GeoPoint, radius int) ([]types.PlaceDetail, error) {
	params := url.Values{}
	params.Set("query", query)
	if location != nil {
		params.Set("location", fmt.Sprintf("%f,%f", location.Lat, location.Lng))
		params.Set("radius", fmt.Sprintf("%d", radius))
	}

	var resp searchResponse
	if err := c.get(ctx, c.placesBaseURL, "textsearch/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return mapResults(resp.Results), nil
}

func (c *GoogleClient) NearbySearch(ctx context.Context, location types.GeoPoint, radius int, placeType, keyword string) ([]types.PlaceDetail, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", location.Lat, location.Lng))
	params.Set("radius", fmt.Sprintf("%d", radius))
	if placeType != "" {
		params.Set("type", placeType)
	}
	if keyword != "" {
		params.Set("keyword", keyword)
	}

	var resp searchResponse
	if err := c.get(ctx, c.placesBaseURL, "nearbysearch/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return mapResults(resp.Results), nil
}

func (c *GoogleClient) PlaceDetails(ctx context.Context, placeID string) (*types.PlaceDetail, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,website,formatted_phone_number,rating,photos")

	var resp detailsResponse
	if err := c.get(ctx, c.placesBaseURL, "details/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	r := resp.Result
	if r.PlaceID == "" {
		return nil, fmt.Errorf("place %s not found", placeID)
	}
	detail := &types.PlaceDetail{
		PlaceID:     &r.PlaceID,
		Name:        r.Name,
		Address:     r.FormattedAddress,
		Website:     r.Website,
		PhoneNumber: r.FormattedPhoneNumber,
		Rating:      r.Rating,
		PhotoRefs:   photoRefs(r.Photos),
	}
	return detail, nil
}

func (c *GoogleClient) Geocode(ctx context.Context, address string) (*types.GeoPoint, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp geocodeResponse
	if err := c.get(ctx, c.geocodeBaseURL, "json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("no geocoding result for %q", address)
	}

	loc := resp.Results[0].Geometry.Location
	return &types.GeoPoint{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// mapResults converts text/nearby search hits into normalized records.
// Website and phone are never present in search responses, only in details.
func mapResults(results []placeResult) []types.PlaceDetail {
	out := make([]types.PlaceDetail, 0, len(results))
	for _, r := range results {
		r := r
		detail := types.PlaceDetail{
			Name:      r.Name,
			Rating:    r.Rating,
			PhotoRefs: photoRefs(r.Photos),
		}
		if r.PlaceID != "" {
			detail.PlaceID = &r.PlaceID
		}
		switch {
		case r.FormattedAddress != nil:
			detail.Address = r.FormattedAddress
		case r.Vicinity != nil:
			detail.Address = r.Vicinity
		}
		out = append(out, detail)
	}
	return out
}

func photoRefs(photos []photo) []string {
	if len(photos) == 0 {
		return nil
	}
	refs := make([]string, 0, len(photos))
	for _, p := range photos {
		if p.PhotoReference != "" {
			refs = append(refs, p.PhotoReference)
		}
	}
	return refs
}
