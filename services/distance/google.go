// Package distance geocodes caller addresses and measures driving routes
// through the Google Maps web services.
package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"moveline/models"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"
	metersPerMile  = 1609.34
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrNoRoute         = errors.New("no driving route")
	ErrMissingAPIKey   = errors.New("google maps api key not configured")
)

// Route is the office → pickup → dropoff → office trip.
type Route struct {
	TotalMiles           float64
	PickupToDropoffMiles float64
	PickupToDropoffMins  float64
	TotalMinutes         float64
}

// Service is what the dialogue needs from a maps provider.
type Service interface {
	Geocode(ctx context.Context, raw string) (*models.Address, error)
	Route(ctx context.Context, pickup, dropoff string) (Route, error)
}

// GoogleClient talks to the Geocoding and Distance Matrix JSON APIs.
type GoogleClient struct {
	apiKey  string
	baseURL string
	office  string
	http    *http.Client
}

func NewGoogleClient(apiKey, officeAddress string) *GoogleClient {
	return &GoogleClient{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		office:  officeAddress,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client at another host (tests, proxies).
func (g *GoogleClient) WithBaseURL(base string) *GoogleClient {
	g.baseURL = base
	return g
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Geocode resolves raw caller input into a structured address.
func (g *GoogleClient) Geocode(ctx context.Context, raw string) (*models.Address, error) {
	var resp geocodeResponse
	if err := g.get(ctx, "/geocode/json", url.Values{"address": {raw}}, &resp); err != nil {
		return nil, fmt.Errorf("Geocode: %w", err)
	}
	if resp.Status == "ZERO_RESULTS" || len(resp.Results) == 0 {
		return nil, ErrAddressNotFound
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("Geocode: status %s", resp.Status)
	}

	r := resp.Results[0]
	lat, lng := r.Geometry.Location.Lat, r.Geometry.Location.Lng
	addr := &models.Address{
		Formatted: r.FormattedAddress,
		Lat:       &lat,
		Lng:       &lng,
		Raw:       raw,
	}
	var number, street string
	for _, c := range r.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "street_number":
				number = c.LongName
			case "route":
				street = c.LongName
			case "locality":
				addr.City = c.LongName
			case "administrative_area_level_1":
				addr.State = c.ShortName
			case "postal_code":
				addr.Zip = c.LongName
			}
		}
	}
	switch {
	case number != "" && street != "":
		addr.Street = number + " " + street
	case street != "":
		addr.Street = street
	}
	return addr, nil
}

// Route measures the three driving legs of a job starting and ending at the office.
func (g *GoogleClient) Route(ctx context.Context, pickup, dropoff string) (Route, error) {
	legs := [3][2]string{{g.office, pickup}, {pickup, dropoff}, {dropoff, g.office}}
	var meters, seconds [3]float64
	for i, leg := range legs {
		m, s, err := g.leg(ctx, leg[0], leg[1])
		if err != nil {
			return Route{}, fmt.Errorf("Route: leg %d: %w", i+1, err)
		}
		meters[i], seconds[i] = m, s
	}

	return Route{
		TotalMiles:           round2((meters[0] + meters[1] + meters[2]) / metersPerMile),
		PickupToDropoffMiles: round2(meters[1] / metersPerMile),
		PickupToDropoffMins:  round2(seconds[1] / 60),
		TotalMinutes:         round2((seconds[0] + seconds[1] + seconds[2]) / 60),
	}, nil
}

func (g *GoogleClient) leg(ctx context.Context, origin, dest string) (float64, float64, error) {
	var resp matrixResponse
	params := url.Values{
		"origins":      {origin},
		"destinations": {dest},
		"mode":         {"driving"},
		"units":        {"imperial"},
	}
	if err := g.get(ctx, "/distancematrix/json", params, &resp); err != nil {
		return 0, 0, err
	}
	if resp.Status != "OK" || len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, 0, fmt.Errorf("%w: status %s", ErrNoRoute, resp.Status)
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return 0, 0, fmt.Errorf("%w: element status %s", ErrNoRoute, el.Status)
	}
	return el.Distance.Value, el.Duration.Value, nil
}

func (g *GoogleClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if g.apiKey == "" {
		return ErrMissingAPIKey
	}
	params.Set("key", g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps api returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
