package distance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const office = "2800 Rolido Dr, Houston, TX 77063"

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		if r.URL.Query().Get("address") == "nowhere" {
			_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "123 Main St, Houston, TX 77002, USA",
				"address_components": [
					{"long_name": "123", "short_name": "123", "types": ["street_number"]},
					{"long_name": "Main Street", "short_name": "Main St", "types": ["route"]},
					{"long_name": "Houston", "short_name": "Houston", "types": ["locality", "political"]},
					{"long_name": "Texas", "short_name": "TX", "types": ["administrative_area_level_1", "political"]},
					{"long_name": "77002", "short_name": "77002", "types": ["postal_code"]}
				],
				"geometry": {"location": {"lat": 29.76, "lng": -95.36}}
			}]
		}`))
	}))
	defer srv.Close()

	g := NewGoogleClient("test-key", office).WithBaseURL(srv.URL)
	addr, err := g.Geocode(context.Background(), "123 main street houston")
	require.NoError(t, err)
	assert.Equal(t, "123 Main Street", addr.Street)
	assert.Equal(t, "Houston", addr.City)
	assert.Equal(t, "TX", addr.State)
	assert.Equal(t, "77002", addr.Zip)
	assert.Equal(t, "123 Main St, Houston, TX 77002, USA", addr.String())
	require.NotNil(t, addr.Lat)
	assert.InDelta(t, 29.76, *addr.Lat, 0.001)

	_, err = g.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestRoute(t *testing.T) {
	// meters per leg keyed by origin
	legs := map[string]string{
		office:  `{"value": 16093.4}`,
		"77002": `{"value": 32186.8}`,
		"77494": `{"value": 8046.7}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/distancematrix/json", r.URL.Path)
		dist := legs[r.URL.Query().Get("origins")]
		_, _ = w.Write([]byte(`{"status": "OK", "rows": [{"elements": [{"status": "OK", "distance": ` + dist + `, "duration": {"value": 1200}}]}]}`))
	}))
	defer srv.Close()

	g := NewGoogleClient("test-key", office).WithBaseURL(srv.URL)
	route, err := g.Route(context.Background(), "77002", "77494")
	require.NoError(t, err)
	assert.Equal(t, 20.0, route.PickupToDropoffMiles)
	assert.Equal(t, 35.0, route.TotalMiles)
	assert.Equal(t, 20.0, route.PickupToDropoffMins)
	assert.Equal(t, 60.0, route.TotalMinutes)
}

func TestRoute_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK", "rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`))
	}))
	defer srv.Close()

	_, err := NewGoogleClient("test-key", office).WithBaseURL(srv.URL).Route(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestMissingAPIKey(t *testing.T) {
	_, err := NewGoogleClient("", office).Geocode(context.Background(), "123 Main St")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
