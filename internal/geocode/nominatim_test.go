package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"coliver/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Geocode(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"50.4501","lon":"30.5234","display_name":"Kyiv"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "coliver-test/1.0")
	coords, err := c.Geocode(context.Background(), "Kyiv", "Khreshchatyk 1")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.InDelta(t, 50.4501, coords.Lat, 1e-9)
	assert.InDelta(t, 30.5234, coords.Lng, 1e-9)
	assert.Equal(t, "Kyiv, Khreshchatyk 1", gotQuery)
	assert.Equal(t, "coliver-test/1.0", gotAgent)
}

func TestClient_GeocodeNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	coords, err := New(srv.URL, "ua").Geocode(context.Background(), "Nowhere", "Nothing 0")
	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestClient_GeocodeFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "HTTP error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "slow down", http.StatusTooManyRequests)
			},
		},
		{
			name: "Malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{not json`))
			},
		},
		{
			name: "Bad coordinates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[{"lat":"north","lon":"30.1"}]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			coords, err := New(srv.URL, "ua").Geocode(context.Background(), "Kyiv", "Main 1")
			assert.Nil(t, coords)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeUpstream))
		})
	}
}

func TestClient_GeocodeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, "ua").Geocode(context.Background(), "Kyiv", "Main 1")
	assert.True(t, models.IsCode(err, models.CodeUpstream))
}
