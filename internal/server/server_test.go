package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"coliver/internal/bootstrap"
	"coliver/internal/catalog"
	"coliver/internal/config"
	"coliver/internal/kvstore"
	"coliver/internal/models"
	"coliver/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-entropy-1234567890"

type testServer struct {
	app      *fiber.App
	runtime  *bootstrap.Runtime
	geocoder *testutil.GeocoderStub
	photos   *testutil.PhotoUploaderStub
}

// newTestServer builds the full app over an in-memory SQLite store. Passing a
// miniredis enables session revocation.
func newTestServer(t *testing.T, mr *miniredis.Miniredis) *testServer {
	t.Helper()
	rt := bootstrap.NewGormRuntime(testutil.NewSQLiteDB(t))
	if mr != nil {
		rdb, err := kvstore.Connect(context.Background(), mr.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { _ = rdb.Close() })
		rt.Redis = rdb
	}

	ts := &testServer{
		runtime:  rt,
		geocoder: &testutil.GeocoderStub{Coords: models.Coordinates{Lat: 50.45, Lng: 30.52}},
		photos:   &testutil.PhotoUploaderStub{},
	}
	cfg := &config.Config{
		Env:            "test",
		Port:           "0",
		JWTSecret:      testSecret,
		AllowedOrigins: "http://localhost:3000",
	}
	s := NewServerWithDeps(cfg, Deps{
		Runtime:  rt,
		Geocoder: ts.geocoder,
		Photos:   ts.photos,
		Catalog:  catalog.MustLoad(),
	})
	ts.app = s.NewApp()
	return ts
}

type request struct {
	method string
	path   string
	body   any
	token  string
	bearer bool
}

func (ts *testServer) do(t *testing.T, r request) *http.Response {
	t.Helper()
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		if r.bearer {
			req.Header.Set("Authorization", "Bearer "+r.token)
		} else {
			req.AddCookie(&http.Cookie{Name: sessionCookie, Value: r.token})
		}
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionCookieFrom(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	return nil
}

// register creates an account and returns its session token and user ID.
func (ts *testServer) register(t *testing.T, email string) (string, string) {
	t.Helper()
	resp := ts.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"fullName":    "Test User",
		"email":       email,
		"password":    "secret123",
		"phoneNumber": "+380501234567",
	}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	auth := decode[AuthResponse](t, resp)
	return auth.Token, auth.User.ID
}

func listingBody() map[string]any {
	return map[string]any{
		"title":       "Sunny room near the park",
		"city":        "Kyiv",
		"street":      "Khreshchatyk 1",
		"price":       750,
		"currency":    "USD",
		"floor":       3,
		"capacity":    2,
		"description": "Bright room in a shared flat",
		"amenities":   []string{"📶 Wi-Fi"},
	}
}

func (ts *testServer) createListing(t *testing.T, token string, body map[string]any) models.ListingSummary {
	t.Helper()
	resp := ts.do(t, request{method: http.MethodPost, path: "/api/listings", body: body, token: token})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[models.ListingSummary](t, resp)
}

func listingIDs(listings []models.ListingSummary) []string {
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := ts.do(t, request{method: http.MethodGet, path: "/health/live"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = ts.do(t, request{method: http.MethodGet, path: "/health/ready"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}](t, resp)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["store"])
	assert.Equal(t, "disabled", body.Checks["redis"])
}

func TestReadinessReportsRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ts := newTestServer(t, mr)

	resp := ts.do(t, request{method: http.MethodGet, path: "/health/ready"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[struct {
		Checks map[string]string `json:"checks"`
	}](t, resp)
	assert.Equal(t, "healthy", body.Checks["redis"])
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(t, request{method: http.MethodGet, path: "/api/nope"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetCatalog(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(t, request{method: http.MethodGet, path: "/api/catalog"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[struct {
		Preferences []string `json:"preferences"`
		Amenities   []string `json:"amenities"`
	}](t, resp)
	assert.NotEmpty(t, body.Preferences)
	assert.Contains(t, body.Amenities, "📶 Wi-Fi")
}
