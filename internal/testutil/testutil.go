// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"coliver/internal/config"
	"coliver/internal/database"
	"coliver/internal/models"

	"gorm.io/gorm"
)

// NewSQLiteDB returns a migrated in-memory database that is closed when t ends.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.Config{
		Env:         "test",
		StoreDriver: config.StoreSQLite,
		SQLitePath:  ":memory:",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// PNGDataURI returns a tiny valid PNG encoded as a data URI.
func PNGDataURI(t testing.TB) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// GeocoderStub resolves every address to a fixed point unless Miss or Err is set.
type GeocoderStub struct {
	mu     sync.Mutex
	Coords models.Coordinates
	Miss   bool
	Err    error
	Calls  int
}

// Geocode records the call and returns the configured outcome.
func (g *GeocoderStub) Geocode(_ context.Context, _, _ string) (*models.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls++
	if g.Err != nil {
		return nil, g.Err
	}
	if g.Miss {
		return nil, nil
	}
	c := g.Coords
	return &c, nil
}

// PhotoUploaderStub returns a predictable URL for every payload.
type PhotoUploaderStub struct {
	mu       sync.Mutex
	Err      error
	Uploaded []string
}

// Upload records the payload and returns a fake hosted URL.
func (u *PhotoUploaderStub) Upload(_ context.Context, payload string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return "", u.Err
	}
	u.Uploaded = append(u.Uploaded, payload)
	return fmt.Sprintf("https://images.test/photo-%d.png", len(u.Uploaded)), nil
}
