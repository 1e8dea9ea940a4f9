package service

import (
	"context"
	"errors"
	"testing"

	"coliver/internal/listingquery"
	"coliver/internal/models"
	"coliver/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingService_Create(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "owner@example.com")

	in := listingInput()
	in.Currency = "usd"
	in.Photos = []string{"https://cdn.test/existing.png", testutil.PNGDataURI(t)}
	in.CoLivingDetails = &models.CoLivingDetails{
		Roommates: []models.Roommate{{Name: "Taras", Age: 29, Gender: models.GenderMale}},
	}

	l, err := e.listing.Create(context.Background(), in, owner.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, owner.ID, l.OwnerID)
	assert.Equal(t, models.CurrencyUSD, l.Currency)
	assert.Equal(t, models.Coordinates{Lat: 50.45, Lng: 30.52}, l.Coordinates)
	assert.Equal(t, []string{"https://cdn.test/existing.png", "https://images.test/photo-1.png"}, l.Photos)
	assert.Len(t, e.photos.Uploaded, 1)

	stored, err := e.listings.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.Photos, stored.Photos)
}

func TestListingService_CreateRejects(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(e *env, in *ListingInput)
		wantCode string
	}{
		{
			name:     "Invalid attributes",
			mutate:   func(_ *env, in *ListingInput) { in.Price = -1; in.Capacity = 0 },
			wantCode: models.CodeValidation,
		},
		{
			name:     "Unknown amenity",
			mutate:   func(_ *env, in *ListingInput) { in.Amenities = []string{"🛸 Landing pad"} },
			wantCode: models.CodeValidation,
		},
		{
			name:     "Address not found",
			mutate:   func(e *env, _ *ListingInput) { e.geocoder.Miss = true },
			wantCode: models.CodeUpstream,
		},
		{
			name:     "Geocoder down",
			mutate:   func(e *env, _ *ListingInput) { e.geocoder.Err = errors.New("connection refused") },
			wantCode: models.CodeUpstream,
		},
		{
			name: "Photo host down",
			mutate: func(e *env, in *ListingInput) {
				e.photos.Err = models.NewUpstreamError("image host", errors.New("timeout"))
				in.Photos = []string{"data:image/png;base64,AAAA"}
			},
			wantCode: models.CodeUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			owner := e.register(t, "owner@example.com")
			in := listingInput()
			tt.mutate(e, &in)

			_, err := e.listing.Create(context.Background(), in, owner.ID)
			assertAppCode(t, err, tt.wantCode)

			ids, err := e.listings.IDsByOwner(context.Background(), owner.ID)
			require.NoError(t, err)
			assert.Empty(t, ids, "nothing is stored when create fails")
		})
	}
}

func TestListingService_CreateUnknownOwner(t *testing.T) {
	e := newEnv(t)
	_, err := e.listing.Create(context.Background(), listingInput(), "ghost")
	assertAppCode(t, err, models.CodeNotFound)
}

func TestListingService_Update(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "owner@example.com")
	l := e.createListing(t, owner.ID)
	require.Equal(t, 1, e.geocoder.Calls)

	in := listingInput()
	in.Title = "Renamed"
	in.Price = 800
	updated, err := e.listing.Update(context.Background(), l.ID, in, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 1, e.geocoder.Calls, "same address is not geocoded again")

	e.geocoder.Coords = models.Coordinates{Lat: 49.84, Lng: 24.03}
	in.City = "Lviv"
	updated, err = e.listing.Update(context.Background(), l.ID, in, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, e.geocoder.Calls)
	assert.Equal(t, models.Coordinates{Lat: 49.84, Lng: 24.03}, updated.Coordinates)

	stored, err := e.listings.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lviv", stored.City)
	assert.Equal(t, 800.0, stored.Price)
}

func TestListingService_NonOwnerIsForbidden(t *testing.T) {
	owned := &models.Listing{ID: "l-1", OwnerID: "owner", Title: "Original"}
	repo := noopListingRepo()
	repo.getByIDFn = func(_ context.Context, id string) (*models.Listing, error) {
		l := *owned
		return &l, nil
	}
	repo.updateFn = func(context.Context, *models.Listing) error {
		t.Fatal("update must not reach the store")
		return nil
	}
	repo.deleteFn = func(context.Context, string) error {
		t.Fatal("delete must not reach the store")
		return nil
	}
	svc := NewListingService(repo, nil, &testutil.GeocoderStub{}, nil, nil)

	for _, requester := range []string{"intruder", "", "OWNER"} {
		_, err := svc.Update(context.Background(), "l-1", listingInput(), requester)
		assertAppCode(t, err, models.CodeForbidden)

		err = svc.Delete(context.Background(), "l-1", requester)
		assertAppCode(t, err, models.CodeForbidden)
	}
	assert.Equal(t, "Original", owned.Title)
}

func TestListingService_MissingListing(t *testing.T) {
	svc := NewListingService(noopListingRepo(), nil, &testutil.GeocoderStub{}, nil, nil)

	_, err := svc.Update(context.Background(), "missing", listingInput(), "u")
	assertAppCode(t, err, models.CodeNotFound)
	assertAppCode(t, svc.Delete(context.Background(), "missing", "u"), models.CodeNotFound)
	_, err = svc.FetchOne(context.Background(), "missing")
	assertAppCode(t, err, models.CodeNotFound)
}

func TestListingService_DeleteCleansSavedSets(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "owner@example.com")
	fan := e.register(t, "fan@example.com")
	l := e.createListing(t, owner.ID)
	ctx := context.Background()

	_, err := e.favorites.Save(ctx, l.ID, fan.ID)
	require.NoError(t, err)

	require.NoError(t, e.listing.Delete(ctx, l.ID, owner.ID))

	saved, err := e.users.SavedListingIDs(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
	_, err = e.listing.FetchOne(ctx, l.ID)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestListingService_FetchOneAndByOwner(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "owner@example.com")
	l := e.createListing(t, owner.ID)
	e.createListing(t, owner.ID)
	ctx := context.Background()

	detail, err := e.listing.FetchOne(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, detail.ID)
	require.NotNil(t, detail.Owner)
	assert.Equal(t, owner.Email, detail.Owner.Email)
	assert.Equal(t, owner.PhoneNumber, detail.Owner.PhoneNumber)

	owned, err := e.listing.FetchByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	none, err := e.listing.FetchByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSearchService_Recent(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{requested: 0, want: DefaultRecentLimit},
		{requested: -3, want: DefaultRecentLimit},
		{requested: 7, want: 7},
		{requested: 500, want: MaxRecentLimit},
	}
	for _, tt := range tests {
		var got int
		var gotSort listingquery.Sort
		repo := noopListingRepo()
		repo.findFn = func(_ context.Context, p listingquery.Predicate, limit int) ([]models.Listing, error) {
			got = limit
			gotSort = p.Sort
			return nil, nil
		}
		summaries, err := NewSearchService(repo).Recent(context.Background(), tt.requested)
		require.NoError(t, err)
		assert.NotNil(t, summaries)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, listingquery.Sort{Field: listingquery.FieldCreatedAt, Descending: true}, gotSort)
	}
}

func TestSearchService_Browse(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "owner@example.com")
	l := e.createListing(t, owner.ID)
	ctx := context.Background()

	lo, hi := 700.0, 800.0
	usd, eur := models.CurrencyUSD, models.CurrencyEUR

	got, err := e.search.Browse(ctx, listingquery.Filter{Price: listingquery.Bounds{Min: &lo, Max: &hi}, Currency: &usd})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, l.ID, got[0].ID)

	got, err = e.search.Browse(ctx, listingquery.Filter{Price: listingquery.Bounds{Min: &lo, Max: &hi}, Currency: &eur})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchService_QueryFailed(t *testing.T) {
	repo := noopListingRepo()
	repo.findFn = func(context.Context, listingquery.Predicate, int) ([]models.Listing, error) {
		return nil, models.NewQueryFailedError(errors.New("connection reset"))
	}
	_, err := NewSearchService(repo).Browse(context.Background(), listingquery.Filter{})
	assertAppCode(t, err, models.CodeQueryFailed)
}
