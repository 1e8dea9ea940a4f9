package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coliver/internal/catalog"
	"coliver/internal/listingquery"
	"coliver/internal/models"
	"coliver/internal/repository"
	"coliver/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-entropy-1234567890"

// assertAppCode asserts that err is an AppError carrying code.
func assertAppCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// env wires every service over one in-memory SQLite database.
type env struct {
	users     repository.UserRepository
	listings  repository.ListingRepository
	geocoder  *testutil.GeocoderStub
	photos    *testutil.PhotoUploaderStub
	auth      *AuthService
	listing   *ListingService
	favorites *FavoritesService
	search    *SearchService
	profiles  *ProfileService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	e := &env{
		users:    repository.NewUserRepository(db),
		listings: repository.NewListingRepository(db),
		geocoder: &testutil.GeocoderStub{Coords: models.Coordinates{Lat: 50.45, Lng: 30.52}},
		photos:   &testutil.PhotoUploaderStub{},
	}
	e.auth = NewAuthService(e.users, e.listings, NewTokenManager(testSecret), nil)
	e.listing = NewListingService(e.listings, e.users, e.geocoder, e.photos, catalog.MustLoad())
	e.favorites = NewFavoritesService(e.users, e.listings)
	e.search = NewSearchService(e.listings)
	e.profiles = NewProfileService(e.users, e.photos)
	return e
}

func (e *env) register(t *testing.T, email string) *models.User {
	t.Helper()
	sess, err := e.auth.Register(context.Background(), RegisterInput{
		FullName:    "Test User",
		Email:       email,
		Password:    "secret123",
		PhoneNumber: "+380501234567",
	})
	require.NoError(t, err)
	return sess.User
}

func listingInput() ListingInput {
	return ListingInput{
		Title:       "Sunny room near the park",
		City:        "Kyiv",
		Street:      "Khreshchatyk 1",
		Price:       750,
		Currency:    models.CurrencyUSD,
		Floor:       3,
		Capacity:    2,
		Description: "Bright room in a shared flat",
		Amenities:   []string{"📶 Wi-Fi"},
	}
}

func (e *env) createListing(t *testing.T, ownerID string) *models.Listing {
	t.Helper()
	l, err := e.listing.Create(context.Background(), listingInput(), ownerID)
	require.NoError(t, err)
	return l
}

// listingRepoStub lets tests script individual repository calls.
type listingRepoStub struct {
	getByIDFn func(context.Context, string) (*models.Listing, error)
	updateFn  func(context.Context, *models.Listing) error
	deleteFn  func(context.Context, string) error
	findFn    func(context.Context, listingquery.Predicate, int) ([]models.Listing, error)
}

func (s *listingRepoStub) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	return s.getByIDFn(ctx, id)
}
func (s *listingRepoStub) Create(context.Context, *models.Listing) error { return nil }
func (s *listingRepoStub) Update(ctx context.Context, l *models.Listing) error {
	return s.updateFn(ctx, l)
}
func (s *listingRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *listingRepoStub) Find(ctx context.Context, p listingquery.Predicate, limit int) ([]models.Listing, error) {
	return s.findFn(ctx, p, limit)
}
func (s *listingRepoStub) ListByOwner(context.Context, string) ([]models.Listing, error) {
	return nil, nil
}
func (s *listingRepoStub) ListByIDs(context.Context, []string) ([]models.Listing, error) {
	return nil, nil
}
func (s *listingRepoStub) IDsByOwner(context.Context, string) ([]string, error) { return nil, nil }

func noopListingRepo() *listingRepoStub {
	return &listingRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.Listing, error) {
			return nil, models.NewNotFoundError("Listing", id)
		},
		updateFn: func(context.Context, *models.Listing) error { return nil },
		deleteFn: func(context.Context, string) error { return nil },
		findFn: func(context.Context, listingquery.Predicate, int) ([]models.Listing, error) {
			return nil, nil
		},
	}
}

// revokerStub records revocations and can simulate a store outage.
type revokerStub struct {
	revoked map[string]bool
	err     error
}

func (r *revokerStub) Revoke(_ context.Context, jti string, _ time.Time) error {
	if r.err != nil {
		return r.err
	}
	if r.revoked == nil {
		r.revoked = map[string]bool{}
	}
	r.revoked[jti] = true
	return nil
}

func (r *revokerStub) IsRevoked(_ context.Context, jti string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.revoked[jti], nil
}
