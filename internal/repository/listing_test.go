package repository

import (
	"context"
	"testing"
	"time"

	"coliver/internal/listingquery"
	"coliver/internal/models"
	"coliver/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	users    UserRepository
	listings ListingRepository
	owner    *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	f := &fixture{
		db:       db,
		users:    NewUserRepository(db),
		listings: NewListingRepository(db),
	}
	f.owner = f.createUser(t, "owner@example.com")
	return f
}

func (f *fixture) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{FullName: "Test User", Email: email, Password: "hash", PhoneNumber: "+380501234567"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) createListing(t *testing.T, mutate func(l *models.Listing)) *models.Listing {
	t.Helper()
	l := &models.Listing{
		Title:       "Room",
		City:        "Kyiv",
		Street:      "Khreshchatyk 1",
		Price:       300,
		Currency:    models.CurrencyUSD,
		Floor:       2,
		Capacity:    2,
		Description: "Quiet room",
		OwnerID:     f.owner.ID,
	}
	if mutate != nil {
		mutate(l)
	}
	require.NoError(t, f.listings.Create(context.Background(), l))
	return l
}

func ids(listings []models.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func find(t *testing.T, f *fixture, filter listingquery.Filter) []string {
	t.Helper()
	listings, err := f.listings.Find(context.Background(), listingquery.Build(filter), 0)
	require.NoError(t, err)
	return ids(listings)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	err := f.users.Create(context.Background(), &models.User{
		FullName: "Other", Email: "owner@example.com", Password: "hash", PhoneNumber: "+380501234567",
	})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestListingRepository_RoundTrip(t *testing.T) {
	f := newFixture(t)
	created := f.createListing(t, func(l *models.Listing) {
		l.Photos = []string{"https://img.test/1.png"}
		l.Amenities = []string{"📶 Wi-Fi"}
		l.Coordinates = models.Coordinates{Lat: 50.45, Lng: 30.52}
		l.CoLivingDetails = &models.CoLivingDetails{
			Roommates:  []models.Roommate{{Name: "Oksana", Age: 27, Gender: models.GenderFemale, Description: "Designer"}},
			HouseRules: []string{"No parties"},
		}
	})

	got, err := f.listings.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, []string{"https://img.test/1.png"}, got.Photos)
	assert.Equal(t, models.Coordinates{Lat: 50.45, Lng: 30.52}, got.Coordinates)
	require.NotNil(t, got.CoLivingDetails)
	assert.Equal(t, "Oksana", got.CoLivingDetails.Roommates[0].Name)

	_, err = f.listings.GetByID(context.Background(), "missing")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestListingRepository_FindContainsAllTags(t *testing.T) {
	f := newFixture(t)
	both := f.createListing(t, func(l *models.Listing) { l.Amenities = []string{"📶 Wi-Fi", "🍳 Kitchen"} })
	f.createListing(t, func(l *models.Listing) { l.Amenities = []string{"📶 Wi-Fi"} })
	f.createListing(t, func(l *models.Listing) { l.Preferences = []string{"📶 Wi-Fi", "🍳 Kitchen"} })

	got := find(t, f, listingquery.Filter{Amenities: []string{"📶 Wi-Fi", "🍳 Kitchen"}})
	assert.Equal(t, []string{both.ID}, got)
}

func TestListingRepository_FindCapacity(t *testing.T) {
	f := newFixture(t)
	two := f.createListing(t, func(l *models.Listing) { l.Capacity = 2 })
	three := f.createListing(t, func(l *models.Listing) { l.Capacity = 3 })
	five := f.createListing(t, func(l *models.Listing) { l.Capacity = 5 })

	assert.ElementsMatch(t, []string{three.ID, five.ID}, find(t, f, listingquery.Filter{Capacity: &listingquery.Capacity{Value: 3, AtLeast: true}}))
	assert.Equal(t, []string{two.ID}, find(t, f, listingquery.Filter{Capacity: &listingquery.Capacity{Value: 2}}))
}

func TestListingRepository_FindTextAndRanges(t *testing.T) {
	f := newFixture(t)
	lviv := f.createListing(t, func(l *models.Listing) { l.City = "Lviv"; l.Price = 150; l.Description = "Near the PARK" })
	f.createListing(t, func(l *models.Listing) { l.City = "Kyiv"; l.Price = 500 })

	min, max := 100.0, 200.0
	assert.Equal(t, []string{lviv.ID}, find(t, f, listingquery.Filter{City: "lv"}))
	assert.Equal(t, []string{lviv.ID}, find(t, f, listingquery.Filter{Query: "park"}))
	assert.Equal(t, []string{lviv.ID}, find(t, f, listingquery.Filter{Price: listingquery.Bounds{Min: &min, Max: &max}}))
	assert.Empty(t, find(t, f, listingquery.Filter{Query: "100%"}))
}

func TestListingRepository_FindNonASCIIText(t *testing.T) {
	f := newFixture(t)
	lviv := f.createListing(t, func(l *models.Listing) {
		l.City = "Львів"
		l.Street = "вулиця Городоцька 5"
		l.Description = "Світла кімната біля ПАРКУ"
	})
	f.createListing(t, func(l *models.Listing) { l.City = "Київ" })

	assert.Equal(t, []string{lviv.ID}, find(t, f, listingquery.Filter{City: "Львів"}))
	assert.Equal(t, []string{lviv.ID}, find(t, f, listingquery.Filter{City: "львів"}))
	assert.Equal(t, []string{lviv.ID}, find(t, f, listingquery.Filter{City: "ЛЬВ"}))
	assert.Equal(t, []string{lviv.ID}, find(t, f, listingquery.Filter{Street: "ГОРОДОЦЬКА"}))
	assert.Equal(t, []string{lviv.ID}, find(t, f, listingquery.Filter{Query: "парку"}))
}

func TestListingRepository_UpdateRefreshesSearchText(t *testing.T) {
	f := newFixture(t)
	l := f.createListing(t, nil)

	l.City = "Одеса"
	require.NoError(t, f.listings.Update(context.Background(), l))

	assert.Equal(t, []string{l.ID}, find(t, f, listingquery.Filter{City: "одеса"}))
	assert.Empty(t, find(t, f, listingquery.Filter{City: "kyiv"}))
}

func TestListingRepository_FindSortAndLimit(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	old := f.createListing(t, func(l *models.Listing) { l.Price = 300; l.CreatedAt = base })
	mid := f.createListing(t, func(l *models.Listing) { l.Price = 100; l.CreatedAt = base.Add(time.Hour) })
	recent := f.createListing(t, func(l *models.Listing) { l.Price = 200; l.CreatedAt = base.Add(2 * time.Hour) })

	assert.Equal(t, []string{recent.ID, mid.ID, old.ID}, find(t, f, listingquery.Filter{}))
	assert.Equal(t, []string{old.ID, mid.ID, recent.ID}, find(t, f, listingquery.Filter{Sort: listingquery.SortDateOldest}))
	assert.Equal(t, []string{mid.ID, recent.ID, old.ID}, find(t, f, listingquery.Filter{Sort: listingquery.SortPriceAsc}))
	assert.Equal(t, []string{old.ID, recent.ID, mid.ID}, find(t, f, listingquery.Filter{Sort: listingquery.SortPriceDesc}))

	limited, err := f.listings.Find(context.Background(), listingquery.Newest(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{recent.ID, mid.ID}, ids(limited))
}

func TestListingRepository_UpdateReplacesTags(t *testing.T) {
	f := newFixture(t)
	l := f.createListing(t, func(l *models.Listing) { l.Amenities = []string{"📶 Wi-Fi", "🍳 Kitchen"} })

	l.Amenities = []string{"📶 Wi-Fi"}
	l.Title = "Renamed"
	require.NoError(t, f.listings.Update(context.Background(), l))

	assert.Empty(t, find(t, f, listingquery.Filter{Amenities: []string{"🍳 Kitchen"}}))
	assert.Equal(t, []string{l.ID}, find(t, f, listingquery.Filter{Amenities: []string{"📶 Wi-Fi"}}))

	got, err := f.listings.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestListingRepository_DeleteCleansSavedSets(t *testing.T) {
	f := newFixture(t)
	l := f.createListing(t, nil)
	keep := f.createListing(t, nil)
	fan := f.createUser(t, "fan@example.com")
	ctx := context.Background()

	require.NoError(t, f.users.AddSavedListing(ctx, fan.ID, l.ID))
	require.NoError(t, f.users.AddSavedListing(ctx, fan.ID, keep.ID))

	require.NoError(t, f.listings.Delete(ctx, l.ID))

	saved, err := f.users.SavedListingIDs(ctx, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, saved)

	err = f.listings.Delete(ctx, l.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserRepository_SavedListingsAreASet(t *testing.T) {
	f := newFixture(t)
	l := f.createListing(t, nil)
	ctx := context.Background()

	require.NoError(t, f.users.AddSavedListing(ctx, f.owner.ID, l.ID))
	require.NoError(t, f.users.AddSavedListing(ctx, f.owner.ID, l.ID))
	saved, err := f.users.SavedListingIDs(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{l.ID}, saved)

	require.NoError(t, f.users.RemoveSavedListing(ctx, f.owner.ID, l.ID))
	require.NoError(t, f.users.RemoveSavedListing(ctx, f.owner.ID, l.ID))
	saved, err = f.users.SavedListingIDs(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestListingRepository_OwnerQueries(t *testing.T) {
	f := newFixture(t)
	a := f.createListing(t, nil)
	b := f.createListing(t, nil)
	other := f.createUser(t, "other@example.com")
	c := f.createListing(t, func(l *models.Listing) { l.OwnerID = other.ID })
	ctx := context.Background()

	owned, err := f.listings.ListByOwner(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids(owned))

	ownedIDs, err := f.listings.IDsByOwner(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ownedIDs)

	byIDs, err := f.listings.ListByIDs(ctx, []string{a.ID, c.ID, "missing"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, c.ID}, ids(byIDs))

	none, err := f.listings.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUserRepository_UpdateToTakenEmail(t *testing.T) {
	f := newFixture(t)
	other := f.createUser(t, "other@example.com")

	other.Email = "owner@example.com"
	err := f.users.Update(context.Background(), other)
	assert.True(t, models.IsCode(err, models.CodeConflict))
}
