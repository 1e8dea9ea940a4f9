// Package seed fills a listing store with demo accounts and listings for
// development. It is never run by the API server.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coliver/internal/catalog"
	"coliver/internal/middleware"
	"coliver/internal/models"
	"coliver/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

var cities = []struct {
	name     string
	lat, lng float64
}{
	{"Kyiv", 50.4501, 30.5234},
	{"Lviv", 49.8397, 24.0297},
	{"Odesa", 46.4825, 30.7233},
	{"Warsaw", 52.2297, 21.0122},
	{"Berlin", 52.5200, 13.4050},
}

var currencies = []models.Currency{models.CurrencyUSD, models.CurrencyEUR, models.CurrencyUAH}

var genders = []models.Gender{models.GenderMale, models.GenderFemale, models.GenderOther}

// Options controls how much data a Seeder writes.
type Options struct {
	Users           int
	ListingsPerUser int
	// SavesPerUser is how many other users' listings each account saves.
	SavesPerUser int
}

// Result summarises what was written.
type Result struct {
	Users    []models.User
	Listings []models.Listing
	Saves    int
}

// Seeder writes generated accounts and listings through the repositories, so it
// works against every store driver.
type Seeder struct {
	users    repository.UserRepository
	listings repository.ListingRepository
	catalog  *catalog.Catalog
	faker    *gofakeit.Faker
}

// NewSeeder creates a Seeder. A fixed seed reproduces the same content; zero picks a random one.
func NewSeeder(users repository.UserRepository, listings repository.ListingRepository, tags *catalog.Catalog, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{users: users, listings: listings, catalog: tags, faker: gofakeit.New(seed)}
}

// Run creates opts.Users accounts, each owning opts.ListingsPerUser listings and
// saving up to opts.SavesPerUser listings owned by others.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	res := &Result{}
	for i := 0; i < opts.Users; i++ {
		user := s.BuildUser(i, string(hash))
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", user.Email, err)
		}
		res.Users = append(res.Users, *user)

		for j := 0; j < opts.ListingsPerUser; j++ {
			listing := s.BuildListing(user.ID)
			if err := s.listings.Create(ctx, listing); err != nil {
				return nil, fmt.Errorf("create listing for %s: %w", user.Email, err)
			}
			res.Listings = append(res.Listings, *listing)
		}
	}

	for _, user := range res.Users {
		saved := 0
		for _, idx := range s.faker.Rand.Perm(len(res.Listings)) {
			if saved >= opts.SavesPerUser {
				break
			}
			listing := res.Listings[idx]
			if listing.OwnerID == user.ID {
				continue
			}
			if err := s.users.AddSavedListing(ctx, user.ID, listing.ID); err != nil {
				return nil, fmt.Errorf("save listing %s: %w", listing.ID, err)
			}
			saved++
		}
		res.Saves += saved
	}

	middleware.Logger.InfoContext(ctx, "Seeding complete",
		slog.Int("users", len(res.Users)),
		slog.Int("listings", len(res.Listings)),
		slog.Int("saves", res.Saves),
	)
	return res, nil
}

// BuildUser returns the n-th demo account. Emails are numbered so reruns against
// a cleaned store stay collision free.
func (s *Seeder) BuildUser(n int, passwordHash string) *models.User {
	first, last := s.faker.FirstName(), s.faker.LastName()
	return &models.User{
		FullName:     first + " " + last,
		Email:        fmt.Sprintf("user%d@coliver.test", n+1),
		Password:     passwordHash,
		PhoneNumber:  "+38050" + s.faker.Numerify("#######"),
		Bio:          s.faker.Sentence(12),
		ProfileImage: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", s.faker.UUID()),
	}
}

// BuildListing returns an unsaved listing owned by ownerID with tags drawn from the catalog.
func (s *Seeder) BuildListing(ownerID string) *models.Listing {
	city := cities[s.faker.Number(0, len(cities)-1)]
	capacity := s.faker.Number(1, 4)

	listing := &models.Listing{
		Title:       s.faker.Sentence(4),
		City:        city.name,
		Street:      s.faker.Street(),
		Price:       float64(s.faker.Number(20, 120) * 10),
		Currency:    currencies[s.faker.Number(0, len(currencies)-1)],
		Floor:       s.faker.Number(0, 16),
		Capacity:    capacity,
		Description: s.faker.Paragraph(1, 3, 12, " "),
		Photos:      s.photos(),
		Preferences: s.pick(s.catalog.Preferences, 3),
		Amenities:   s.pick(s.catalog.Amenities, 5),
		Coordinates: models.Coordinates{
			// Jitter within a few kilometres of the city centre.
			Lat: city.lat + s.faker.Float64Range(-0.03, 0.03),
			Lng: city.lng + s.faker.Float64Range(-0.03, 0.03),
		},
		OwnerID: ownerID,
	}

	if capacity > 1 {
		listing.CoLivingDetails = s.coLiving(capacity - 1)
	}
	return listing
}

func (s *Seeder) photos() []string {
	n := s.faker.Number(1, 4)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("https://picsum.photos/seed/%s/800/600", s.faker.UUID()))
	}
	return out
}

func (s *Seeder) coLiving(roommates int) *models.CoLivingDetails {
	d := &models.CoLivingDetails{
		HouseRules:   []string{s.faker.Sentence(5), s.faker.Sentence(5)},
		SharedSpaces: "Kitchen, living room",
		Schedule:     s.faker.Sentence(6),
	}
	for i := 0; i < roommates; i++ {
		d.Roommates = append(d.Roommates, models.Roommate{
			Name:        s.faker.FirstName(),
			Age:         s.faker.Number(19, 45),
			Gender:      genders[s.faker.Number(0, len(genders)-1)],
			Description: s.faker.Sentence(8),
		})
	}
	return d
}

// pick returns up to max distinct entries of tags in random order.
func (s *Seeder) pick(tags []string, max int) []string {
	n := s.faker.Number(0, max)
	if n > len(tags) {
		n = len(tags)
	}
	out := make([]string, 0, n)
	for _, idx := range s.faker.Rand.Perm(len(tags))[:n] {
		out = append(out, tags[idx])
	}
	return out
}
