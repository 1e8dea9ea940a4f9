package repository

import (
	"time"

	"coliver/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names shared with the web application's existing data.
const (
	usersCollection    = "users"
	listingsCollection = "listings"
)

type userDocument struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	FullName      string               `bson:"fullName"`
	Email         string               `bson:"email"`
	Password      string               `bson:"password"`
	PhoneNumber   string               `bson:"phoneNumber"`
	Bio           string               `bson:"bio,omitempty"`
	ProfileImage  string               `bson:"profile_image,omitempty"`
	SavedListings []primitive.ObjectID `bson:"savedListings"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		FullName:     d.FullName,
		Email:        d.Email,
		Password:     d.Password,
		PhoneNumber:  d.PhoneNumber,
		Bio:          d.Bio,
		ProfileImage: d.ProfileImage,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type coordinatesDocument struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

type roommateDocument struct {
	Name        string `bson:"name"`
	Age         int    `bson:"age"`
	Gender      string `bson:"gender"`
	Description string `bson:"description,omitempty"`
}

type coLivingDocument struct {
	Roommates    []roommateDocument `bson:"roommates"`
	HouseRules   []string           `bson:"houseRules"`
	SharedSpaces string             `bson:"sharedSpaces,omitempty"`
	Schedule     string             `bson:"schedule,omitempty"`
}

type listingDocument struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"`
	Title           string              `bson:"title"`
	City            string              `bson:"city"`
	Street          string              `bson:"street"`
	Price           float64             `bson:"price"`
	Currency        string              `bson:"currency"`
	Floor           int                 `bson:"floor"`
	Capacity        int                 `bson:"capacity"`
	Description     string              `bson:"description"`
	Photos          []string            `bson:"photos"`
	Preferences     []string            `bson:"preferences"`
	Amenities       []string            `bson:"amenities"`
	Coordinates     coordinatesDocument `bson:"coordinates"`
	UserID          primitive.ObjectID  `bson:"userId"`
	CoLivingDetails *coLivingDocument   `bson:"coLivingDetails,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt"`
}

func newListingDocument(l *models.Listing, id, owner primitive.ObjectID) *listingDocument {
	doc := &listingDocument{
		ID:          id,
		Title:       l.Title,
		City:        l.City,
		Street:      l.Street,
		Price:       l.Price,
		Currency:    string(l.Currency),
		Floor:       l.Floor,
		Capacity:    l.Capacity,
		Description: l.Description,
		Photos:      emptyIfNil(l.Photos),
		Preferences: emptyIfNil(l.Preferences),
		Amenities:   emptyIfNil(l.Amenities),
		Coordinates: coordinatesDocument{Lat: l.Coordinates.Lat, Lng: l.Coordinates.Lng},
		UserID:      owner,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if d := l.CoLivingDetails; d != nil {
		co := &coLivingDocument{
			HouseRules:   emptyIfNil(d.HouseRules),
			SharedSpaces: d.SharedSpaces,
			Schedule:     d.Schedule,
		}
		for _, r := range d.Roommates {
			co.Roommates = append(co.Roommates, roommateDocument{
				Name:        r.Name,
				Age:         r.Age,
				Gender:      string(r.Gender),
				Description: r.Description,
			})
		}
		doc.CoLivingDetails = co
	}
	return doc
}

func (d *listingDocument) toModel() models.Listing {
	l := models.Listing{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		City:        d.City,
		Street:      d.Street,
		Price:       d.Price,
		Currency:    models.Currency(d.Currency),
		Floor:       d.Floor,
		Capacity:    d.Capacity,
		Description: d.Description,
		Photos:      d.Photos,
		Preferences: d.Preferences,
		Amenities:   d.Amenities,
		Coordinates: models.Coordinates{Lat: d.Coordinates.Lat, Lng: d.Coordinates.Lng},
		OwnerID:     d.UserID.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if co := d.CoLivingDetails; co != nil {
		details := &models.CoLivingDetails{
			HouseRules:   co.HouseRules,
			SharedSpaces: co.SharedSpaces,
			Schedule:     co.Schedule,
		}
		for _, r := range co.Roommates {
			details.Roommates = append(details.Roommates, models.Roommate{
				Name:        r.Name,
				Age:         r.Age,
				Gender:      models.Gender(r.Gender),
				Description: r.Description,
			})
		}
		l.CoLivingDetails = details
	}
	return l
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// objectIDs converts hex identifiers, skipping any that are malformed.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
