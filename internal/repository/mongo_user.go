package repository

import (
	"context"
	"errors"
	"time"

	"coliver/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository returns a UserRepository backed by the users collection of db.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{users: db.Collection(usersCollection)}
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewNotFoundError("User", id)
	}
	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return doc.toModel(), nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	doc := userDocument{
		ID:            primitive.NewObjectID(),
		FullName:      user.FullName,
		Email:         user.Email,
		Password:      user.Password,
		PhoneNumber:   user.PhoneNumber,
		Bio:           user.Bio,
		ProfileImage:  user.ProfileImage,
		SavedListings: []primitive.ObjectID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewDuplicateEmailError()
		}
		return models.NewInternalError(err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *models.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return models.NewNotFoundError("User", user.ID)
	}
	user.UpdatedAt = time.Now().UTC()
	res, err := r.users.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"fullName":      user.FullName,
		"email":         user.Email,
		"password":      user.Password,
		"phoneNumber":   user.PhoneNumber,
		"bio":           user.Bio,
		"profile_image": user.ProfileImage,
		"updatedAt":     user.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewDuplicateEmailError()
		}
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	return nil
}

func (r *mongoUserRepository) SavedListingIDs(ctx context.Context, userID string) ([]string, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.NewNotFoundError("User", userID)
	}
	var doc userDocument
	opts := options.FindOne().SetProjection(bson.M{"savedListings": 1})
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, models.NewInternalError(err)
	}
	ids := make([]string, 0, len(doc.SavedListings))
	for _, id := range doc.SavedListings {
		ids = append(ids, id.Hex())
	}
	return ids, nil
}

func (r *mongoUserRepository) AddSavedListing(ctx context.Context, userID, listingID string) error {
	return r.updateSaved(ctx, userID, listingID, "$addToSet")
}

func (r *mongoUserRepository) RemoveSavedListing(ctx context.Context, userID, listingID string) error {
	return r.updateSaved(ctx, userID, listingID, "$pull")
}

func (r *mongoUserRepository) updateSaved(ctx context.Context, userID, listingID, op string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User", userID)
	}
	lid, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		// A malformed id can never be in the set.
		if op == "$pull" {
			return nil
		}
		return models.NewNotFoundError("Listing", listingID)
	}
	res, err := r.users.UpdateByID(ctx, uid, bson.M{op: bson.M{"savedListings": lid}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}
