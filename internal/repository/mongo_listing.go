package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coliver/internal/listingquery"
	"coliver/internal/middleware"
	"coliver/internal/models"
	"coliver/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoListingRepository struct {
	listings *mongo.Collection
	users    *mongo.Collection
}

// NewMongoListingRepository returns a ListingRepository backed by the listings collection of db.
func NewMongoListingRepository(db *mongo.Database) ListingRepository {
	return &mongoListingRepository{
		listings: db.Collection(listingsCollection),
		users:    db.Collection(usersCollection),
	}
}

func (r *mongoListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewNotFoundError("Listing", id)
	}
	var doc listingDocument
	if err := r.listings.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Listing", id)
		}
		return nil, models.NewInternalError(err)
	}
	l := doc.toModel()
	return &l, nil
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	owner, err := primitive.ObjectIDFromHex(listing.OwnerID)
	if err != nil {
		return models.NewNotFoundError("User", listing.OwnerID)
	}
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	doc := newListingDocument(listing, primitive.NewObjectID(), owner)
	if _, err := r.listings.InsertOne(ctx, doc); err != nil {
		return models.NewInternalError(err)
	}
	listing.ID = doc.ID.Hex()
	return nil
}

func (r *mongoListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	oid, err := primitive.ObjectIDFromHex(listing.ID)
	if err != nil {
		return models.NewNotFoundError("Listing", listing.ID)
	}
	owner, err := primitive.ObjectIDFromHex(listing.OwnerID)
	if err != nil {
		return models.NewNotFoundError("User", listing.OwnerID)
	}
	listing.UpdatedAt = time.Now().UTC()
	res, err := r.listings.ReplaceOne(ctx, bson.M{"_id": oid}, newListingDocument(listing, oid, owner))
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Listing", listing.ID)
	}
	return nil
}

// Delete removes the listing, then pulls it from saved sets. The two writes are
// not atomic; a failed cleanup is logged and leaves a dangling saved id that
// reads skip.
func (r *mongoListingRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, "mongodb", "delete", listingsCollection)
	defer func() { observability.EndSpan(span, err) }()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.NewNotFoundError("Listing", id)
	}
	res, err := r.listings.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Listing", id)
	}

	if _, cleanupErr := r.users.UpdateMany(ctx,
		bson.M{"savedListings": oid},
		bson.M{"$pull": bson.M{"savedListings": oid}},
	); cleanupErr != nil {
		middleware.Logger.ErrorContext(ctx, "failed to remove deleted listing from saved sets",
			slog.String("listing_id", id),
			slog.String("error", cleanupErr.Error()),
		)
	}
	return nil
}

func (r *mongoListingRepository) Find(ctx context.Context, p listingquery.Predicate, limit int) (listings []models.Listing, err error) {
	ctx, span := observability.StartStoreSpan(ctx, "mongodb", "find", listingsCollection)
	defer func() { observability.EndSpan(span, err) }()

	filter, sort := listingquery.ToBSON(p)
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	listings, err = r.find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewQueryFailedError(err)
	}
	return listings, nil
}

func (r *mongoListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []models.Listing{}, nil
	}
	listings, err := r.find(ctx, bson.M{"userId": owner}, options.Find())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *mongoListingRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Listing, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []models.Listing{}, nil
	}
	listings, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *mongoListingRepository) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []string{}, nil
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.listings.Find(ctx, bson.M{"userId": owner}, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, models.NewInternalError(err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}

func (r *mongoListingRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Listing, error) {
	cursor, err := r.listings.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	listings := make([]models.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, docs[i].toModel())
	}
	return listings, nil
}
