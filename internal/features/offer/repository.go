package offer

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/database"
)

type OfferRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, o *Offer) error
	FindByCode(ctx context.Context, theaterID primitive.ObjectID, code string) (*Offer, error)
	List(ctx context.Context, theaterID primitive.ObjectID) ([]Offer, error)
	Update(ctx context.Context, o *Offer) error
	Delete(ctx context.Context, theaterID, id primitive.ObjectID) error
}

type OfferRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewOfferRepository(db *database.MongodbDB) OfferRepository {
	return &OfferRepositoryImpl{Collection: db.DB.Collection("offers")}
}

func (r *OfferRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "theater_id", Value: 1},
			{Key: "code", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *OfferRepositoryImpl) Create(ctx context.Context, o *Offer) error {
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	_, err := r.Collection.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict
	}
	return err
}

func (r *OfferRepositoryImpl) FindByCode(ctx context.Context, theaterID primitive.ObjectID, code string) (*Offer, error) {
	var o Offer
	err := r.Collection.FindOne(ctx, bson.M{"theater_id": theaterID, "code": code}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OfferRepositoryImpl) List(ctx context.Context, theaterID primitive.ObjectID) ([]Offer, error) {
	cursor, err := r.Collection.Find(ctx,
		bson.M{"theater_id": theaterID},
		options.Find().SetSort(bson.D{{Key: "starts_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Offer
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OfferRepositoryImpl) Update(ctx context.Context, o *Offer) error {
	o.UpdatedAt = time.Now()
	res, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": o.ID, "theater_id": o.TheaterID}, o)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OfferRepositoryImpl) Delete(ctx context.Context, theaterID, id primitive.ObjectID) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id, "theater_id": theaterID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
