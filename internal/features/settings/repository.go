package settings

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

type SettingsRepository interface {
	EnsureIndexes(ctx context.Context) error
	Get(ctx context.Context, theaterID primitive.ObjectID, category, key string) (*Setting, error)
	ListCategory(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error)
	ListPublic(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error)
	Upsert(ctx context.Context, s *Setting) (*Setting, error)
	Delete(ctx context.Context, theaterID primitive.ObjectID, category, key string) error
}

type SettingsRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSettingsRepository(db *database.MongodbDB) SettingsRepository {
	return &SettingsRepositoryImpl{Collection: db.DB.Collection("settings")}
}

func (r *SettingsRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "theater_id", Value: 1},
			{Key: "category", Value: 1},
			{Key: "key", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *SettingsRepositoryImpl) Get(ctx context.Context, theaterID primitive.ObjectID, category, key string) (*Setting, error) {
	var s Setting
	err := r.Collection.FindOne(ctx, bson.M{
		"theater_id": theaterID,
		"category":   category,
		"key":        key,
	}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepositoryImpl) ListCategory(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error) {
	cursor, err := r.Collection.Find(ctx,
		bson.M{"theater_id": theaterID, "category": category},
		options.Find().SetSort(bson.D{{Key: "key", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Setting
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPublic returns only the settings flagged publicly readable, for the
// unauthenticated route.
func (r *SettingsRepositoryImpl) ListPublic(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error) {
	cursor, err := r.Collection.Find(ctx,
		bson.M{"theater_id": theaterID, "category": category, "is_public": true},
		options.Find().SetSort(bson.D{{Key: "key", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Setting
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes the value for (theater, category, key), creating the row
// when absent. The is_system flag is only set on insert, never flipped by
// an update.
func (r *SettingsRepositoryImpl) Upsert(ctx context.Context, s *Setting) (*Setting, error) {
	now := time.Now()
	filter := bson.M{
		"theater_id": s.TheaterID,
		"category":   s.Category,
		"key":        s.Key,
	}
	update := bson.M{
		"$set": bson.M{
			"value":      s.Value,
			"is_public":  s.IsPublic,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"is_system":  s.IsSystem,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Setting
	if err := r.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *SettingsRepositoryImpl) Delete(ctx context.Context, theaterID primitive.ObjectID, category, key string) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{
		"theater_id": theaterID,
		"category":   category,
		"key":        key,
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
