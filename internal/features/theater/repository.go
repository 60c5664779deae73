package theater

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

type TheaterRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, t *Theater) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Theater, error)
	FindBySlug(ctx context.Context, slug string) (*Theater, error)
	List(ctx context.Context) ([]Theater, error)
	Update(ctx context.Context, t *Theater) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TheaterRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewTheaterRepository(db *database.MongodbDB) TheaterRepository {
	return &TheaterRepositoryImpl{Collection: db.DB.Collection("theaters")}
}

func (r *TheaterRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *TheaterRepositoryImpl) Create(ctx context.Context, t *Theater) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	_, err := r.Collection.InsertOne(ctx, t)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict
	}
	return err
}

func (r *TheaterRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Theater, error) {
	var t Theater
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TheaterRepositoryImpl) FindBySlug(ctx context.Context, slug string) (*Theater, error) {
	var t Theater
	err := r.Collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TheaterRepositoryImpl) List(ctx context.Context) ([]Theater, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Theater
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TheaterRepositoryImpl) Update(ctx context.Context, t *Theater) error {
	t.UpdatedAt = time.Now()
	res, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TheaterRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
