package access

import (
	"context"
	"time"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RoleRepository interface {
	Create(ctx context.Context, doc *RoleDocument) error
	GetByTheater(ctx context.Context, theaterID primitive.ObjectID) (*RoleDocument, error)
	// ReplaceVersioned writes the whole aggregate if the stored version still
	// matches doc.Version; reports false on a lost race.
	ReplaceVersioned(ctx context.Context, doc *RoleDocument) (bool, error)
	// SetPermission flips a single matrix cell atomically via array filters.
	SetPermission(ctx context.Context, theaterID primitive.ObjectID, roleID, page string, value bool, now time.Time) error
	DeleteByTheater(ctx context.Context, theaterID primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type RoleRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRoleRepository(mongodb *database.MongodbDB) RoleRepository {
	return &RoleRepositoryImpl{
		Collection: mongodb.DB.Collection("roles"),
	}
}

func (r *RoleRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "theater_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *RoleRepositoryImpl) Create(ctx context.Context, doc *RoleDocument) error {
	_, err := r.Collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict.WithCause(err)
	}
	return err
}

func (r *RoleRepositoryImpl) GetByTheater(ctx context.Context, theaterID primitive.ObjectID) (*RoleDocument, error) {
	var doc RoleDocument
	err := r.Collection.FindOne(ctx, bson.M{"theater_id": theaterID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *RoleRepositoryImpl) ReplaceVersioned(ctx context.Context, doc *RoleDocument) (bool, error) {
	filter := bson.M{"theater_id": doc.TheaterID, "version": doc.Version}

	next := *doc
	next.Version = doc.Version + 1

	res, err := r.Collection.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *RoleRepositoryImpl) SetPermission(ctx context.Context, theaterID primitive.ObjectID, roleID, page string, value bool, now time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"roles.$[r].permissions.$[p].has_access": value,
			"roles.$[r].permissions.$[p].updated_at": now,
			"roles.$[r].updated_at":                  now,
			"updated_at":                             now,
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"r.role_id": roleID},
			bson.M{"p.page": page},
		},
	})

	res, err := r.Collection.UpdateOne(ctx, bson.M{"theater_id": theaterID}, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *RoleRepositoryImpl) DeleteByTheater(ctx context.Context, theaterID primitive.ObjectID) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"theater_id": theaterID})
	return err
}
