package access

import (
	"context"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PageAccessRepository interface {
	Create(ctx context.Context, doc *PageAccessDocument) error
	GetByTheater(ctx context.Context, theaterID primitive.ObjectID) (*PageAccessDocument, error)
	ReplaceVersioned(ctx context.Context, doc *PageAccessDocument) (bool, error)
	DeleteByTheater(ctx context.Context, theaterID primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type PageAccessRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPageAccessRepository(mongodb *database.MongodbDB) PageAccessRepository {
	return &PageAccessRepositoryImpl{
		Collection: mongodb.DB.Collection("page_access"),
	}
}

// EnsureIndexes keeps exactly one document per theater. The legacy
// `pageName_1` index is deliberately never created here; cmd/fix_pageaccess
// drops it from old deployments.
func (r *PageAccessRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "theater_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *PageAccessRepositoryImpl) Create(ctx context.Context, doc *PageAccessDocument) error {
	_, err := r.Collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict.WithCause(err)
	}
	return err
}

func (r *PageAccessRepositoryImpl) GetByTheater(ctx context.Context, theaterID primitive.ObjectID) (*PageAccessDocument, error) {
	var doc PageAccessDocument
	err := r.Collection.FindOne(ctx, bson.M{"theater_id": theaterID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *PageAccessRepositoryImpl) ReplaceVersioned(ctx context.Context, doc *PageAccessDocument) (bool, error) {
	filter := bson.M{"theater_id": doc.TheaterID, "version": doc.Version}

	next := *doc
	next.Version = doc.Version + 1

	res, err := r.Collection.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *PageAccessRepositoryImpl) DeleteByTheater(ctx context.Context, theaterID primitive.ObjectID) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"theater_id": theaterID})
	return err
}
