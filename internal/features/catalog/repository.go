package catalog

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

type CatalogRepository interface {
	EnsureIndexes(ctx context.Context) error

	CreateCategory(ctx context.Context, cat *Category) error
	ListCategories(ctx context.Context, theaterID primitive.ObjectID) ([]Category, error)
	UpdateCategory(ctx context.Context, cat *Category) error
	DeleteCategory(ctx context.Context, theaterID, id primitive.ObjectID) error

	CreateProductType(ctx context.Context, pt *ProductType) error
	ListProductTypes(ctx context.Context, theaterID primitive.ObjectID) ([]ProductType, error)
	DeleteProductType(ctx context.Context, theaterID, id primitive.ObjectID) error

	CreateProduct(ctx context.Context, p *Product) error
	FindProduct(ctx context.Context, id primitive.ObjectID) (*Product, error)
	ListProducts(ctx context.Context, theaterID primitive.ObjectID, categoryID *primitive.ObjectID) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, theaterID, id primitive.ObjectID) error
	CountProductsInCategory(ctx context.Context, theaterID, categoryID primitive.ObjectID) (int64, error)
}

type CatalogRepositoryImpl struct {
	Categories   *mongo.Collection
	ProductTypes *mongo.Collection
	Products     *mongo.Collection
}

func NewCatalogRepository(db *database.MongodbDB) CatalogRepository {
	return &CatalogRepositoryImpl{
		Categories:   db.DB.Collection("categories"),
		ProductTypes: db.DB.Collection("product_types"),
		Products:     db.DB.Collection("products"),
	}
}

func (r *CatalogRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	slugIdx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "theater_id", Value: 1},
			{Key: "slug", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{r.Categories, r.ProductTypes, r.Products} {
		if _, err := coll.Indexes().CreateOne(ctx, slugIdx); err != nil {
			return err
		}
	}
	_, err := r.Products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "theater_id", Value: 1},
			{Key: "category_id", Value: 1},
		},
	})
	return err
}

func (r *CatalogRepositoryImpl) CreateCategory(ctx context.Context, cat *Category) error {
	cat.ID = primitive.NewObjectID()
	cat.CreatedAt = time.Now()
	cat.UpdatedAt = cat.CreatedAt
	_, err := r.Categories.InsertOne(ctx, cat)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict
	}
	return err
}

func (r *CatalogRepositoryImpl) ListCategories(ctx context.Context, theaterID primitive.ObjectID) ([]Category, error) {
	cursor, err := r.Categories.Find(ctx,
		bson.M{"theater_id": theaterID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Category
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepositoryImpl) UpdateCategory(ctx context.Context, cat *Category) error {
	cat.UpdatedAt = time.Now()
	res, err := r.Categories.ReplaceOne(ctx, bson.M{"_id": cat.ID, "theater_id": cat.TheaterID}, cat)
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

func (r *CatalogRepositoryImpl) DeleteCategory(ctx context.Context, theaterID, id primitive.ObjectID) error {
	res, err := r.Categories.DeleteOne(ctx, bson.M{"_id": id, "theater_id": theaterID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CatalogRepositoryImpl) CreateProductType(ctx context.Context, pt *ProductType) error {
	pt.ID = primitive.NewObjectID()
	pt.CreatedAt = time.Now()
	pt.UpdatedAt = pt.CreatedAt
	_, err := r.ProductTypes.InsertOne(ctx, pt)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict
	}
	return err
}

func (r *CatalogRepositoryImpl) ListProductTypes(ctx context.Context, theaterID primitive.ObjectID) ([]ProductType, error) {
	cursor, err := r.ProductTypes.Find(ctx,
		bson.M{"theater_id": theaterID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []ProductType
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepositoryImpl) DeleteProductType(ctx context.Context, theaterID, id primitive.ObjectID) error {
	res, err := r.ProductTypes.DeleteOne(ctx, bson.M{"_id": id, "theater_id": theaterID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CatalogRepositoryImpl) CreateProduct(ctx context.Context, p *Product) error {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	_, err := r.Products.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict
	}
	return err
}

func (r *CatalogRepositoryImpl) FindProduct(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	var p Product
	err := r.Products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepositoryImpl) ListProducts(ctx context.Context, theaterID primitive.ObjectID, categoryID *primitive.ObjectID) ([]Product, error) {
	filter := bson.M{"theater_id": theaterID}
	if categoryID != nil {
		filter["category_id"] = *categoryID
	}
	cursor, err := r.Products.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Product
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepositoryImpl) UpdateProduct(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now()
	res, err := r.Products.ReplaceOne(ctx, bson.M{"_id": p.ID, "theater_id": p.TheaterID}, p)
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

func (r *CatalogRepositoryImpl) DeleteProduct(ctx context.Context, theaterID, id primitive.ObjectID) error {
	res, err := r.Products.DeleteOne(ctx, bson.M{"_id": id, "theater_id": theaterID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CatalogRepositoryImpl) CountProductsInCategory(ctx context.Context, theaterID, categoryID primitive.ObjectID) (int64, error) {
	return r.Products.CountDocuments(ctx, bson.M{"theater_id": theaterID, "category_id": categoryID})
}
