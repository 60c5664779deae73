package catalog

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/pkg/utils"
)

type ProductInput struct {
	CategoryID    string  `json:"category_id"`
	ProductTypeID string  `json:"product_type_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url"`
}

type CatalogService interface {
	CreateCategory(ctx context.Context, theaterID primitive.ObjectID, name string) (*Category, error)
	ListCategories(ctx context.Context, theaterID primitive.ObjectID) ([]Category, error)
	DeleteCategory(ctx context.Context, theaterID, id primitive.ObjectID) error

	CreateProductType(ctx context.Context, theaterID primitive.ObjectID, name string) (*ProductType, error)
	ListProductTypes(ctx context.Context, theaterID primitive.ObjectID) ([]ProductType, error)
	DeleteProductType(ctx context.Context, theaterID, id primitive.ObjectID) error

	CreateProduct(ctx context.Context, theaterID primitive.ObjectID, in ProductInput) (*Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*Product, error)
	ListProducts(ctx context.Context, theaterID primitive.ObjectID, categoryID *primitive.ObjectID) ([]Product, error)
	UpdateProduct(ctx context.Context, theaterID, id primitive.ObjectID, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, theaterID, id primitive.ObjectID) error
}

type CatalogServiceImpl struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) CatalogService {
	return &CatalogServiceImpl{repo: repo}
}

func (s *CatalogServiceImpl) CreateCategory(ctx context.Context, theaterID primitive.ObjectID, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("category name is required")
	}
	cat := &Category{
		TheaterID: theaterID,
		Name:      name,
		Slug:      utils.Slugify(name),
		IsActive:  true,
	}
	if err := s.repo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CatalogServiceImpl) ListCategories(ctx context.Context, theaterID primitive.ObjectID) ([]Category, error) {
	return s.repo.ListCategories(ctx, theaterID)
}

// DeleteCategory refuses while products still reference the category.
func (s *CatalogServiceImpl) DeleteCategory(ctx context.Context, theaterID, id primitive.ObjectID) error {
	count, err := s.repo.CountProductsInCategory(ctx, theaterID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.ErrConflict
	}
	return s.repo.DeleteCategory(ctx, theaterID, id)
}

func (s *CatalogServiceImpl) CreateProductType(ctx context.Context, theaterID primitive.ObjectID, name string) (*ProductType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("product type name is required")
	}
	pt := &ProductType{
		TheaterID: theaterID,
		Name:      name,
		Slug:      utils.Slugify(name),
		IsActive:  true,
	}
	if err := s.repo.CreateProductType(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *CatalogServiceImpl) ListProductTypes(ctx context.Context, theaterID primitive.ObjectID) ([]ProductType, error) {
	return s.repo.ListProductTypes(ctx, theaterID)
}

func (s *CatalogServiceImpl) DeleteProductType(ctx context.Context, theaterID, id primitive.ObjectID) error {
	return s.repo.DeleteProductType(ctx, theaterID, id)
}

func (s *CatalogServiceImpl) CreateProduct(ctx context.Context, theaterID primitive.ObjectID, in ProductInput) (*Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("product name is required")
	}
	if in.Price < 0 {
		return nil, apperrors.Validation("price cannot be negative")
	}
	categoryID, err := primitive.ObjectIDFromHex(in.CategoryID)
	if err != nil {
		return nil, apperrors.Validation("invalid category id")
	}

	p := &Product{
		TheaterID:   theaterID,
		CategoryID:  categoryID,
		Name:        name,
		Slug:        utils.Slugify(name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		IsActive:    true,
	}
	if in.ProductTypeID != "" {
		ptID, err := primitive.ObjectIDFromHex(in.ProductTypeID)
		if err != nil {
			return nil, apperrors.Validation("invalid product type id")
		}
		p.ProductTypeID = &ptID
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	return s.repo.FindProduct(ctx, id)
}

func (s *CatalogServiceImpl) ListProducts(ctx context.Context, theaterID primitive.ObjectID, categoryID *primitive.ObjectID) ([]Product, error) {
	return s.repo.ListProducts(ctx, theaterID, categoryID)
}

func (s *CatalogServiceImpl) UpdateProduct(ctx context.Context, theaterID, id primitive.ObjectID, in ProductInput) (*Product, error) {
	p, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TheaterID != theaterID {
		return nil, apperrors.ErrNotFound
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != p.Name {
		p.Name = name
		p.Slug = utils.Slugify(name)
	}
	if in.Description != "" {
		p.Description = strings.TrimSpace(in.Description)
	}
	if in.Price > 0 {
		p.Price = in.Price
	}
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if in.CategoryID != "" {
		categoryID, err := primitive.ObjectIDFromHex(in.CategoryID)
		if err != nil {
			return nil, apperrors.Validation("invalid category id")
		}
		p.CategoryID = categoryID
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogServiceImpl) DeleteProduct(ctx context.Context, theaterID, id primitive.ObjectID) error {
	return s.repo.DeleteProduct(ctx, theaterID, id)
}
