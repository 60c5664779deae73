package settings

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
)

type SettingsService interface {
	Get(ctx context.Context, theaterID primitive.ObjectID, category, key string) (*Setting, error)
	ListCategory(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error)
	ListPublic(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error)
	Set(ctx context.Context, theaterID primitive.ObjectID, category, key string, value SettingValue, isPublic bool) (*Setting, error)
	Delete(ctx context.Context, theaterID primitive.ObjectID, category, key string) error
}

type SettingsServiceImpl struct {
	repo   SettingsRepository
	logger *zap.Logger
}

func NewSettingsService(repo SettingsRepository, logger *zap.Logger) SettingsService {
	return &SettingsServiceImpl{repo: repo, logger: logger}
}

func (s *SettingsServiceImpl) Get(ctx context.Context, theaterID primitive.ObjectID, category, key string) (*Setting, error) {
	return s.repo.Get(ctx, theaterID, category, key)
}

func (s *SettingsServiceImpl) ListCategory(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error) {
	return s.repo.ListCategory(ctx, theaterID, category)
}

func (s *SettingsServiceImpl) ListPublic(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error) {
	return s.repo.ListPublic(ctx, theaterID, category)
}

func (s *SettingsServiceImpl) Set(ctx context.Context, theaterID primitive.ObjectID, category, key string, value SettingValue, isPublic bool) (*Setting, error) {
	category = strings.TrimSpace(category)
	key = strings.TrimSpace(key)
	if category == "" || key == "" {
		return nil, apperrors.Validation("category and key are required")
	}
	if err := value.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	existing, err := s.repo.Get(ctx, theaterID, category, key)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsSystem {
		return nil, apperrors.ErrForbidden
	}

	return s.repo.Upsert(ctx, &Setting{
		TheaterID: theaterID,
		Category:  category,
		Key:       key,
		Value:     value,
		IsPublic:  isPublic,
	})
}

func (s *SettingsServiceImpl) Delete(ctx context.Context, theaterID primitive.ObjectID, category, key string) error {
	existing, err := s.repo.Get(ctx, theaterID, category, key)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return apperrors.ErrForbidden
	}
	return s.repo.Delete(ctx, theaterID, category, key)
}
