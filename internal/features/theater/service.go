package theater

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/access"
	"github.com/aedentekgit/yqpaynow-sub013/pkg/utils"
)

type CreateTheaterInput struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type TheaterService interface {
	Create(ctx context.Context, in CreateTheaterInput) (*Theater, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Theater, error)
	GetBySlug(ctx context.Context, slug string) (*Theater, error)
	List(ctx context.Context) ([]Theater, error)
	Update(ctx context.Context, id primitive.ObjectID, in CreateTheaterInput) (*Theater, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*Theater, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TheaterServiceImpl struct {
	repo     TheaterRepository
	accessSv access.AccessService
	logger   *zap.Logger
	now      func() time.Time
}

func NewTheaterService(repo TheaterRepository, accessSv access.AccessService, logger *zap.Logger) TheaterService {
	return &TheaterServiceImpl{repo: repo, accessSv: accessSv, logger: logger, now: time.Now}
}

// Create registers the theater and provisions its role and page-access
// documents so the admin role can sign in immediately.
func (s *TheaterServiceImpl) Create(ctx context.Context, in CreateTheaterInput) (*Theater, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("theater name is required")
	}

	t := &Theater{
		Name:     name,
		Slug:     utils.Slugify(name),
		City:     strings.TrimSpace(in.City),
		Address:  strings.TrimSpace(in.Address),
		Phone:    strings.TrimSpace(in.Phone),
		IsActive: true,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	if err := s.accessSv.Provision(ctx, t.ID, s.now()); err != nil {
		// The theater exists; provisioning can be re-run by the seed
		// tool, so report but do not roll back.
		s.logger.Error("theater created but access provisioning failed",
			zap.String("theater_id", t.ID.Hex()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("theater provisioned",
		zap.String("theater_id", t.ID.Hex()),
		zap.String("slug", t.Slug))
	return t, nil
}

func (s *TheaterServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*Theater, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TheaterServiceImpl) GetBySlug(ctx context.Context, slug string) (*Theater, error) {
	return s.repo.FindBySlug(ctx, slug)
}

func (s *TheaterServiceImpl) List(ctx context.Context) ([]Theater, error) {
	return s.repo.List(ctx)
}

func (s *TheaterServiceImpl) Update(ctx context.Context, id primitive.ObjectID, in CreateTheaterInput) (*Theater, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != t.Name {
		t.Name = name
		t.Slug = utils.Slugify(name)
	}
	if in.City != "" {
		t.City = strings.TrimSpace(in.City)
	}
	if in.Address != "" {
		t.Address = strings.TrimSpace(in.Address)
	}
	if in.Phone != "" {
		t.Phone = strings.TrimSpace(in.Phone)
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TheaterServiceImpl) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*Theater, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.IsActive = active
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TheaterServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}
