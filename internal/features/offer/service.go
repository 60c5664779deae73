package offer

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
)

type OfferInput struct {
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	DiscountType string    `json:"discount_type"`
	Value        float64   `json:"value"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	ProductIDs   []string  `json:"product_ids"`
}

type OfferService interface {
	Create(ctx context.Context, theaterID primitive.ObjectID, in OfferInput) (*Offer, error)
	List(ctx context.Context, theaterID primitive.ObjectID) ([]Offer, error)
	Resolve(ctx context.Context, theaterID primitive.ObjectID, code string, at time.Time) (*Offer, error)
	SetActive(ctx context.Context, theaterID, id primitive.ObjectID, active bool) error
	Delete(ctx context.Context, theaterID, id primitive.ObjectID) error
}

type OfferServiceImpl struct {
	repo OfferRepository
}

func NewOfferService(repo OfferRepository) OfferService {
	return &OfferServiceImpl{repo: repo}
}

func (s *OfferServiceImpl) Create(ctx context.Context, theaterID primitive.ObjectID, in OfferInput) (*Offer, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, apperrors.Validation("offer code is required")
	}
	if in.DiscountType != DiscountPercent && in.DiscountType != DiscountFlat {
		return nil, apperrors.Validation("discount type must be percent or flat")
	}
	if in.Value <= 0 {
		return nil, apperrors.Validation("discount value must be positive")
	}
	if in.DiscountType == DiscountPercent && in.Value > 100 {
		return nil, apperrors.Validation("percent discount cannot exceed 100")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, apperrors.Validation("offer must end after it starts")
	}
	var productIDs []primitive.ObjectID
	for _, raw := range in.ProductIDs {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, apperrors.Validation("invalid product id in offer")
		}
		productIDs = append(productIDs, oid)
	}

	o := &Offer{
		TheaterID:    theaterID,
		Name:         strings.TrimSpace(in.Name),
		Code:         code,
		DiscountType: in.DiscountType,
		Value:        in.Value,
		StartsAt:     in.StartsAt,
		EndsAt:       in.EndsAt,
		ProductIDs:   productIDs,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OfferServiceImpl) List(ctx context.Context, theaterID primitive.ObjectID) ([]Offer, error) {
	return s.repo.List(ctx, theaterID)
}

// Resolve returns the offer for a code only when it is live at the given
// time; dead or out-of-window codes report not found.
func (s *OfferServiceImpl) Resolve(ctx context.Context, theaterID primitive.ObjectID, code string, at time.Time) (*Offer, error) {
	o, err := s.repo.FindByCode(ctx, theaterID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if !o.Live(at) {
		return nil, apperrors.ErrNotFound
	}
	return o, nil
}

func (s *OfferServiceImpl) SetActive(ctx context.Context, theaterID, id primitive.ObjectID, active bool) error {
	list, err := s.repo.List(ctx, theaterID)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			list[i].IsActive = active
			return s.repo.Update(ctx, &list[i])
		}
	}
	return apperrors.ErrNotFound
}

func (s *OfferServiceImpl) Delete(ctx context.Context, theaterID, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, theaterID, id)
}
