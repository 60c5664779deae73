package settings

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
)

type settingKey struct {
	theater  primitive.ObjectID
	category string
	key      string
}

type fakeSettingsRepo struct {
	rows map[settingKey]*Setting
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{rows: map[settingKey]*Setting{}}
}

func (r *fakeSettingsRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeSettingsRepo) Get(ctx context.Context, theaterID primitive.ObjectID, category, key string) (*Setting, error) {
	s, ok := r.rows[settingKey{theaterID, category, key}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSettingsRepo) ListCategory(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error) {
	var out []Setting
	for k, s := range r.rows {
		if k.theater == theaterID && k.category == category {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSettingsRepo) ListPublic(ctx context.Context, theaterID primitive.ObjectID, category string) ([]Setting, error) {
	var out []Setting
	for k, s := range r.rows {
		if k.theater == theaterID && k.category == category && s.IsPublic {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSettingsRepo) Upsert(ctx context.Context, s *Setting) (*Setting, error) {
	id := settingKey{s.TheaterID, s.Category, s.Key}
	if existing, ok := r.rows[id]; ok {
		existing.Value = s.Value
		existing.IsPublic = s.IsPublic
		copied := *existing
		return &copied, nil
	}
	copied := *s
	r.rows[id] = &copied
	result := copied
	return &result, nil
}

func (r *fakeSettingsRepo) Delete(ctx context.Context, theaterID primitive.ObjectID, category, key string) error {
	id := settingKey{theaterID, category, key}
	if _, ok := r.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func TestSetAndListPublic(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo, zap.NewNop())
	ctx := context.Background()
	theaterID := primitive.NewObjectID()

	if _, err := svc.Set(ctx, theaterID, "branding", "theme", SettingValue{Kind: KindString, String: "dark"}, true); err != nil {
		t.Fatalf("set public: %v", err)
	}
	if _, err := svc.Set(ctx, theaterID, "branding", "gateway_hint", SettingValue{Kind: KindString, String: "internal"}, false); err != nil {
		t.Fatalf("set private: %v", err)
	}

	public, err := svc.ListPublic(ctx, theaterID, "branding")
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(public) != 1 || public[0].Key != "theme" {
		t.Fatalf("public list = %v, want only the theme", public)
	}

	all, err := svc.ListCategory(ctx, theaterID, "branding")
	if err != nil {
		t.Fatalf("list category: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("authenticated list = %d rows, want 2", len(all))
	}
}

func TestSetRefusesSystemSetting(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo, zap.NewNop())
	ctx := context.Background()
	theaterID := primitive.NewObjectID()

	repo.rows[settingKey{theaterID, "core", "currency"}] = &Setting{
		TheaterID: theaterID,
		Category:  "core",
		Key:       "currency",
		Value:     SettingValue{Kind: KindString, String: "INR"},
		IsSystem:  true,
	}

	if _, err := svc.Set(ctx, theaterID, "core", "currency", SettingValue{Kind: KindString, String: "USD"}, false); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
	if err := svc.Delete(ctx, theaterID, "core", "currency"); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("delete: got %v, want forbidden", err)
	}
}
