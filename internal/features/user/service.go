package user

import (
	"context"
	"strings"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"
	"github.com/aedentekgit/yqpaynow-sub013/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UserService interface {
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, theaterID string, limit, offset int64) ([]models.User, int64, error)
	UpdateProfile(ctx context.Context, id string, email, phone string) error
	ChangePassword(ctx context.Context, id string, current, next string) error
	SetRole(ctx context.Context, id string, role models.RoleKind, roleID string, theaterID string) error
	SetPermissions(ctx context.Context, id string, perms []models.Permission) error
	SetStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error
}

type UserServiceImpl struct {
	Repo   UserRepository
	Logger *zap.Logger
}

func NewUserService(repo UserRepository, logger *zap.Logger) UserService {
	return &UserServiceImpl{Repo: repo, Logger: logger}
}

func (s *UserServiceImpl) Get(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *UserServiceImpl) List(ctx context.Context, theaterID string, limit, offset int64) ([]models.User, int64, error) {
	filter := map[string]interface{}{}
	if theaterID != "" {
		oid, err := primitive.ObjectIDFromHex(theaterID)
		if err != nil {
			return nil, 0, apperrors.Validation("invalid theater id")
		}
		filter["theater_id"] = oid
	}
	return s.Repo.List(ctx, filter, limit, offset)
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id string, email, phone string) error {
	set := bson.M{}
	if email != "" {
		set["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	if phone != "" {
		set["phone"] = phone
	}
	if len(set) == 0 {
		return apperrors.Validation("nothing to update")
	}
	return s.Repo.Update(ctx, id, set)
}

func (s *UserServiceImpl) ChangePassword(ctx context.Context, id string, current, next string) error {
	usr, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(usr.Password, current) {
		return apperrors.ErrInvalidCredentials
	}
	if len(next) < 8 {
		return apperrors.Validation("password must be at least 8 characters")
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return apperrors.Internal(err)
	}
	return s.Repo.Update(ctx, id, bson.M{"password": hash})
}

// SetRole rebinds a user's role. A theater binding is mandatory for
// theater_admin and theater_staff, and forbidden otherwise. The permission
// list is reset to the new role's default bundle.
func (s *UserServiceImpl) SetRole(ctx context.Context, id string, role models.RoleKind, roleID string, theaterID string) error {
	set := bson.M{
		"role":        role,
		"role_id":     roleID,
		"permissions": models.DefaultPermissions(role),
	}
	if role.RequiresTheater() {
		if theaterID == "" {
			return apperrors.Validation("theater_id is required for theater roles")
		}
		oid, err := primitive.ObjectIDFromHex(theaterID)
		if err != nil {
			return apperrors.Validation("invalid theater id")
		}
		set["theater_id"] = oid
	} else {
		set["theater_id"] = nil
	}
	return s.Repo.Update(ctx, id, set)
}

// SetPermissions replaces the user-level grant list. super_admin never
// carries one; the list is ignored for that role anyway.
func (s *UserServiceImpl) SetPermissions(ctx context.Context, id string, perms []models.Permission) error {
	for _, p := range perms {
		if strings.TrimSpace(p.Resource) == "" || len(p.Actions) == 0 {
			return apperrors.Validation("each permission needs a resource and at least one action")
		}
	}
	return s.Repo.Update(ctx, id, bson.M{"permissions": perms})
}

func (s *UserServiceImpl) SetStatus(ctx context.Context, id string, status string) error {
	switch status {
	case models.StatusActive, models.StatusInactive, models.StatusSuspended:
	default:
		return apperrors.Validation("unknown status")
	}
	s.Logger.Info("user status change", zap.String("user_id", id), zap.String("status", status))
	return s.Repo.Update(ctx, id, bson.M{"status": status})
}

func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	// Token deletion cascades: the ring lives inside the user document.
	return s.Repo.Delete(ctx, id)
}
