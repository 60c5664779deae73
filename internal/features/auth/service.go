package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/user"
	"github.com/aedentekgit/yqpaynow-sub013/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// opTimeout is the hard deadline on a login attempt; blowing it surfaces
// Timeout to the caller.
const opTimeout = 30 * time.Second

type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	Phone     string
	Role      models.RoleKind
	RoleID    string
	TheaterID string
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password, deviceInfo string) (*LoginResult, error)
	ValidateToken(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, usr *models.User, token string) error
}

type AuthServiceImpl struct {
	UserRepo user.UserRepository
	Logger   *zap.Logger

	// now is injectable so lockout windows can be tested on a simulated clock.
	now func() time.Time
}

func NewAuthService(userRepo user.UserRepository, cfg *config.Config, logger *zap.Logger) AuthService {
	utils.SetSecret(cfg.JWTSecret)
	return &AuthServiceImpl{
		UserRepo: userRepo,
		Logger:   logger,
		now:      time.Now,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" {
		return nil, apperrors.Validation("username is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}

	switch input.Role {
	case models.RoleSuperAdmin, models.RoleTheaterAdmin, models.RoleTheaterStaff, models.RoleCustomer:
	case "":
		input.Role = models.RoleCustomer
	default:
		return nil, apperrors.Validation("unknown role")
	}

	var theaterID *primitive.ObjectID
	if input.Role.RequiresTheater() {
		if input.TheaterID == "" {
			return nil, apperrors.Validation("theater_id is required for theater roles")
		}
		oid, err := primitive.ObjectIDFromHex(input.TheaterID)
		if err != nil {
			return nil, apperrors.Validation("invalid theater id")
		}
		theaterID = &oid
	}

	if _, err := s.UserRepo.FindByUsername(ctx, username); err == nil {
		return nil, apperrors.ErrConflict
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	newUser := &models.User{
		ID:          primitive.NewObjectID(),
		Username:    username,
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Password:    hash,
		Phone:       input.Phone,
		Role:        input.Role,
		RoleID:      input.RoleID,
		TheaterID:   theaterID,
		Permissions: models.DefaultPermissions(input.Role),
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.UserRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	s.Logger.Info("user registered",
		zap.String("username", username),
		zap.String("role", string(input.Role)),
	)

	return newUser, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password, deviceInfo string) (*LoginResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := s.login(ctx, username, password, deviceInfo)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, apperrors.ErrTimeout
	}
	return result, err
}

func (s *AuthServiceImpl) login(ctx context.Context, username, password, deviceInfo string) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	usr, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Unknown username and wrong password are indistinguishable.
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()

	if usr.IsLocked(now) {
		// Remaining lock time is not revealed.
		return nil, apperrors.ErrAccountLocked
	}

	if usr.Status != models.StatusActive {
		return nil, apperrors.ErrForbidden
	}

	if !utils.CheckPassword(usr.Password, password) {
		if err := s.registerFailedLogin(ctx, usr, now); err != nil {
			s.Logger.Error("failed-login bookkeeping", zap.Error(err))
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.UserRepo.ResetLoginAttempts(ctx, usr.ID, now); err != nil {
		return nil, apperrors.Internal(err)
	}

	theaterID := ""
	if usr.TheaterID != nil {
		theaterID = usr.TheaterID.Hex()
	}

	expiresAt := now.Add(models.TokenTTL)
	token, err := utils.GenerateToken(usr.ID, theaterID, string(usr.Role), expiresAt)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	authToken := models.AuthToken{
		Value:      token,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
	}
	if err := s.UserRepo.AppendAuthToken(ctx, usr.ID, authToken); err != nil {
		return nil, apperrors.Internal(err)
	}

	usr.LoginAttempts = 0
	usr.LockUntil = nil
	usr.AppendAuthToken(authToken)

	return &LoginResult{Token: token, User: usr}, nil
}

// registerFailedLogin advances the attempt counter. An expired prior lock
// resets the counter to 1 instead of incrementing; hitting the cap while the
// account is not already locked opens a new lock window.
func (s *AuthServiceImpl) registerFailedLogin(ctx context.Context, usr *models.User, now time.Time) error {
	if usr.LockUntil != nil && !usr.LockUntil.After(now) {
		return s.UserRepo.SetLoginAttempts(ctx, usr.ID, 1)
	}

	attempts, err := s.UserRepo.IncLoginAttempts(ctx, usr.ID)
	if err != nil {
		return err
	}

	if attempts >= models.MaxLoginAttempts && !usr.IsLocked(now) {
		s.Logger.Warn("account locked after repeated failures",
			zap.String("username", usr.Username),
		)
		return s.UserRepo.SetLockUntil(ctx, usr.ID, now.Add(models.LockDuration))
	}
	return nil
}

func (s *AuthServiceImpl) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	usr, err := s.UserRepo.FindByToken(ctx, token, s.now())
	if err != nil {
		return nil, err
	}
	if usr.Status != models.StatusActive {
		return nil, apperrors.ErrForbidden
	}
	return usr, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, usr *models.User, token string) error {
	return s.UserRepo.RemoveAuthToken(ctx, usr.ID, token)
}
