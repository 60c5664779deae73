package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"
	"github.com/aedentekgit/yqpaynow-sub013/pkg/utils"
)

type fakeUserRepo struct {
	users map[string]*models.User
	// findErr simulates a datastore failure on username lookups.
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	if _, ok := r.users[u.Username]; ok {
		return apperrors.ErrConflict
	}
	r.users[u.Username] = u
	return nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range r.users {
		if u.ID.Hex() == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) FindByToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	for _, u := range r.users {
		for _, t := range u.AuthTokens {
			if t.Value == token && t.ExpiresAt.After(now) {
				copied := *u
				return &copied, nil
			}
		}
	}
	return nil, apperrors.ErrInvalidToken
}

func (r *fakeUserRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id string, set bson.M) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id string) error             { return nil }

func (r *fakeUserRepo) byID(id primitive.ObjectID) *models.User {
	for _, u := range r.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (r *fakeUserRepo) AppendAuthToken(ctx context.Context, id primitive.ObjectID, token models.AuthToken) error {
	u := r.byID(id)
	if u == nil {
		return apperrors.ErrNotFound
	}
	u.AppendAuthToken(token)
	return nil
}

func (r *fakeUserRepo) RemoveAuthToken(ctx context.Context, id primitive.ObjectID, value string) error {
	u := r.byID(id)
	if u == nil {
		return apperrors.ErrNotFound
	}
	kept := u.AuthTokens[:0]
	for _, t := range u.AuthTokens {
		if t.Value != value {
			kept = append(kept, t)
		}
	}
	u.AuthTokens = kept
	return nil
}

func (r *fakeUserRepo) ResetLoginAttempts(ctx context.Context, id primitive.ObjectID, lastLogin time.Time) error {
	u := r.byID(id)
	if u == nil {
		return apperrors.ErrNotFound
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	return nil
}

func (r *fakeUserRepo) IncLoginAttempts(ctx context.Context, id primitive.ObjectID) (int, error) {
	u := r.byID(id)
	if u == nil {
		return 0, apperrors.ErrNotFound
	}
	u.LoginAttempts++
	return u.LoginAttempts, nil
}

func (r *fakeUserRepo) SetLoginAttempts(ctx context.Context, id primitive.ObjectID, attempts int) error {
	u := r.byID(id)
	if u == nil {
		return apperrors.ErrNotFound
	}
	u.LoginAttempts = attempts
	u.LockUntil = nil
	return nil
}

func (r *fakeUserRepo) SetLockUntil(ctx context.Context, id primitive.ObjectID, until time.Time) error {
	u := r.byID(id)
	if u == nil {
		return apperrors.ErrNotFound
	}
	u.LockUntil = &until
	return nil
}

func (r *fakeUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

func newTestService(repo *fakeUserRepo, clock *time.Time) *AuthServiceImpl {
	utils.SetSecret("test-secret")
	return &AuthServiceImpl{
		UserRepo: repo,
		Logger:   zap.NewNop(),
		now:      func() time.Time { return *clock },
	}
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Password: hash,
		Role:     models.RoleCustomer,
		Status:   models.StatusActive,
	}
	repo.users[username] = u
	return u
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)
	seedUser(t, repo, "alice", "correct horse")

	result, err := svc.Login(context.Background(), "Alice", "correct horse", "test-device")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	stored := repo.users["alice"]
	if len(stored.AuthTokens) != 1 {
		t.Fatalf("expected 1 stored token, got %d", len(stored.AuthTokens))
	}
	if stored.AuthTokens[0].ExpiresAt != clock.Add(models.TokenTTL) {
		t.Errorf("token expiry = %v, want %v", stored.AuthTokens[0].ExpiresAt, clock.Add(models.TokenTTL))
	}
}

func TestLoginUnknownUserIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	clock := time.Now()
	svc := newTestService(repo, &clock)
	seedUser(t, repo, "alice", "correct horse")

	_, unknownErr := svc.Login(context.Background(), "nobody", "whatever", "")
	_, wrongPassErr := svc.Login(context.Background(), "alice", "wrong", "")

	if !errors.Is(unknownErr, apperrors.ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want invalid credentials", unknownErr)
	}
	if !errors.Is(wrongPassErr, apperrors.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want invalid credentials", wrongPassErr)
	}
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	repo := newFakeUserRepo()
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)
	seedUser(t, repo, "alice", "correct horse")

	for i := 0; i < models.MaxLoginAttempts; i++ {
		if _, err := svc.Login(context.Background(), "alice", "wrong", ""); !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: got %v, want invalid credentials", i+1, err)
		}
	}

	// The cap is reached; even the right password is refused.
	if _, err := svc.Login(context.Background(), "alice", "correct horse", ""); !errors.Is(err, apperrors.ErrAccountLocked) {
		t.Fatalf("locked account: got %v, want account locked", err)
	}

	// Within the window the lock holds.
	clock = clock.Add(time.Hour)
	if _, err := svc.Login(context.Background(), "alice", "correct horse", ""); !errors.Is(err, apperrors.ErrAccountLocked) {
		t.Fatalf("mid-window: got %v, want account locked", err)
	}

	// Past the window the account opens again.
	clock = clock.Add(models.LockDuration)
	result, err := svc.Login(context.Background(), "alice", "correct horse", "")
	if err != nil {
		t.Fatalf("post-lock login: %v", err)
	}
	if result.User.LoginAttempts != 0 {
		t.Errorf("attempts not reset, got %d", result.User.LoginAttempts)
	}
}

func TestFailedLoginAfterExpiredLockResetsCounter(t *testing.T) {
	repo := newFakeUserRepo()
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)
	u := seedUser(t, repo, "alice", "correct horse")

	past := clock.Add(-time.Minute)
	u.LockUntil = &past
	u.LoginAttempts = models.MaxLoginAttempts

	if _, err := svc.Login(context.Background(), "alice", "wrong", ""); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("got %v, want invalid credentials", err)
	}
	if repo.users["alice"].LoginAttempts != 1 {
		t.Errorf("attempts = %d, want 1 (fresh count after expired lock)", repo.users["alice"].LoginAttempts)
	}
}

func TestLoginInactiveUserForbidden(t *testing.T) {
	repo := newFakeUserRepo()
	clock := time.Now()
	svc := newTestService(repo, &clock)
	u := seedUser(t, repo, "alice", "correct horse")
	u.Status = models.StatusInactive

	if _, err := svc.Login(context.Background(), "alice", "correct horse", ""); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestValidateTokenAndLogout(t *testing.T) {
	repo := newFakeUserRepo()
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)
	seedUser(t, repo, "alice", "correct horse")

	result, err := svc.Login(context.Background(), "alice", "correct horse", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	usr, err := svc.ValidateToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if usr.Username != "alice" {
		t.Errorf("validated user = %q", usr.Username)
	}

	if err := svc.Logout(context.Background(), usr, result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), result.Token); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Fatalf("revoked token: got %v, want invalid token", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	repo := newFakeUserRepo()
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)
	seedUser(t, repo, "alice", "correct horse")

	result, err := svc.Login(context.Background(), "alice", "correct horse", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	clock = clock.Add(models.TokenTTL + time.Minute)
	if _, err := svc.ValidateToken(context.Background(), result.Token); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Fatalf("expired token: got %v, want invalid token", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	repo := newFakeUserRepo()
	clock := time.Now()
	svc := newTestService(repo, &clock)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "short"}); err == nil {
		t.Error("short password accepted")
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "long enough", Role: models.RoleTheaterStaff}); err == nil {
		t.Error("theater role without theater accepted")
	}

	u, err := svc.Register(ctx, RegisterInput{Username: " Bob ", Password: "long enough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Username != "bob" {
		t.Errorf("username not normalized: %q", u.Username)
	}
	if u.Role != models.RoleCustomer {
		t.Errorf("default role = %q, want customer", u.Role)
	}

	if _, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "long enough"}); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("duplicate username: got %v, want conflict", err)
	}
}

func TestRegisterGrantsRolePermissions(t *testing.T) {
	repo := newFakeUserRepo()
	clock := time.Now()
	svc := newTestService(repo, &clock)
	ctx := context.Background()
	theaterID := primitive.NewObjectID().Hex()

	admin, err := svc.Register(ctx, RegisterInput{
		Username:  "manager",
		Password:  "long enough",
		Role:      models.RoleTheaterAdmin,
		TheaterID: theaterID,
	})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	// Theater admins must be able to run their theater without the
	// super_admin bypass.
	for _, check := range []struct{ resource, action string }{
		{"page-access", "update"},
		{"users", "update"},
		{"catalog", "create"},
		{"settings", "update"},
		{"stock", "update"},
		{"orders", "update"},
	} {
		if !admin.HasPermission(check.resource, check.action) {
			t.Errorf("theater_admin lacks %s:%s", check.resource, check.action)
		}
	}

	staff, err := svc.Register(ctx, RegisterInput{
		Username:  "counter",
		Password:  "long enough",
		Role:      models.RoleTheaterStaff,
		TheaterID: theaterID,
	})
	if err != nil {
		t.Fatalf("register staff: %v", err)
	}
	if !staff.HasPermission("stock", "update") {
		t.Error("theater_staff cannot update stock")
	}
	if staff.HasPermission("page-access", "update") {
		t.Error("theater_staff can edit the page matrix")
	}

	customer, err := svc.Register(ctx, RegisterInput{Username: "guest", Password: "long enough"})
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	if len(customer.Permissions) != 0 {
		t.Errorf("customer carries %d grants, want none", len(customer.Permissions))
	}
}

func TestLoginSurfacesTimeout(t *testing.T) {
	repo := newFakeUserRepo()
	repo.findErr = context.DeadlineExceeded
	clock := time.Now()
	svc := newTestService(repo, &clock)

	if _, err := svc.Login(context.Background(), "alice", "whatever", ""); !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("got %v, want timeout", err)
	}
}
