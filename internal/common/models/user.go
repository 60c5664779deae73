package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoleKind string

const (
	RoleSuperAdmin   RoleKind = "super_admin"
	RoleTheaterAdmin RoleKind = "theater_admin"
	RoleTheaterStaff RoleKind = "theater_staff"
	RoleCustomer     RoleKind = "customer"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// MaxAuthTokens bounds the per-user session ring; oldest entries are evicted.
const MaxAuthTokens = 5

// MaxLoginAttempts failed logins lock the account for LockDuration.
const (
	MaxLoginAttempts = 5
	LockDuration     = 2 * time.Hour
	TokenTTL         = 24 * time.Hour
)

// AuthToken is one entry of the bearer-token ring. Values are stored verbatim;
// they are opaque credentials, never derived from stored secrets.
type AuthToken struct {
	Value      string    `bson:"value" json:"-"`
	DeviceInfo string    `bson:"device_info,omitempty" json:"device_info,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
}

// Permission is a user-level capability grant, distinct from the per-theater
// page matrix: it scopes admin resources like "users" or "settings".
type Permission struct {
	Resource string   `bson:"resource" json:"resource"`
	Actions  []string `bson:"actions" json:"actions"`
}

// DefaultPermissions is the grant bundle a role starts with. Register and
// role changes apply it; admins may edit the list afterwards. super_admin
// bypasses the list entirely and carries none.
func DefaultPermissions(role RoleKind) []Permission {
	switch role {
	case RoleTheaterAdmin:
		return []Permission{
			{Resource: "page-access", Actions: []string{"update"}},
			{Resource: "users", Actions: []string{"read", "update", "delete"}},
			{Resource: "catalog", Actions: []string{"read", "create", "update", "delete"}},
			{Resource: "offers", Actions: []string{"read", "create", "update", "delete"}},
			{Resource: "settings", Actions: []string{"read", "update"}},
			{Resource: "stock", Actions: []string{"read", "update"}},
			{Resource: "orders", Actions: []string{"read", "update"}},
			{Resource: "theaters", Actions: []string{"read"}},
		}
	case RoleTheaterStaff:
		return []Permission{
			{Resource: "catalog", Actions: []string{"read"}},
			{Resource: "offers", Actions: []string{"read"}},
			{Resource: "settings", Actions: []string{"read"}},
			{Resource: "stock", Actions: []string{"read", "update"}},
			{Resource: "orders", Actions: []string{"read", "update"}},
		}
	}
	return nil
}

// User is the identity record. Credential material, the token ring and the
// lockout counters carry `json:"-"` so they are stripped on every API response.
type User struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Username      string              `bson:"username" json:"username"`
	Email         string              `bson:"email" json:"email"`
	Password      string              `bson:"password" json:"-"`
	Phone         string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Role          RoleKind            `bson:"role" json:"role"`
	RoleID        string              `bson:"role_id,omitempty" json:"role_id,omitempty"`
	TheaterID     *primitive.ObjectID `bson:"theater_id,omitempty" json:"theater_id,omitempty"`
	Permissions   []Permission        `bson:"permissions,omitempty" json:"permissions,omitempty"`
	Status        string              `bson:"status" json:"status"`
	LoginAttempts int                 `bson:"login_attempts" json:"-"`
	LockUntil     *time.Time          `bson:"lock_until,omitempty" json:"-"`
	AuthTokens    []AuthToken         `bson:"auth_tokens,omitempty" json:"-"`
	LastLogin     *time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

// RequiresTheater reports whether the role must carry a theater binding.
func (r RoleKind) RequiresTheater() bool {
	return r == RoleTheaterAdmin || r == RoleTheaterStaff
}

// IsLocked reports whether the lockout window is still open.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// HasPermission checks the user-level grant list. super_admin always passes.
func (u *User) HasPermission(resource, action string) bool {
	if u.Role == RoleSuperAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p.Resource != resource {
			continue
		}
		for _, a := range p.Actions {
			if a == action {
				return true
			}
		}
	}
	return false
}

// AppendAuthToken appends and truncates the ring to its most recent entries.
// The repository mirrors this with $push/$each/$slice so the cap also holds
// under concurrent logins.
func (u *User) AppendAuthToken(token AuthToken) {
	u.AuthTokens = append(u.AuthTokens, token)
	if len(u.AuthTokens) > MaxAuthTokens {
		u.AuthTokens = u.AuthTokens[len(u.AuthTokens)-MaxAuthTokens:]
	}
}
