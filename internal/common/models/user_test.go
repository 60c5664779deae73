package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAppendAuthTokenCapsRing(t *testing.T) {
	u := &User{}
	for i := 0; i < MaxAuthTokens+3; i++ {
		u.AppendAuthToken(AuthToken{Value: fmt.Sprintf("token-%d", i)})
	}
	if len(u.AuthTokens) != MaxAuthTokens {
		t.Fatalf("ring size = %d, want %d", len(u.AuthTokens), MaxAuthTokens)
	}
	if u.AuthTokens[0].Value != "token-3" {
		t.Errorf("oldest kept = %q, want token-3", u.AuthTokens[0].Value)
	}
	if u.AuthTokens[MaxAuthTokens-1].Value != fmt.Sprintf("token-%d", MaxAuthTokens+2) {
		t.Errorf("newest = %q", u.AuthTokens[MaxAuthTokens-1].Value)
	}
}

func TestIsLocked(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		lockUntil *time.Time
		want      bool
	}{
		{"no lock", nil, false},
		{"open window", &future, true},
		{"expired window", &past, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{LockUntil: tt.lockUntil}
			if got := u.IsLocked(now); got != tt.want {
				t.Errorf("IsLocked = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasPermission(t *testing.T) {
	u := &User{
		Role: RoleTheaterStaff,
		Permissions: []Permission{
			{Resource: "orders", Actions: []string{"read", "update"}},
		},
	}
	if !u.HasPermission("orders", "read") {
		t.Error("granted action denied")
	}
	if u.HasPermission("orders", "delete") {
		t.Error("ungranted action allowed")
	}
	if u.HasPermission("stock", "read") {
		t.Error("ungranted resource allowed")
	}

	admin := &User{Role: RoleSuperAdmin}
	if !admin.HasPermission("anything", "at-all") {
		t.Error("super admin should bypass the grant list")
	}
}

func TestDefaultPermissions(t *testing.T) {
	admin := &User{Role: RoleTheaterAdmin, Permissions: DefaultPermissions(RoleTheaterAdmin)}
	for _, check := range []struct{ resource, action string }{
		{"page-access", "update"},
		{"users", "read"},
		{"catalog", "delete"},
		{"offers", "create"},
		{"settings", "update"},
		{"stock", "update"},
		{"orders", "update"},
		{"theaters", "read"},
	} {
		if !admin.HasPermission(check.resource, check.action) {
			t.Errorf("theater_admin bundle lacks %s:%s", check.resource, check.action)
		}
	}
	if admin.HasPermission("theaters", "delete") {
		t.Error("theater_admin can delete theaters")
	}

	staff := &User{Role: RoleTheaterStaff, Permissions: DefaultPermissions(RoleTheaterStaff)}
	if !staff.HasPermission("orders", "update") {
		t.Error("staff bundle lacks orders:update")
	}
	if staff.HasPermission("users", "read") {
		t.Error("staff can list users")
	}
	if staff.HasPermission("catalog", "create") {
		t.Error("staff can edit the catalog")
	}

	if DefaultPermissions(RoleCustomer) != nil {
		t.Error("customer bundle should be empty")
	}
	if DefaultPermissions(RoleSuperAdmin) != nil {
		t.Error("super_admin carries no list")
	}
}

func TestSensitiveFieldsNeverSerialize(t *testing.T) {
	lock := time.Now()
	u := &User{
		Username:      "alice",
		Password:      "hash-material",
		LoginAttempts: 3,
		LockUntil:     &lock,
		AuthTokens:    []AuthToken{{Value: "secret-token"}},
	}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(b)
	for _, leak := range []string{"hash-material", "secret-token", "login_attempts", "lock_until"} {
		if strings.Contains(body, leak) {
			t.Errorf("response leaks %q: %s", leak, body)
		}
	}
}
