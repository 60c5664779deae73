package access

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PagePermission is one cell of the role/page matrix.
type PagePermission struct {
	Page      string    `bson:"page" json:"page"`
	Category  string    `bson:"category,omitempty" json:"category,omitempty"`
	HasAccess bool      `bson:"has_access" json:"has_access"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TheaterRole is one role inside a theater's role document.
type TheaterRole struct {
	RoleID      string           `bson:"role_id" json:"role_id"`
	RoleName    string           `bson:"role_name" json:"role_name"`
	IsSystem    bool             `bson:"is_system" json:"is_system"`
	Permissions []PagePermission `bson:"permissions" json:"permissions"`
	CreatedAt   time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at" json:"updated_at"`
}

// RoleDocument is the per-theater role aggregate: exactly one document per
// theater, mutated under an optimistic version check.
type RoleDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TheaterID primitive.ObjectID `bson:"theater_id" json:"theater_id"`
	Roles     []TheaterRole      `bson:"roles" json:"roles"`
	Version   int64              `bson:"version" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// PageEntry is one page known to a theater's UI.
type PageEntry struct {
	Page     string `bson:"page" json:"page"`
	Category string `bson:"category,omitempty" json:"category,omitempty"`
	IsActive bool   `bson:"is_active" json:"is_active"`
}

// PageAccessDocument enumerates the pages of one theater. The theater field
// carries a unique index; entries never have an empty page identifier.
type PageAccessDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TheaterID      primitive.ObjectID `bson:"theater_id" json:"theater_id"`
	PageAccessList []PageEntry        `bson:"page_access_list" json:"page_access_list"`
	Version        int64              `bson:"version" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// findRole returns the first role matching roleID. First by insertion order
// wins when corrupt data carries duplicates.
func (d *RoleDocument) findRole(roleID string) *TheaterRole {
	for i := range d.Roles {
		if d.Roles[i].RoleID == roleID {
			return &d.Roles[i]
		}
	}
	return nil
}

// hasPage reports whether the page is registered in the theater's catalog.
func (d *PageAccessDocument) hasPage(page string) bool {
	for _, e := range d.PageAccessList {
		if e.Page == page {
			return true
		}
	}
	return false
}
