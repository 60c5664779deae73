package access

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxCASRetries bounds optimistic-write retries before surfacing Contention.
const maxCASRetries = 3

// DefaultPages seeds a new theater's page catalog.
var DefaultPages = []PageEntry{
	{Page: "Dashboard", Category: "general", IsActive: true},
	{Page: "TheaterOrderInterface", Category: "orders", IsActive: true},
	{Page: "OrderHistory", Category: "orders", IsActive: true},
	{Page: "ProductCatalog", Category: "catalog", IsActive: true},
	{Page: "StockHistory", Category: "inventory", IsActive: true},
	{Page: "Offers", Category: "catalog", IsActive: true},
	{Page: "Settings", Category: "admin", IsActive: true},
	{Page: "UserManagement", Category: "admin", IsActive: true},
	{Page: "RoleManagement", Category: "admin", IsActive: true},
}

type AccessService interface {
	Provision(ctx context.Context, theaterID primitive.ObjectID, now time.Time) error
	Deprovision(ctx context.Context, theaterID primitive.ObjectID) error

	Check(ctx context.Context, theaterID, roleID, page string) (bool, error)
	Grant(ctx context.Context, theaterID, roleID, page string, value bool) error
	RegisterPage(ctx context.Context, theaterID, page, category string) error
	RemovePage(ctx context.Context, theaterID, page string) error

	CreateRole(ctx context.Context, theaterID, roleName string) (*TheaterRole, error)
	DeleteRole(ctx context.Context, theaterID, roleID string) error

	Matrix(ctx context.Context, theaterID string) (*PageAccessDocument, *RoleDocument, error)
	ListAccessible(ctx context.Context, usr *models.User) ([]PageEntry, error)
}

type AccessServiceImpl struct {
	RoleRepo       RoleRepository
	PageAccessRepo PageAccessRepository
	Logger         *zap.Logger

	now func() time.Time
}

func NewAccessService(roleRepo RoleRepository, pageRepo PageAccessRepository, logger *zap.Logger) AccessService {
	return &AccessServiceImpl{
		RoleRepo:       roleRepo,
		PageAccessRepo: pageRepo,
		Logger:         logger,
		now:            time.Now,
	}
}

// Provision creates the two per-theater documents: the page catalog seeded
// with the default pages, and the role aggregate with the built-in admin and
// staff roles. The admin role starts with every page granted.
func (s *AccessServiceImpl) Provision(ctx context.Context, theaterID primitive.ObjectID, now time.Time) error {
	pages := make([]PageEntry, len(DefaultPages))
	copy(pages, DefaultPages)

	pageDoc := &PageAccessDocument{
		ID:             primitive.NewObjectID(),
		TheaterID:      theaterID,
		PageAccessList: pages,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.PageAccessRepo.Create(ctx, pageDoc); err != nil {
		return err
	}

	adminRole := newTheaterRole("admin", pages, true, now)
	for i := range adminRole.Permissions {
		adminRole.Permissions[i].HasAccess = true
	}
	staffRole := newTheaterRole("staff", pages, true, now)

	roleDoc := &RoleDocument{
		ID:        primitive.NewObjectID(),
		TheaterID: theaterID,
		Roles:     []TheaterRole{adminRole, staffRole},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.RoleRepo.Create(ctx, roleDoc)
}

func (s *AccessServiceImpl) Deprovision(ctx context.Context, theaterID primitive.ObjectID) error {
	if err := s.RoleRepo.DeleteByTheater(ctx, theaterID); err != nil {
		return err
	}
	return s.PageAccessRepo.DeleteByTheater(ctx, theaterID)
}

// Check answers the (theater, role, page) question. Unknown theater, role or
// page fails closed with no error; the caller turns false into Forbidden.
func (s *AccessServiceImpl) Check(ctx context.Context, theaterID, roleID, page string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(theaterID)
	if err != nil {
		return false, nil
	}

	doc, err := s.RoleRepo.GetByTheater(ctx, oid)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	role := doc.findRole(roleID)
	if role == nil {
		return false, nil
	}

	found := false
	granted := false
	for _, p := range role.Permissions {
		if p.Page != page {
			continue
		}
		if found {
			// Corrupt data: duplicate entries for one page. First wins.
			s.Logger.Warn("duplicate page permission entry",
				zap.String("theater_id", theaterID),
				zap.String("role_id", roleID),
				zap.String("page", page),
			)
			continue
		}
		found = true
		granted = p.HasAccess
	}
	return granted, nil
}

func (s *AccessServiceImpl) Grant(ctx context.Context, theaterID, roleID, page string, value bool) error {
	oid, err := primitive.ObjectIDFromHex(theaterID)
	if err != nil {
		return apperrors.Validation("invalid theater id")
	}

	doc, err := s.RoleRepo.GetByTheater(ctx, oid)
	if err != nil {
		return err
	}

	role := doc.findRole(roleID)
	if role == nil {
		return apperrors.ErrUnknownRole
	}

	known := false
	for _, p := range role.Permissions {
		if p.Page == page {
			known = true
			break
		}
	}
	if !known {
		return apperrors.ErrUnknownPage
	}

	// Repeating the same grant is a no-op apart from updated_at.
	return s.RoleRepo.SetPermission(ctx, oid, roleID, page, value, s.now())
}

// RegisterPage adds the page to the theater's catalog and propagates a
// has_access=false entry into every role that does not already carry it.
func (s *AccessServiceImpl) RegisterPage(ctx context.Context, theaterID, page, category string) error {
	page = strings.TrimSpace(page)
	if page == "" {
		return apperrors.Validation("page identifier must not be empty")
	}
	oid, err := primitive.ObjectIDFromHex(theaterID)
	if err != nil {
		return apperrors.Validation("invalid theater id")
	}

	now := s.now()

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		pageDoc, err := s.PageAccessRepo.GetByTheater(ctx, oid)
		if err != nil {
			return err
		}
		if !pageDoc.hasPage(page) {
			pageDoc.PageAccessList = append(pageDoc.PageAccessList, PageEntry{
				Page:     page,
				Category: category,
				IsActive: true,
			})
			pageDoc.UpdatedAt = now
			ok, err := s.PageAccessRepo.ReplaceVersioned(ctx, pageDoc)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}
		return s.propagatePage(ctx, oid, page, category, now)
	}
	return apperrors.ErrContention
}

func (s *AccessServiceImpl) propagatePage(ctx context.Context, theaterID primitive.ObjectID, page, category string, now time.Time) error {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		roleDoc, err := s.RoleRepo.GetByTheater(ctx, theaterID)
		if err != nil {
			return err
		}

		changed := false
		for i := range roleDoc.Roles {
			exists := false
			for _, p := range roleDoc.Roles[i].Permissions {
				if p.Page == page {
					exists = true
					break
				}
			}
			if !exists {
				roleDoc.Roles[i].Permissions = append(roleDoc.Roles[i].Permissions, PagePermission{
					Page:      page,
					Category:  category,
					HasAccess: false,
					UpdatedAt: now,
				})
				roleDoc.Roles[i].UpdatedAt = now
				changed = true
			}
		}
		if !changed {
			return nil
		}

		roleDoc.UpdatedAt = now
		ok, err := s.RoleRepo.ReplaceVersioned(ctx, roleDoc)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return apperrors.ErrContention
}

// RemovePage deletes the page from the catalog and strips the matching
// permission entry from every role.
func (s *AccessServiceImpl) RemovePage(ctx context.Context, theaterID, page string) error {
	oid, err := primitive.ObjectIDFromHex(theaterID)
	if err != nil {
		return apperrors.Validation("invalid theater id")
	}
	now := s.now()

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		pageDoc, err := s.PageAccessRepo.GetByTheater(ctx, oid)
		if err != nil {
			return err
		}
		if !pageDoc.hasPage(page) {
			return apperrors.ErrUnknownPage
		}

		kept := pageDoc.PageAccessList[:0]
		for _, e := range pageDoc.PageAccessList {
			if e.Page != page {
				kept = append(kept, e)
			}
		}
		pageDoc.PageAccessList = kept
		pageDoc.UpdatedAt = now

		ok, err := s.PageAccessRepo.ReplaceVersioned(ctx, pageDoc)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		return s.stripPage(ctx, oid, page, now)
	}
	return apperrors.ErrContention
}

func (s *AccessServiceImpl) stripPage(ctx context.Context, theaterID primitive.ObjectID, page string, now time.Time) error {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		roleDoc, err := s.RoleRepo.GetByTheater(ctx, theaterID)
		if err != nil {
			return err
		}

		changed := false
		for i := range roleDoc.Roles {
			kept := roleDoc.Roles[i].Permissions[:0]
			roleChanged := false
			for _, p := range roleDoc.Roles[i].Permissions {
				if p.Page != page {
					kept = append(kept, p)
				} else {
					roleChanged = true
				}
			}
			roleDoc.Roles[i].Permissions = kept
			if roleChanged {
				roleDoc.Roles[i].UpdatedAt = now
				changed = true
			}
		}
		if !changed {
			return nil
		}

		roleDoc.UpdatedAt = now
		ok, err := s.RoleRepo.ReplaceVersioned(ctx, roleDoc)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return apperrors.ErrContention
}

// CreateRole adds a role to the theater, seeded with every catalog page
// denied. (theaterId, roleName) is unique.
func (s *AccessServiceImpl) CreateRole(ctx context.Context, theaterID, roleName string) (*TheaterRole, error) {
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return nil, apperrors.Validation("role name must not be empty")
	}
	oid, err := primitive.ObjectIDFromHex(theaterID)
	if err != nil {
		return nil, apperrors.Validation("invalid theater id")
	}

	pageDoc, err := s.PageAccessRepo.GetByTheater(ctx, oid)
	if err != nil {
		return nil, err
	}
	now := s.now()
	role := newTheaterRole(roleName, pageDoc.PageAccessList, false, now)

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		roleDoc, err := s.RoleRepo.GetByTheater(ctx, oid)
		if err != nil {
			return nil, err
		}
		for _, existing := range roleDoc.Roles {
			if existing.RoleName == roleName {
				return nil, apperrors.ErrConflict
			}
		}
		roleDoc.Roles = append(roleDoc.Roles, role)
		roleDoc.UpdatedAt = now

		ok, err := s.RoleRepo.ReplaceVersioned(ctx, roleDoc)
		if err != nil {
			return nil, err
		}
		if ok {
			return &role, nil
		}
	}
	return nil, apperrors.ErrContention
}

func (s *AccessServiceImpl) DeleteRole(ctx context.Context, theaterID, roleID string) error {
	oid, err := primitive.ObjectIDFromHex(theaterID)
	if err != nil {
		return apperrors.Validation("invalid theater id")
	}
	now := s.now()

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		roleDoc, err := s.RoleRepo.GetByTheater(ctx, oid)
		if err != nil {
			return err
		}

		idx := -1
		for i, r := range roleDoc.Roles {
			if r.RoleID == roleID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperrors.ErrUnknownRole
		}
		if roleDoc.Roles[idx].IsSystem {
			return apperrors.ErrForbidden
		}

		roleDoc.Roles = append(roleDoc.Roles[:idx], roleDoc.Roles[idx+1:]...)
		roleDoc.UpdatedAt = now

		ok, err := s.RoleRepo.ReplaceVersioned(ctx, roleDoc)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return apperrors.ErrContention
}

func (s *AccessServiceImpl) Matrix(ctx context.Context, theaterID string) (*PageAccessDocument, *RoleDocument, error) {
	oid, err := primitive.ObjectIDFromHex(theaterID)
	if err != nil {
		return nil, nil, apperrors.Validation("invalid theater id")
	}
	pageDoc, err := s.PageAccessRepo.GetByTheater(ctx, oid)
	if err != nil {
		return nil, nil, err
	}
	roleDoc, err := s.RoleRepo.GetByTheater(ctx, oid)
	if err != nil {
		return nil, nil, err
	}
	return pageDoc, roleDoc, nil
}

// ListAccessible returns the pages the user may open. super_admin sees every
// page the theater knows; everyone else the granted subset of their role.
func (s *AccessServiceImpl) ListAccessible(ctx context.Context, usr *models.User) ([]PageEntry, error) {
	if usr.TheaterID == nil {
		if usr.Role == models.RoleSuperAdmin {
			return nil, apperrors.Validation("theater_id query parameter required for super admin")
		}
		return nil, apperrors.ErrForbidden
	}

	pageDoc, err := s.PageAccessRepo.GetByTheater(ctx, *usr.TheaterID)
	if err != nil {
		return nil, err
	}

	if usr.Role == models.RoleSuperAdmin {
		return pageDoc.PageAccessList, nil
	}

	roleDoc, err := s.RoleRepo.GetByTheater(ctx, *usr.TheaterID)
	if err != nil {
		return nil, err
	}
	role := roleDoc.findRole(usr.RoleID)
	if role == nil {
		return []PageEntry{}, nil
	}

	granted := make(map[string]bool, len(role.Permissions))
	for _, p := range role.Permissions {
		if _, seen := granted[p.Page]; !seen {
			granted[p.Page] = p.HasAccess
		}
	}

	var out []PageEntry
	for _, e := range pageDoc.PageAccessList {
		if e.IsActive && granted[e.Page] {
			out = append(out, e)
		}
	}
	if out == nil {
		out = []PageEntry{}
	}
	return out, nil
}

func newTheaterRole(name string, pages []PageEntry, system bool, now time.Time) TheaterRole {
	perms := make([]PagePermission, 0, len(pages))
	for _, p := range pages {
		perms = append(perms, PagePermission{
			Page:      p.Page,
			Category:  p.Category,
			HasAccess: false,
			UpdatedAt: now,
		})
	}
	return TheaterRole{
		RoleID:      primitive.NewObjectID().Hex(),
		RoleName:    name,
		IsSystem:    system,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
