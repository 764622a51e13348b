package metadata

// Roles recognized by the web template service.
const (
	RoleAdmin          = "admin"
	RoleWebsiteManager = "website_manager"
)

// UserContext represents the authenticated user, set by auth middleware.
type UserContext struct {
	ID    string   `json:"id"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles"`
}

// HasRole checks whether the user has a specific role.
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user has at least one of roles.
func (u *UserContext) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// IsAdmin checks whether the user has the admin role.
func (u *UserContext) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// CanManageTemplates reports whether the user may create, change or delete
// web templates.
func (u *UserContext) CanManageTemplates() bool {
	return u.HasAnyRole(RoleAdmin, RoleWebsiteManager)
}
