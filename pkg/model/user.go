package model

// Role represents the role of a user within their organization.
type Role string

const (
	// RoleAdmin has full control: uploads plus user management.
	RoleAdmin Role = "admin"
	// RoleEditor can upload videos but not manage users.
	RoleEditor Role = "editor"
	// RoleViewer has read-only access to the video library.
	RoleViewer Role = "viewer"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// CanUpload reports whether the role may upload videos.
func (r Role) CanUpload() bool {
	return r == RoleAdmin || r == RoleEditor
}

// UserProfile is the identity returned by the platform at login.
// It is immutable on the console side; a fresh login replaces it wholesale.
type UserProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organizationId"`
}

// IsAdmin reports whether the profile has the admin role.
func (p *UserProfile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// OrgUser is a member of the organization as listed by the admin endpoints.
// The platform keys these records by "_id" rather than "id".
type OrgUser struct {
	ID             string `json:"_id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organizationId"`
}

// NewOrgUser holds the fields posted when an admin provisions an account.
type NewOrgUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Registration holds the self-service sign-up fields.
type Registration struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organizationId"`
}
