package domain

import "time"

// Role is the marketplace role of an identity. It never changes after creation.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	// RoleGCC is a Global Capability Center, the enterprise buyer side.
	RoleGCC Role = "GCC"
	// RoleStartup is a deep tech startup, the vendor side.
	RoleStartup Role = "STARTUP"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGCC, RoleStartup:
		return true
	}
	return false
}

// ApprovalStatus gates access to the role dashboards.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// validApprovalTransitions lists what an admin may move an identity to.
var validApprovalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:  {ApprovalApproved, ApprovalRejected},
	ApprovalRejected: {ApprovalApproved},
}

// CanTransitionTo reports whether an admin may move s to next.
func (s ApprovalStatus) CanTransitionTo(next ApprovalStatus) bool {
	for _, allowed := range validApprovalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Identity is an authenticated or registering actor. The JSON shape is the one
// persisted under the current_user storage key.
type Identity struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Role           Role           `json:"role"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	PasswordHash   string         `json:"-"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Approved reports whether the identity may use its role dashboard.
func (i Identity) Approved() bool {
	return i.ApprovalStatus == ApprovalApproved
}

// Equal compares two identities field by field, using time.Equal for timestamps.
// The password hash is not part of the comparison.
func (i Identity) Equal(o Identity) bool {
	return i.ID == o.ID &&
		i.Email == o.Email &&
		i.Name == o.Name &&
		i.Role == o.Role &&
		i.ApprovalStatus == o.ApprovalStatus &&
		i.CreatedAt.Equal(o.CreatedAt) &&
		i.UpdatedAt.Equal(o.UpdatedAt)
}

// RegistrationDraft is the payload of a self-registration.
type RegistrationDraft struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required"`
	Role     Role   `json:"role"     validate:"required,oneof=GCC STARTUP"`
	Password string `json:"password" validate:"required"`
}

// Credentials is a login attempt. A non-empty Role marks the attempt as a
// registration: an unknown email then creates a pending identity instead of failing.
type Credentials struct {
	Email    string
	Password string
	Name     string
	Role     Role
}

// IsRegistration reports whether the attempt carries a role field.
func (c Credentials) IsRegistration() bool {
	return c.Role != ""
}

// AuthResult is what a successful verification yields.
type AuthResult struct {
	Identity Identity `json:"user"`
	Token    string   `json:"token"`
}

// ProfileUpdate holds the self-editable fields. Nil means unchanged.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// IdentityFilter narrows identity listings. Zero values match everything.
type IdentityFilter struct {
	Role   Role
	Status ApprovalStatus
}

// Matches reports whether id passes the filter.
func (f IdentityFilter) Matches(id Identity) bool {
	if f.Role != "" && id.Role != f.Role {
		return false
	}
	if f.Status != "" && id.ApprovalStatus != f.Status {
		return false
	}
	return true
}

// Stats summarises the identity population for the admin dashboard.
type Stats struct {
	TotalUsers       int `json:"totalUsers"`
	PendingApprovals int `json:"pendingApprovals"`
	GCCCount         int `json:"gccCount"`
	StartupCount     int `json:"startupCount"`
}
