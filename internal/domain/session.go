package domain

import (
	"strings"
	"time"
)

// Role is the authorization level carried by a credential.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

// ParseRole normalizes the role spellings used by the API ("SUPER_ADMIN", "super-admin", ...).
func ParseRole(raw string) (Role, bool) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	norm = strings.TrimPrefix(norm, "role-")
	switch Role(norm) {
	case RoleCustomer, RoleStaff, RoleAdmin, RoleSuperAdmin:
		return Role(norm), true
	case "superadmin":
		return RoleSuperAdmin, true
	}
	return "", false
}

// User is the record the API returns for a user lookup.
type User struct {
	ID        ID     `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Session is the authenticated identity bound to one browser profile.
type Session struct {
	UserID     ID        `json:"userId"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Credential string    `json:"-"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Live reports whether the session credential is still valid at now.
func (s Session) Live(now time.Time) bool {
	return s.Credential != "" && now.Before(s.ExpiresAt)
}
