package models

import "strings"

type Role string

const (
	RoleWaiter  Role = "WAITER"
	RoleKitchen Role = "KITCHEN"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole upper-cases known roles; anything else is kept as sent by the server.
func ParseRole(s string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if r.IsKnown() {
		return r
	}
	return Role(strings.TrimSpace(s))
}

func (r Role) IsKnown() bool {
	return r == RoleWaiter || r == RoleKitchen || r == RoleAdmin
}

// User is the profile returned by the getUser lookup.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	BusinessID string `json:"businessId"`
	Name       string `json:"name,omitempty"`
}

// Session is who is using the terminal and in what role.
type Session struct {
	UserID     string `json:"id"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	BusinessID string `json:"businessId"`
}

// Valid reports whether every field is populated. Partial sessions are discarded.
func (s *Session) Valid() bool {
	return s != nil && s.UserID != "" && s.Email != "" && s.Role != "" && s.BusinessID != ""
}

func SessionFromUser(u User) *Session {
	return &Session{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       ParseRole(u.Role),
		BusinessID: u.BusinessID,
	}
}
