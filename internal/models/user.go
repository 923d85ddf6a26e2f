package models

import (
	"strings"
	"time"
)

// UserRole represents the roles a console account can hold.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
	RoleParent  UserRole = "parent"
)

// Roles lists every known role in display order.
var Roles = []UserRole{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// User is an account as returned by the backend.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      UserRole  `json:"role"`
	IsActive  bool      `json:"isActive"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// FullName joins the name parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserRef is the compact user reference embedded in other records.
type UserRef struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Email     string   `json:"email,omitempty"`
	Role      UserRole `json:"role,omitempty"`
}

// UserStats summarises accounts per role.
type UserStats struct {
	Total    int              `json:"total"`
	Active   int              `json:"active"`
	Inactive int              `json:"inactive"`
	ByRole   map[UserRole]int `json:"byRole"`
}

// ImportResult reports a bulk account import.
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
