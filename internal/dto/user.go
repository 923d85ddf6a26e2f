package dto

import (
	"net/url"

	"github.com/noah-isme/sma-adp-console/internal/models"
)

// UserFilter narrows the users list.
type UserFilter struct {
	Role     models.UserRole `json:"role,omitempty"`
	Search   string          `json:"search,omitempty"`
	IsActive *bool           `json:"isActive,omitempty"`
	PageQuery
}

// Values encodes the filter as query parameters.
func (f UserFilter) Values() url.Values {
	v := url.Values{}
	setString(v, "role", string(f.Role))
	setString(v, "search", f.Search)
	setBool(v, "isActive", f.IsActive)
	f.PageQuery.apply(v)
	return v
}

// CreateUserRequest creates an admin or parent account.
type CreateUserRequest struct {
	FirstName string          `json:"firstName" validate:"required"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=6"`
	Phone     string          `json:"phone,omitempty"`
	Role      models.UserRole `json:"role" validate:"required,oneof=admin teacher student parent"`
	ChildIDs  []string        `json:"children,omitempty"`
}

// UpdateUserRequest changes account details; empty fields are left unchanged.
type UpdateUserRequest struct {
	FirstName string          `json:"firstName,omitempty"`
	LastName  string          `json:"lastName,omitempty"`
	Email     string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string          `json:"phone,omitempty"`
	Role      models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin teacher student parent"`
}

// SearchKeystroke is one keystroke of a debounced users search.
type SearchKeystroke struct {
	Term string `json:"term"`
}
