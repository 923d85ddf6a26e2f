package dto

// RoleRequest creates or replaces a role; the permission set is replaced wholesale.
type RoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}
