package models

import "time"

// Permission is one capability in the catalog.
type Permission struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Module      string `json:"module"`
	Description string `json:"description,omitempty"`
}

// PermissionGroup is the catalog grouped by module.
type PermissionGroup struct {
	Module      string       `json:"module"`
	Permissions []Permission `json:"permissions"`
}

// Role is a named set of permission keys.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	IsSystem    bool      `json:"isSystem,omitempty"`
	UserCount   int       `json:"userCount,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Grants reports whether the role carries the permission key.
func (r Role) Grants(key string) bool {
	for _, p := range r.Permissions {
		if p == key {
			return true
		}
	}
	return false
}
