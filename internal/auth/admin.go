package auth

import (
	"errors"
	"time"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

var ErrAdminNotFound = errors.New("admin not found")

// Admin is a provisioned admin identity. Only login touches it at runtime (last login time).
type Admin struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Active       bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
