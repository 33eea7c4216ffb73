package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is a string tag granting access to role-gated operations. A user
// may hold several.
type Role = string

const (
	// RoleUser is the base role every account starts with
	RoleUser Role = "user"
	// RoleAdmin grants access to admin-gated routes
	RoleAdmin Role = "admin"
	// RoleSuperUser grants access to elevated admin routes
	RoleSuperUser Role = "super-user"
)

// ValidRoles lists every role tag the guard recognizes.
func ValidRoles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperUser}
}

// User is the identity record. PasswordHash never serializes to callers.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	FullName      string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	IsActive      bool       `bun:"is_active" json:"is_active"`
	Roles         []Role     `bun:"roles,notnull" json:"roles,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

// BeforeAppendModel normalizes the email on every insert and update so the
// unique constraint and lookups always see the canonical form.
func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		u.Email = NormalizeEmail(u.Email)
		now := time.Now()
		if u.CreatedAt == nil {
			u.CreatedAt = &now
		}
		if u.UpdatedAt == nil {
			u.UpdatedAt = &now
		}
	case *bun.UpdateQuery:
		if u.Email != "" {
			u.Email = NormalizeEmail(u.Email)
		}
		now := time.Now()
		u.UpdatedAt = &now
	}
	return nil
}

// HasAnyRole reports whether the user holds at least one of the given
// role tags.
func (u *User) HasAnyRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, required := range roles {
		for _, held := range u.Roles {
			if held == required {
				return true
			}
		}
	}
	return false
}

// Sanitized returns a copy safe to hand to callers: same record with the
// password hash stripped.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// NormalizeEmail lowercases and trims an email address. Applied
// identically on insert, update, and lookup paths.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
