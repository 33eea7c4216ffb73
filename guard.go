package auth

import (
	"fmt"
	"strings"
)

// RoleTable is static route metadata: operation identifier to the set of
// roles that may call it. An absent entry and an empty set both mean
// "authenticated only"; the guard treats the two identically on purpose.
type RoleTable map[string][]Role

// Required returns the declared role set for an operation, or nil when
// the operation is unlisted.
func (t RoleTable) Required(operation string) []Role {
	if t == nil {
		return nil
	}
	return t[operation]
}

// CheckAccess decides whether an identity may perform an operation that
// requires one of requiredRoles. It is pure: no side effects, no
// mutation of the identity.
//
// An empty requirement allows any authenticated identity. A nil identity
// under a non-empty requirement is a wiring fault upstream, reported as
// ErrIdentityMissing rather than a normal denial.
func CheckAccess(identity *User, requiredRoles []Role) error {
	if len(requiredRoles) == 0 {
		return nil
	}

	if identity == nil {
		return ErrIdentityMissing
	}

	if identity.HasAnyRole(requiredRoles...) {
		return nil
	}

	return insufficientRole(identity, requiredRoles)
}

func insufficientRole(identity *User, requiredRoles []Role) error {
	clone := ErrInsufficientRole.Clone()
	if clone == nil {
		return ErrInsufficientRole
	}
	clone.Message = fmt.Sprintf(
		"user %s needs a valid role: [%s]",
		identity.FullName,
		strings.Join(requiredRoles, ", "),
	)
	clone.Source = ErrInsufficientRole
	return clone.WithMetadata(map[string]any{
		"user":           identity.FullName,
		"required_roles": requiredRoles,
	})
}
