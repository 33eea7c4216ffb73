package auth_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/tiendago/go-shop-auth"
)

func TestCheckAccess(t *testing.T) {
	member := &auth.User{FullName: "Test User", Roles: []auth.Role{auth.RoleUser}}
	admin := &auth.User{FullName: "Admin User", Roles: []auth.Role{auth.RoleUser, auth.RoleAdmin}}

	tests := []struct {
		name     string
		identity *auth.User
		required []auth.Role
		wantErr  error
	}{
		{
			name:     "nil requirement allows any authenticated identity",
			identity: member,
			required: nil,
		},
		{
			name:     "empty requirement allows any authenticated identity",
			identity: member,
			required: []auth.Role{},
		},
		{
			name:     "missing identity under a requirement is a wiring fault",
			identity: nil,
			required: []auth.Role{auth.RoleAdmin},
			wantErr:  auth.ErrIdentityMissing,
		},
		{
			name:     "overlapping roles allow",
			identity: admin,
			required: []auth.Role{auth.RoleAdmin, auth.RoleSuperUser},
		},
		{
			name:     "disjoint roles deny",
			identity: member,
			required: []auth.Role{auth.RoleAdmin, auth.RoleSuperUser},
			wantErr:  auth.ErrInsufficientRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.CheckAccess(tt.identity, tt.required)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, goerrors.Is(err, tt.wantErr))
		})
	}
}

func TestCheckAccessDenialCarriesContext(t *testing.T) {
	member := &auth.User{FullName: "Test User", Roles: []auth.Role{auth.RoleUser}}

	err := auth.CheckAccess(member, []auth.Role{auth.RoleAdmin})
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Contains(t, richErr.Message, "Test User")
	assert.Contains(t, richErr.Message, auth.RoleAdmin)
}

func TestCheckAccessIsPure(t *testing.T) {
	member := &auth.User{FullName: "Test User", Roles: []auth.Role{auth.RoleUser}}

	_ = auth.CheckAccess(member, []auth.Role{auth.RoleAdmin})
	assert.Equal(t, []auth.Role{auth.RoleUser}, member.Roles)
}

func TestRoleTable(t *testing.T) {
	table := auth.RoleTable{
		"auth.private3": {auth.RoleAdmin},
	}

	assert.Equal(t, []auth.Role{auth.RoleAdmin}, table.Required("auth.private3"))
	assert.Nil(t, table.Required("auth.check-status"))

	var empty auth.RoleTable
	assert.Nil(t, empty.Required("anything"))
}
