package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/tiendago/go-shop-auth"
)

func newTestTokenService(expirationHours int) auth.TokenService {
	return auth.NewTokenService([]byte("test-signing-key"), expirationHours, "go-shop-auth-test", nil, nil)
}

func TestTokenServiceRoundTrip(t *testing.T) {
	ts := newTestTokenService(2)

	token, err := ts.Issue("8e296a06-7bd8-4a0e-9d2e-b6f2f1a6f1a1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "8e296a06-7bd8-4a0e-9d2e-b6f2f1a6f1a1", claims.UserID())
	assert.Equal(t, "8e296a06-7bd8-4a0e-9d2e-b6f2f1a6f1a1", claims.Subject())
	assert.True(t, claims.Expires().After(claims.IssuedAt()))
}

func TestTokenServiceExpiry(t *testing.T) {
	// negative lifetime produces an already-expired token
	ts := newTestTokenService(-1)

	token, err := ts.Issue("8e296a06-7bd8-4a0e-9d2e-b6f2f1a6f1a1")
	require.NoError(t, err)

	_, err = ts.Validate(token)
	require.Error(t, err)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenServiceRejectsMalformedToken(t *testing.T) {
	ts := newTestTokenService(2)

	_, err := ts.Validate("not.a.token")
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenServiceRejectsForeignSignature(t *testing.T) {
	ts := newTestTokenService(2)
	other := auth.NewTokenService([]byte("another-secret"), 2, "go-shop-auth-test", nil, nil)

	token, err := other.Issue("8e296a06-7bd8-4a0e-9d2e-b6f2f1a6f1a1")
	require.NoError(t, err)

	_, err = ts.Validate(token)
	require.Error(t, err)
	assert.False(t, auth.IsTokenExpiredError(err))
}
