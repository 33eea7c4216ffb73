package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCreds is the public code for any bad-credential login
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeEmailExists flags a registration against a taken email
	TextCodeEmailExists = "EMAIL_EXISTS"
)

// ErrMismatchedHashAndPassword is the single public error for a failed
// login. Lookups that miss and password mismatches both surface it so the
// response never reveals whether an account exists.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrEmailAlreadyExists is returned when registration hits the unique
// email constraint.
var ErrEmailAlreadyExists = errors.New("email is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists)

// ErrPersistenceFailure masks unexpected store errors. The triggering
// error is logged server side and never echoed to the caller.
var ErrPersistenceFailure = errors.New("please check server logs", errors.CategoryInternal).
	WithTextCode("PERSISTENCE_FAILURE")

// ErrTokenExpired is returned for tokens past their expiry window.
var ErrTokenExpired = errors.New("authentication token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed covers bad signatures and unparseable tokens.
var ErrTokenMalformed = errors.New("authentication token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED")

// ErrStaleIdentity is returned when a valid token references a user that
// no longer exists in the credential store.
var ErrStaleIdentity = errors.New("token subject no longer exists", errors.CategoryAuth).
	WithTextCode("STALE_IDENTITY")

// ErrIdentityMissing means a role-gated handler ran without identity
// resolution upstream. This is a wiring fault, not a normal auth failure.
var ErrIdentityMissing = errors.New("user not found in request", errors.CategoryValidation).
	WithTextCode("IDENTITY_MISSING")

// ErrInsufficientRole is returned when an identity holds none of the
// roles a route requires.
var ErrInsufficientRole = errors.New("user lacks a required role", errors.CategoryAuthz).
	WithTextCode("INSUFFICIENT_ROLE")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithTextCode("EMPTY_VALUE")

// invalidCredentials tags the public invalid-credentials error with the
// internal failure detail ("email" vs "password") for operator logs and
// tests. Message and text code stay identical on both paths.
func invalidCredentials(detail string) *errors.Error {
	clone := ErrMismatchedHashAndPassword.Clone()
	if clone == nil {
		return ErrMismatchedHashAndPassword
	}
	return clone.WithMetadata(map[string]any{"detail": detail})
}

// CredentialDetail extracts the internal detail tag from an
// invalid-credentials error, if present.
func CredentialDetail(err error) string {
	var richErr *errors.Error
	if !errors.As(err, &richErr) || richErr.Metadata == nil {
		return ""
	}
	detail, _ := richErr.Metadata["detail"].(string)
	return detail
}

// IsDuplicateKey reports whether err is a unique-constraint violation from
// the underlying driver. Covers sqlite and postgres phrasings.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
