package auth

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/tiendago/go-shop-auth/middleware/jwtware"
)

// Protected builds the bearer middleware for a route, with the route's
// required-role set baked in at registration time. No roles means any
// authenticated identity passes.
func (s *Auther) Protected(roles ...Role) fiber.Handler {
	return jwtware.New(jwtware.Config{
		ContextKey:    s.cfg.GetContextKey(),
		TokenLookup:   s.cfg.GetTokenLookup(),
		AuthScheme:    s.cfg.GetAuthScheme(),
		Verifier:      verifierAdapter{s},
		RequiredRoles: roles,
		AccessChecker: func(identity any, required []string) error {
			user, _ := identity.(*User)
			return CheckAccess(user, required)
		},
		ErrorHandler: RespondWithError,
	})
}

// verifierAdapter erases the concrete identity type for jwtware.
type verifierAdapter struct {
	auther *Auther
}

func (v verifierAdapter) VerifyIdentity(ctx context.Context, rawToken string) (any, error) {
	return v.auther.VerifyIdentity(ctx, rawToken)
}

// UserFromFiber retrieves the resolved identity stored by the bearer
// middleware under the configured context key.
func UserFromFiber(c *fiber.Ctx, contextKey string) (*User, bool) {
	if contextKey == "" {
		contextKey = "user"
	}
	user, ok := c.Locals(contextKey).(*User)
	return user, ok
}

// RespondWithError maps the error taxonomy onto HTTP responses: client
// input faults surface with their own message and a 4xx status, server
// faults collapse to a generic 500 payload.
func RespondWithError(c *fiber.Ctx, err error) error {
	status, message, textCode := classifyError(err)
	body := fiber.Map{
		"statusCode": status,
		"message":    message,
	}
	if textCode != "" {
		body["error"] = textCode
	}
	return c.Status(status).JSON(body)
}

func classifyError(err error) (status int, message, textCode string) {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		if err == jwtware.ErrJWTMissingOrMalformed {
			return http.StatusUnauthorized, err.Error(), ""
		}
		return http.StatusInternalServerError, ErrPersistenceFailure.Message, ""
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized, richErr.Message, richErr.TextCode
	case errors.CategoryAuthz:
		return http.StatusForbidden, richErr.Message, richErr.TextCode
	case errors.CategoryConflict, errors.CategoryValidation:
		return http.StatusBadRequest, richErr.Message, richErr.TextCode
	default:
		return http.StatusInternalServerError, ErrPersistenceFailure.Message, richErr.TextCode
	}
}
