// Package jwtware provides bearer-token middleware for fiber handlers.
// It extracts the raw token, hands it to an identity verifier, optionally
// enforces a required-role set, and stashes the resolved identity in the
// request locals. The package mirrors the small interfaces it needs
// instead of importing the auth package, so auth can depend on it without
// a cycle.
package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")

const (
	defaultContextKey  = "user"
	defaultTokenLookup = "header:" + fiber.HeaderAuthorization
	defaultAuthScheme  = "Bearer"
)

// IdentityVerifier resolves a raw token string into the request's
// principal. The concrete identity type is opaque to the middleware.
type IdentityVerifier interface {
	VerifyIdentity(ctx context.Context, rawToken string) (any, error)
}

// AccessChecker decides whether a resolved identity may pass a route
// annotated with requiredRoles. A nil checker skips role enforcement.
type AccessChecker func(identity any, requiredRoles []string) error

type Config struct {
	// Filter skips the middleware when it returns true
	Filter func(*fiber.Ctx) bool

	// SuccessHandler runs after the identity is stored; defaults to Next
	SuccessHandler fiber.Handler

	// ErrorHandler receives extraction, verification, and access errors
	ErrorHandler func(*fiber.Ctx, error) error

	// ContextKey is the locals key the identity is stored under
	ContextKey string

	// TokenLookup is a comma-separated list of "source:name" entries,
	// tried in order: "header:Authorization", "query:token", "cookie:jwt"
	TokenLookup string

	// AuthScheme is the prefix stripped from header tokens
	AuthScheme string

	// Verifier is required
	Verifier IdentityVerifier

	// RequiredRoles is the route's declared role set; empty means
	// authenticated only
	RequiredRoles []string

	// AccessChecker enforces RequiredRoles against the identity
	AccessChecker AccessChecker
}

func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := extractRawToken(c, cfg)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		identity, err := cfg.Verifier.VerifyIdentity(c.UserContext(), raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if cfg.AccessChecker != nil {
			if err := cfg.AccessChecker(identity, cfg.RequiredRoles); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		c.Locals(cfg.ContextKey, identity)

		return cfg.SuccessHandler(c)
	}
}

func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = defaultContextKey
	}
	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = defaultAuthScheme
	}
	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"statusCode": fiber.StatusUnauthorized,
				"message":    err.Error(),
			})
		}
	}
	if cfg.Verifier == nil {
		panic("jwtware: Config.Verifier is required")
	}

	return cfg
}

func extractRawToken(c *fiber.Ctx, cfg Config) (string, error) {
	for _, lookup := range strings.Split(cfg.TokenLookup, ",") {
		source, name, found := strings.Cut(strings.TrimSpace(lookup), ":")
		if !found {
			continue
		}

		var raw string
		switch source {
		case "header":
			raw = headerToken(c.Get(name), cfg.AuthScheme)
		case "query":
			raw = c.Query(name)
		case "cookie":
			raw = c.Cookies(name)
		}

		if raw != "" {
			return raw, nil
		}
	}

	return "", ErrJWTMissingOrMalformed
}

func headerToken(header, scheme string) string {
	if header == "" {
		return ""
	}
	if scheme == "" {
		return header
	}

	prefix := scheme + " "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
