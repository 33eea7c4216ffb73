package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AuthResult pairs a caller-safe profile with a freshly issued token.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Auther orchestrates registration, login, and status refresh over the
// credential store, the password hasher, and the token service. It keeps
// no state of its own beyond delegation.
type Auther struct {
	store        CredentialStore
	tokenService TokenService
	cfg          Config
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store CredentialStore, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		tokenService: tokenService,
		cfg:          cfg,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService swaps the token service, e.g. to share one instance
// with the websocket gateway.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates an account and logs it in: hash the password, insert
// the record, and issue a token for the new id. The unique email
// constraint is the only duplicate check.
func (s *Auther) Register(ctx context.Context, email, password, fullName string) (*AuthResult, error) {
	hash, err := HashPassword(password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
	}

	persisted, err := s.store.Insert(ctx, user)
	if err != nil {
		if IsDuplicateKey(err) {
			return nil, ErrEmailAlreadyExists
		}
		s.logger.Error("Register insert failed", "email", NormalizeEmail(email), "error", err)
		return nil, ErrPersistenceFailure
	}

	return s.resultFor(persisted)
}

// Login verifies credentials and issues a fresh token. A missing account
// and a wrong password return the same public error; the internal detail
// tag differs for operator diagnostics.
func (s *Auther) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, invalidCredentials("email")
		}
		s.logger.Error("Login lookup failed", "error", err)
		return nil, ErrPersistenceFailure
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, invalidCredentials("password")
	}

	return s.resultFor(user)
}

// RefreshStatus mints a brand-new token for an already-resolved identity.
// Long-lived realtime sessions renew short-lived tokens this way without
// re-submitting credentials; the prior token is neither tracked nor
// revoked.
func (s *Auther) RefreshStatus(ctx context.Context, identity *User) (*AuthResult, error) {
	if identity == nil {
		return nil, ErrIdentityMissing
	}
	return s.resultFor(identity)
}

// VerifyIdentity resolves a raw bearer token to the live user record. The
// store is re-read on every call so role edits are visible on the very
// next authenticated request.
func (s *Auther) VerifyIdentity(ctx context.Context, rawToken string) (*User, error) {
	claims, err := s.tokenService.Validate(rawToken)
	if err != nil {
		return nil, err
	}

	subjectID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := s.store.FindByID(ctx, subjectID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrStaleIdentity
		}
		s.logger.Error("VerifyIdentity lookup failed", "subject", subjectID.String(), "error", err)
		return nil, ErrPersistenceFailure
	}

	return user.Sanitized(), nil
}

var _ IdentityVerifier = (*Auther)(nil)

func (s *Auther) resultFor(user *User) (*AuthResult, error) {
	token, err := s.tokenService.Issue(user.ID.String())
	if err != nil {
		s.logger.Error("token issuance failed", "subject", user.ID.String(), "error", err)
		return nil, err
	}

	return &AuthResult{
		User:  user.Sanitized(),
		Token: token,
	}, nil
}
