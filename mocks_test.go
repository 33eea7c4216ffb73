package auth_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	auth "github.com/tiendago/go-shop-auth"
)

// memoryStore is an in-memory CredentialStore that mirrors the behavior
// of the bun-backed repository: normalized emails, defaults on insert,
// and a driver-shaped duplicate error on the unique constraint.
type memoryStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*auth.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byID: make(map[uuid.UUID]*auth.User)}
}

func (s *memoryStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := auth.NormalizeEmail(email)
	for _, user := range s.byID {
		if user.Email == normalized {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memoryStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	clone := *user
	return &clone, nil
}

func (s *memoryStore) Insert(ctx context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = auth.NormalizeEmail(user.Email)
	for _, existing := range s.byID {
		if existing.Email == user.Email {
			return nil, fmt.Errorf("UNIQUE constraint failed: users.email")
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if len(user.Roles) == 0 {
		user.Roles = []auth.Role{auth.RoleUser}
	}
	user.IsActive = true

	clone := *user
	s.byID[user.ID] = &clone
	return user, nil
}

func (s *memoryStore) Update(ctx context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[user.ID]; !ok {
		return nil, repository.NewRecordNotFound()
	}
	user.Email = auth.NormalizeEmail(user.Email)
	clone := *user
	s.byID[user.ID] = &clone
	return user, nil
}

func (s *memoryStore) delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

func (s *memoryStore) setRoles(id uuid.UUID, roles []auth.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		user.Roles = roles
	}
}

func (s *memoryStore) setActive(id uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		user.IsActive = active
	}
}

var _ auth.CredentialStore = (*memoryStore)(nil)

func mustUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// testConfig implements auth.Config
type testConfig struct {
	signingKey string
	expiration int
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return "test-signing-key"
	}
	return c.signingKey
}

func (c testConfig) GetTokenExpiration() int {
	if c.expiration == 0 {
		return 2
	}
	return c.expiration
}

func (c testConfig) GetIssuer() string     { return "go-shop-auth-test" }
func (c testConfig) GetAudience() []string { return nil }
func (c testConfig) GetContextKey() string { return "user" }
func (c testConfig) GetTokenLookup() string {
	return "header:Authorization"
}
func (c testConfig) GetAuthScheme() string { return "Bearer" }

// recorderSink captures registry broadcasts for assertions.
type recorderSink struct {
	mu        sync.Mutex
	envelopes []auth.Envelope
	closed    bool
}

func (s *recorderSink) WriteJSON(v any) error {
	env, ok := v.(auth.Envelope)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", v)
	}
	s.mu.Lock()
	s.envelopes = append(s.envelopes, env)
	s.mu.Unlock()
	return nil
}

func (s *recorderSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *recorderSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *recorderSink) Envelopes() []auth.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.Envelope, len(s.envelopes))
	copy(out, s.envelopes)
	return out
}

func (s *recorderSink) CountEvent(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, env := range s.envelopes {
		if env.Event == event {
			n++
		}
	}
	return n
}

func (s *recorderSink) LastEvent(event string) (auth.Envelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.envelopes) - 1; i >= 0; i-- {
		if s.envelopes[i].Event == event {
			return s.envelopes[i], true
		}
	}
	return auth.Envelope{}, false
}

var _ auth.MessageSink = (*recorderSink)(nil)
