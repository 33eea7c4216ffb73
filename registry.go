package auth

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-errors"
)

const (
	// EventClientsUpdated carries the distinct connected user ids
	EventClientsUpdated = "clients-updated"
	// EventMessageFromServer carries a chat message fan-out
	EventMessageFromServer = "message-from-server"
)

// ErrInactiveAccount rejects handshakes from deactivated accounts.
var ErrInactiveAccount = errors.New("account is inactive", errors.CategoryAuth).
	WithTextCode("INACTIVE_ACCOUNT")

// Envelope is the wire shape of every realtime broadcast.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// NewMessage is the inbound chat payload from a client.
type NewMessage struct {
	Message string `json:"message"`
}

// ChatMessage is the outbound chat payload, stamped with the sender's
// display name.
type ChatMessage struct {
	FullName string `json:"fullName"`
	Message  string `json:"message"`
}

// MessageSink is the transport half of a realtime connection: something
// the registry can push envelopes to and terminate.
type MessageSink interface {
	WriteJSON(v any) error
	Close() error
}

// outboundBuffer bounds the per-connection send queue. A peer that stops
// draining loses broadcasts instead of blocking everyone else.
const outboundBuffer = 32

type connectedClient struct {
	userID   string
	fullName string
	sink     MessageSink
	outbound chan Envelope
	done     chan struct{}
	stopOnce sync.Once
}

func (c *connectedClient) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// push enqueues without blocking; full queues drop the envelope.
func (c *connectedClient) push(env Envelope) bool {
	select {
	case c.outbound <- env:
		return true
	default:
		return false
	}
}

func (c *connectedClient) writeLoop(logger Logger) {
	for {
		select {
		case env := <-c.outbound:
			if err := c.sink.WriteJSON(env); err != nil {
				logger.Debug("registry write failed", "user_id", c.userID, "error", err)
			}
		case <-c.done:
			return
		}
	}
}

// Registry tracks which realtime connections are currently authenticated
// and who they belong to. It is the only mutable shared resource among
// realtime events; every map mutation happens under one mutex, while
// deliveries run on per-connection writer goroutines so a slow peer never
// holds the lock or starves the others.
type Registry struct {
	verifier IdentityVerifier
	logger   Logger

	mu      sync.Mutex
	clients map[string]*connectedClient
}

// NewRegistry creates an empty registry bound to the shared verification
// procedure.
func NewRegistry(verifier IdentityVerifier) *Registry {
	return &Registry{
		verifier: verifier,
		logger:   defLogger{},
		clients:  make(map[string]*connectedClient),
	}
}

func (r *Registry) WithLogger(logger Logger) *Registry {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// OnConnect resolves the handshake token and registers the connection.
// Any verification failure terminates the sink and registers nothing; the
// peer learns no more than the transport-level disconnect. On success the
// updated presence list is broadcast to every connection, the new one
// included.
func (r *Registry) OnConnect(ctx context.Context, connectionID, rawToken string, sink MessageSink) error {
	identity, err := r.verifier.VerifyIdentity(ctx, rawToken)
	if err != nil {
		r.logger.Debug("realtime handshake rejected", "connection_id", connectionID, "error", err)
		sink.Close()
		return err
	}

	if !identity.IsActive {
		r.logger.Debug("realtime handshake rejected, inactive account", "connection_id", connectionID)
		sink.Close()
		return ErrInactiveAccount
	}

	client := &connectedClient{
		userID:   identity.ID.String(),
		fullName: identity.FullName,
		sink:     sink,
		outbound: make(chan Envelope, outboundBuffer),
		done:     make(chan struct{}),
	}

	r.mu.Lock()
	if prev, ok := r.clients[connectionID]; ok {
		// idempotent overwrite when a connection id is reused
		prev.stop()
	}
	r.clients[connectionID] = client
	r.mu.Unlock()

	go client.writeLoop(r.logger)

	r.broadcast(Envelope{Event: EventClientsUpdated, Data: r.ConnectedClients()})
	return nil
}

// OnDisconnect removes the entry unconditionally, whatever the cause of
// the disconnect, and broadcasts the updated presence list to the
// remaining connections. Unknown ids are a no-op removal.
func (r *Registry) OnDisconnect(connectionID string) {
	r.mu.Lock()
	client, ok := r.clients[connectionID]
	delete(r.clients, connectionID)
	r.mu.Unlock()

	if ok {
		client.stop()
	}

	r.broadcast(Envelope{Event: EventClientsUpdated, Data: r.ConnectedClients()})
}

// OnMessage re-broadcasts a chat payload to every connected client,
// sender included, stamped with the sender's display name. Messages from
// unregistered connections are dropped. Nothing is persisted.
func (r *Registry) OnMessage(connectionID string, payload NewMessage) {
	fullName, ok := r.DisplayName(connectionID)
	if !ok {
		r.logger.Debug("message from unregistered connection dropped", "connection_id", connectionID)
		return
	}

	message := payload.Message
	if message == "" {
		message = "no-message!!"
	}

	r.broadcast(Envelope{
		Event: EventMessageFromServer,
		Data:  ChatMessage{FullName: fullName, Message: message},
	})
}

// ConnectedClients snapshots the distinct connected user ids, sorted for
// a stable broadcast payload. A user with several live connections
// appears once.
func (r *Registry) ConnectedClients() []string {
	r.mu.Lock()
	seen := make(map[string]struct{}, len(r.clients))
	for _, client := range r.clients {
		seen[client.userID] = struct{}{}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DisplayName resolves the full name behind a live connection, used to
// stamp outgoing chat messages.
func (r *Registry) DisplayName(connectionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[connectionID]
	if !ok {
		return "", false
	}
	return client.fullName, true
}

func (r *Registry) broadcast(env Envelope) {
	r.mu.Lock()
	targets := make([]*connectedClient, 0, len(r.clients))
	for _, client := range r.clients {
		targets = append(targets, client)
	}
	r.mu.Unlock()

	for _, client := range targets {
		if !client.push(env) {
			r.logger.Debug("dropping broadcast for slow peer", "user_id", client.userID, "event", env.Event)
		}
	}
}
