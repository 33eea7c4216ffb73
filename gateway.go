package auth

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Gateway binds the connection registry to a fiber websocket endpoint.
// The handshake token travels in the Authentication header, with a token
// query parameter fallback for browser clients that cannot set headers
// on a websocket upgrade.
type Gateway struct {
	registry *Registry
	logger   Logger
}

func NewGateway(registry *Registry) *Gateway {
	return &Gateway{
		registry: registry,
		logger:   defLogger{},
	}
}

func (g *Gateway) WithLogger(logger Logger) *Gateway {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Upgrade gates the route to real websocket upgrade requests.
func (g *Gateway) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler runs the per-connection lifecycle: handshake verification,
// registration, the inbound message loop, and unconditional removal when
// the transport drops.
func (g *Gateway) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		connectionID := uuid.New().String()

		token := conn.Headers("Authentication")
		if token == "" {
			token = conn.Query("token")
		}

		if err := g.registry.OnConnect(context.Background(), connectionID, token, &wsSink{conn: conn}); err != nil {
			// registry already terminated the connection; nothing is
			// surfaced to the peer beyond the disconnect
			return
		}
		defer g.registry.OnDisconnect(connectionID)

		for {
			var payload NewMessage
			if err := conn.ReadJSON(&payload); err != nil {
				g.logger.Debug("websocket read ended", "connection_id", connectionID, "error", err)
				return
			}
			g.registry.OnMessage(connectionID, payload)
		}
	})
}

type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) WriteJSON(v any) error {
	return s.conn.WriteJSON(v)
}

func (s *wsSink) Close() error {
	return s.conn.Close()
}

var _ MessageSink = (*wsSink)(nil)
