package server

import (
	"log/slog"
	"time"

	"communityhub/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const eventStreamWriteTimeout = 10 * time.Second

// EventStreamUpgrade rejects plain HTTP requests to the event stream.
func (s *Server) EventStreamUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// EventStreamHandler relays domain events to a websocket client as JSON text
// frames until the client disconnects or the server shuts down.
func (s *Server) EventStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)

		feed, unsubscribe, err := s.eventHub.Subscribe()
		if err != nil {
			middleware.Logger.Warn("event stream rejected",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteJSON(fiber.Map{"error": err.Error()})
			_ = conn.Close()
			return
		}
		defer unsubscribe()
		middleware.Logger.Debug("event stream opened", slog.String("user_id", userID))

		// The client never sends anything meaningful; reading only detects the close.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				return
			case event, ok := <-feed:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
						time.Now().Add(time.Second))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(eventStreamWriteTimeout))
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			}
		}
	})
}
