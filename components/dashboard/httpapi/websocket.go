package httpapi

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/retailjet/glance/components/dashboard"
)

const localViewer = "dashboard.viewer"

// registerWebSocket streams widget events for the viewer's store. Clients
// reload the affected area when an event arrives.
func registerWebSocket(r fiber.Router, path string, hook *dashboard.BroadcastHook, resolve ViewerResolver, logger *slog.Logger) {
	r.Use(path, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals(localViewer, resolve(c))
		return c.Next()
	})
	r.Get(path, websocket.New(func(conn *websocket.Conn) {
		viewer, _ := conn.Locals(localViewer).(dashboard.ViewerContext)
		streamEvents(conn, hook, viewer, logger)
	}))
}

func streamEvents(conn *websocket.Conn, hook *dashboard.BroadcastHook, viewer dashboard.ViewerContext, logger *slog.Logger) {
	events, cancel := hook.SubscribeTenant(viewer.TenantID)
	defer cancel()

	// The read loop only detects the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug("websocket write failed",
					slog.String("tenant_id", viewer.TenantID),
					slog.Any("error", err),
				)
				return
			}
		case <-closed:
			return
		}
	}
}
