package system

import (
	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

type WebSocketController struct {
	Hub    *EventHub
	logger *zap.Logger
}

func NewWebSocketController(hub *EventHub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{Hub: hub, logger: logger}
}

// HandleWebSocket streams hub events to the client until either side closes.
// Anything the client sends is read and discarded.
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	id, events := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case frame, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
