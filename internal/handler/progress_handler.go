package handler

import (
	"acaradar-web/internal/pkg/logger"
	"acaradar-web/internal/pkg/serverutils"
	internalWS "acaradar-web/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type ProgressHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewProgressHandler(hub *internalWS.Hub, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *ProgressHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/research_interest/:channel", h.ServeWs)
}

// ServeWs streams embedding progress for the channel id the browser submitted with
// its research interest. The id is random per submission, which is all the scoping
// a progress bar needs.
func (h *ProgressHandler) ServeWs(c *fiber.Ctx) error {
	channel := c.Params("channel")
	if _, err := uuid.Parse(channel); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "channel must be a UUID"))
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Debug("ProgressHandler", "Starting progress stream", map[string]interface{}{"channel": channel})
			internalWS.ServeWs(h.hub, conn, channel)
			h.logger.Debug("ProgressHandler", "Progress stream ended", map[string]interface{}{"channel": channel})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
