package server

import (
	"errors"
	"log"

	"quartermaster/internal/access"
	"quartermaster/internal/auth"
	"quartermaster/internal/featureflags"
	"quartermaster/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue a websocket ticket
// @Description Returns a single-use ticket, valid for 30 seconds, for GET /api/ws?ticket=
// @Tags notifications
// @Produce json
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	p := principalFrom(c)
	if err := access.RequireAuthenticated(p); err != nil {
		return models.RespondWithAppError(c, err)
	}

	ticket, err := s.tickets.Issue(c.UserContext(), p.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrStoreUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Message: "Live notifications are unavailable",
				Code:    "SERVICE_UNAVAILABLE",
			})
		}
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(auth.TicketTTL.Seconds()),
	})
}

// WebsocketHandler streams review notifications to the authenticated user.
// Administrators additionally receive request_created events.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		p, ok := conn.Locals(localPrincipal).(*access.Principal)
		if !ok || p == nil {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}

		client, err := s.hub.Register(p.UserID, p.IsAdmin(), conn)
		if err != nil {
			log.Printf("WebSocket Notification: Failed to register user %d: %v", p.UserID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("WebSocket upgrade required"))
		}
		p := principalFrom(c)
		if p == nil {
			return models.RespondWithAppError(c, models.NewUnauthorizedError("Authentication required"))
		}
		if s.hub == nil || !s.featureFlags.EnabledForOrDefault(featureflags.LiveNotifications, p.UserID, true) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Message: "Live notifications are unavailable",
				Code:    "SERVICE_UNAVAILABLE",
			})
		}
		return upgrade(c)
	}
}
