package handler

import (
	"context"
	"errors"
	"strings"

	"intelliview-be/internal/pkg/logger"
	internalWS "intelliview-be/internal/websocket"
	"intelliview-be/pkg/interview/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

const defaultJobTitle = "Software Engineer"

type InterviewHandler struct {
	bridge    *internalWS.Bridge
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewInterviewHandler(bridge *internalWS.Bridge, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *InterviewHandler {
	return &InterviewHandler{
		bridge:    bridge,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeInterview upgrades the candidate connection and relays it to the live model.
func (h *InterviewHandler) ServeInterview(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if strings.TrimSpace(sessionID) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing session id")
	}

	persona := session.Persona{
		JobTitle:      c.Query("job_title", defaultJobTitle),
		ResumeSummary: c.Query("resume_summary"),
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("InterviewHandler", "Candidate connected", map[string]interface{}{"session_id": sessionID})
			err := h.bridge.Serve(context.Background(), conn, sessionID, persona)
			if err != nil && !errors.Is(err, context.Canceled) {
				h.logger.Warn("InterviewHandler", "Interview session ended with error", map[string]interface{}{
					"session_id": sessionID,
					"error":      err.Error(),
				})
				return
			}
			h.logger.Info("InterviewHandler", "Candidate disconnected", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// ServeMonitor streams lifecycle events to an HR dashboard. The optional
// session_id query narrows the feed to one interview.
func (h *InterviewHandler) ServeMonitor(c *fiber.Ctx) error {
	// Priority 1: Query Param (browsers cannot set headers on websocket)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("InterviewHandler", "Invalid token in monitor handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sessionID := c.Query("session_id")
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("InterviewHandler", "Monitor attached", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeMonitor(h.hub, conn, sessionID)
			h.logger.Info("InterviewHandler", "Monitor detached", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *InterviewHandler) RegisterRoutes(router fiber.Router) {
	ws := router.Group("/ws")
	ws.Get("/interview/:sessionId", h.ServeInterview)
	ws.Get("/monitor", h.ServeMonitor)
}
