package handler

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pharmacy-rag/internal/rag"
)

// ChatHandler serves the web frontend's JSON chat endpoint.
type ChatHandler struct {
	svc *rag.Service
}

func NewChatHandler(svc *rag.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Register sets up the chat route.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("/api/chat", h.Chat)
}

// Chat answers one user message. Pipeline failures are collapsed into the
// fixed fallback strings; the endpoint never surfaces an error payload for
// them, only for malformed requests.
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var body struct {
		UserMessage string `json:"user_message"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if strings.TrimSpace(body.UserMessage) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_message is required"})
	}

	requestID := uuid.NewString()
	log.Info().Str("request_id", requestID).Str("message", body.UserMessage).Msg("Chat request received")

	result, err := h.svc.Answer(c.Context(), body.UserMessage)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("Answer pipeline failed")
		return c.JSON(fiber.Map{"response": rag.Fallback(err)})
	}

	log.Info().Str("request_id", requestID).Str("source", result.Source).Msg("Chat response generated")
	return c.JSON(fiber.Map{"response": result.Content})
}
