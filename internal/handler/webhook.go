package handler

import (
	"encoding/xml"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pharmacy-rag/internal/models"
	"pharmacy-rag/internal/rag"
)

// twiml is the messaging-provider reply envelope for the WhatsApp webhook.
type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// WebhookHandler serves the Twilio-style WhatsApp webhook.
type WebhookHandler struct {
	svc *rag.Service
}

func NewWebhookHandler(svc *rag.Service) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// Register sets up the webhook route.
func (h *WebhookHandler) Register(router fiber.Router) {
	router.Post("/webhook", h.Webhook)
}

// Webhook answers one form-encoded WhatsApp message with a TwiML reply.
// Every invocation produces a 200 with a message body: a grounded answer or
// one of the fixed fallback strings.
func (h *WebhookHandler) Webhook(c fiber.Ctx) error {
	incoming := c.FormValue("Body")
	sender := c.FormValue("From")

	requestID := uuid.NewString()
	log.Info().Str("request_id", requestID).Str("from", sender).Str("message", incoming).Msg("Webhook message received")

	if strings.TrimSpace(incoming) == "" {
		log.Warn().Str("request_id", requestID).Msg("Empty message received")
		return c.XML(twiml{Message: models.MsgEmptyMessage})
	}

	result, err := h.svc.Answer(c.Context(), incoming)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID).Msg("Answer pipeline failed")
		return c.XML(twiml{Message: rag.Fallback(err)})
	}

	log.Info().Str("request_id", requestID).Str("source", result.Source).Msg("Webhook response generated")
	return c.XML(twiml{Message: result.Content})
}
