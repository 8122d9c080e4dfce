package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"pharmacy-rag/internal/rag"
)

// AdminHandler exposes the administrative re-index trigger.
type AdminHandler struct {
	svc *rag.Service
}

func NewAdminHandler(svc *rag.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Register sets up the admin routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Post("/admin/reindex", h.Reindex)
}

// Reindex re-runs the indexer against the configured directory. While the
// rebuild runs, requests keep observing the previous index state.
func (h *AdminHandler) Reindex(c fiber.Ctx) error {
	log.Info().Msg("Reindex requested")

	if err := h.svc.Rebuild(c.Context()); err != nil {
		log.Error().Err(err).Msg("Reindex failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reindex failed"})
	}

	return c.JSON(fiber.Map{
		"ready":  h.svc.Ready(),
		"chunks": h.svc.Size(),
	})
}
