package api

import (
	"errors"

	"github.com/aramaea/aceso/internal/services"
	"github.com/gofiber/fiber/v2"
)

type insightsPayload struct {
	Days     int    `json:"days"`
	Question string `json:"question"`
}

// GenerateInsights forwards aggregated log data to the external LLM
// API. The log-entry core never calls this; it serves the insights
// screen alone.
func (handler *Handler) GenerateInsights(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := insightsPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	answer, err := handler.insights.Generate(user.ID, payload.Days, payload.Question, handler.userLocation(user))
	switch {
	case errors.Is(err, services.ErrInsightsNotConfigured):
		return apiError(c, fiber.StatusServiceUnavailable, "insights are not configured")
	case errors.Is(err, services.ErrInsightsLogsFailed):
		return apiError(c, fiber.StatusInternalServerError, "failed to load logs")
	case err != nil:
		return apiError(c, fiber.StatusBadGateway, "insights request failed")
	}

	return c.JSON(fiber.Map{"insights": answer})
}
