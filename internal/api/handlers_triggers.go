package api

import (
	"errors"
	"strconv"

	"github.com/aramaea/aceso/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GetTriggers(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	enabled, err := handler.catalog.EnabledForUser(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load triggers")
	}

	views := make([]triggerView, 0, len(enabled))
	for _, trigger := range enabled {
		views = append(views, buildTriggerView(trigger))
	}
	return c.JSON(views)
}

type triggerPrefPayload struct {
	Enabled   bool `json:"enabled"`
	SortOrder int  `json:"sort_order"`
}

func (handler *Handler) UpdateTriggerPreference(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	triggerID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || triggerID == 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid trigger id")
	}

	payload := triggerPrefPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	err = handler.catalog.SetPreference(user.ID, uint(triggerID), payload.Enabled, payload.SortOrder)
	if errors.Is(err, services.ErrTriggerNotFound) {
		return apiError(c, fiber.StatusNotFound, "trigger not found")
	}
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to update preference")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
