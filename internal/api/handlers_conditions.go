package api

import (
	"strconv"
	"strings"

	"github.com/aramaea/aceso/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GetConditions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	conditions, err := handler.repos.Conditions.ListByUser(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load conditions")
	}
	return c.JSON(conditions)
}

type conditionPayload struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (handler *Handler) CreateCondition(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := conditionPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return apiError(c, fiber.StatusBadRequest, "condition name is required")
	}

	condition := models.Condition{
		UserID: user.ID,
		Name:   name,
		Icon:   strings.TrimSpace(payload.Icon),
		Color:  strings.TrimSpace(payload.Color),
	}
	if err := handler.repos.Conditions.Create(&condition); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create condition")
	}
	return c.Status(fiber.StatusCreated).JSON(condition)
}

func (handler *Handler) DeleteCondition(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	conditionID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || conditionID == 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid condition id")
	}

	removed, err := handler.repos.Conditions.DeleteByIDAndUser(uint(conditionID), user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to delete condition")
	}
	if removed == 0 {
		return apiError(c, fiber.StatusNotFound, "condition not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
