package api

import (
	"github.com/aramaea/aceso/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GetStreak(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	return c.JSON(services.StreakResult{
		CurrentStreak: user.CurrentStreak,
		LongestStreak: user.LongestStreak,
	})
}
