package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)

	checkIns := api.Group("/checkins", handler.AuthRequired)
	checkIns.Get("/:mode/:date", handler.GetCheckIn)
	checkIns.Put("/:mode/:date/fields", handler.ApplyCheckInFields)
	checkIns.Post("/:mode/:date/save", handler.SaveCheckIn)
	checkIns.Post("/:mode/:date/cancel", handler.CancelCheckIn)

	triggers := api.Group("/triggers", handler.AuthRequired)
	triggers.Get("", handler.GetTriggers)
	triggers.Put("/:id/preference", handler.UpdateTriggerPreference)

	conditions := api.Group("/conditions", handler.AuthRequired)
	conditions.Get("", handler.GetConditions)
	conditions.Post("", handler.CreateCondition)
	conditions.Delete("/:id", handler.DeleteCondition)

	api.Get("/streak", handler.AuthRequired, handler.GetStreak)
	api.Post("/insights", handler.AuthRequired, handler.GenerateInsights)
}
