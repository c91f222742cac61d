package api

import (
	"time"

	"github.com/aramaea/aceso/internal/db"
	"github.com/aramaea/aceso/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultAuthTokenTTL = 30 * 24 * time.Hour
	contextUserKey      = "current_user"
)

type Handler struct {
	repos       *db.Repositories
	secretKey   []byte
	location    *time.Location
	auth        *services.AuthService
	sessions    *services.SessionManager
	persistence *services.PersistenceController
	catalog     *services.TriggerCatalogService
	streaks     *services.StreakService
	insights    *services.InsightsService
}

func NewHandler(repos *db.Repositories, secretKey string, location *time.Location, insights *services.InsightsService) *Handler {
	streaks := services.NewStreakService(repos.Users)
	hydrator := services.NewHydrationResolver(repos.Drafts, repos.CheckIns)

	return &Handler{
		repos:       repos,
		secretKey:   []byte(secretKey),
		location:    location,
		auth:        services.NewAuthService(repos.Users),
		sessions:    services.NewSessionManager(hydrator),
		persistence: services.NewPersistenceController(repos.Drafts, repos.CheckIns, streaks),
		catalog:     services.NewTriggerCatalogService(repos.Triggers),
		streaks:     streaks,
		insights:    insights,
	}
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
