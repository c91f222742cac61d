package api

import (
	"errors"
	"time"

	"github.com/aramaea/aceso/internal/models"
)

var (
	errInvalidDateParam = errors.New("invalid date parameter")
	errInvalidModeParam = errors.New("invalid mode parameter")
)

func parseDayParam(raw string, location *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", raw, location)
	if err != nil {
		return time.Time{}, errInvalidDateParam
	}
	return parsed, nil
}

func parseModeParam(raw string) (string, error) {
	if !models.IsValidMode(raw) {
		return "", errInvalidModeParam
	}
	return raw, nil
}

// userLocation resolves the user's journaling timezone; calendar-day
// boundaries follow it, not the server timezone.
func (handler *Handler) userLocation(user *models.User) *time.Location {
	if user == nil || user.Timezone == "" {
		return handler.location
	}
	location, err := time.LoadLocation(user.Timezone)
	if err != nil {
		return handler.location
	}
	return location
}
