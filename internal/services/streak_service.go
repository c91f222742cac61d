package services

import (
	"errors"
	"time"

	"github.com/aramaea/aceso/internal/models"
)

var ErrStreakUpdateFailed = errors.New("streak update failed")

type StreakResult struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

type StreakUserRepository interface {
	FindByID(userID uint) (models.User, error)
	UpdateStreak(userID uint, currentStreak int, longestStreak int, lastCheckInDay time.Time) error
}

// StreakService counts consecutive calendar days with at least one
// completed check-in, in the user's local timezone.
type StreakService struct {
	users StreakUserRepository
}

func NewStreakService(users StreakUserRepository) *StreakService {
	return &StreakService{users: users}
}

func (service *StreakService) UpdateStreak(userID uint, day time.Time, location *time.Location) (StreakResult, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return StreakResult{}, ErrStreakUpdateFailed
	}

	today := DateAtLocation(day, location)
	current := user.CurrentStreak
	longest := user.LongestStreak
	lastDay := user.LastCheckInDay

	switch {
	case lastDay != nil && SameDay(*lastDay, today, location):
		// Second save on the same day; the streak already counted it.
		return StreakResult{CurrentStreak: current, LongestStreak: longest}, nil
	case lastDay != nil && DateAtLocation(*lastDay, location).After(today):
		// Backfilling a past date never rewinds the streak.
		return StreakResult{CurrentStreak: current, LongestStreak: longest}, nil
	case lastDay != nil && SameDay(lastDay.AddDate(0, 0, 1), today, location):
		current++
	default:
		current = 1
	}

	if current > longest {
		longest = current
	}
	if err := service.users.UpdateStreak(userID, current, longest, today); err != nil {
		return StreakResult{}, ErrStreakUpdateFailed
	}
	return StreakResult{CurrentStreak: current, LongestStreak: longest}, nil
}
