package models

import "time"

const (
	ModeDaily  = "daily"
	ModeMoment = "moment"
)

const (
	SeverityMin = 0
	SeverityMax = 10
)

// CheckIn is one logged health entry. Daily entries are unique per
// (user, date); moment entries are unlimited and carry LoggedAt.
type CheckIn struct {
	ID              uint      `gorm:"primaryKey"`
	UUID            string    `gorm:"not null;uniqueIndex"`
	UserID          uint      `gorm:"not null;index:idx_check_ins_user_date"`
	Date            time.Time `gorm:"type:date;not null;index:idx_check_ins_user_date"`
	Mode            string    `gorm:"not null"`
	OverallSeverity *int
	Activity        string
	Notes           string
	LoggedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ConditionEntry and TriggerEntry are fully replaced on every save;
// they never see incremental updates.
type ConditionEntry struct {
	ID          uint `gorm:"primaryKey"`
	CheckInID   uint `gorm:"not null;index"`
	ConditionID uint `gorm:"not null"`
	Severity    int  `gorm:"not null"`
	Notes       string
}

type TriggerEntry struct {
	ID           uint `gorm:"primaryKey"`
	CheckInID    uint `gorm:"not null;index"`
	TriggerID    uint `gorm:"not null"`
	NumericValue *float64
	TextValue    *string
	ValueLabel   string
}

func IsValidMode(mode string) bool {
	switch mode {
	case ModeDaily, ModeMoment:
		return true
	default:
		return false
	}
}

func IsValidSeverity(value int) bool {
	return value >= SeverityMin && value <= SeverityMax
}
