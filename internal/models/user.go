package models

import "time"

type User struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	Timezone       string `gorm:"not null;default:UTC"`
	CurrentStreak  int    `gorm:"not null;default:0"`
	LongestStreak  int    `gorm:"not null;default:0"`
	LastCheckInDay *time.Time
	CreatedAt      time.Time `gorm:"not null"`
}
