package models

import "time"

// CheckInDraft is the serialized form snapshot kept in the draft cache.
// One live draft exists per (user, local date, mode) key; slots never
// merge across modes or dates.
type CheckInDraft struct {
	Mode                 string                `json:"mode"`
	OverallSeverity      *int                  `json:"overall_severity,omitempty"`
	SelectedConditionIDs []uint                `json:"selected_condition_ids"`
	ConditionSeverities  map[uint]int          `json:"condition_severities"`
	ActivityText         string                `json:"activity_text,omitempty"`
	Notes                string                `json:"notes"`
	TriggerValues        map[uint]TriggerValue `json:"trigger_values"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// DraftRecord is the key-value row backing the draft cache.
type DraftRecord struct {
	Key       string `gorm:"primaryKey"`
	Payload   string `gorm:"not null"`
	UpdatedAt time.Time
}

func (DraftRecord) TableName() string {
	return "check_in_drafts"
}
