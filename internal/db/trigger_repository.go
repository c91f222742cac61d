package db

import (
	"github.com/aramaea/aceso/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TriggerRepository struct {
	database *gorm.DB
}

func NewTriggerRepository(database *gorm.DB) *TriggerRepository {
	return &TriggerRepository{database: database}
}

func (repo *TriggerRepository) ListActive() ([]models.Trigger, error) {
	triggers := make([]models.Trigger, 0)
	if err := repo.database.
		Where("active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&triggers).Error; err != nil {
		return nil, err
	}
	return triggers, nil
}

func (repo *TriggerRepository) FindByID(triggerID uint) (models.Trigger, error) {
	var trigger models.Trigger
	if err := repo.database.First(&trigger, triggerID).Error; err != nil {
		return models.Trigger{}, err
	}
	return trigger, nil
}

func (repo *TriggerRepository) ListPrefs(userID uint) ([]models.UserTriggerPref, error) {
	prefs := make([]models.UserTriggerPref, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("sort_order ASC, id ASC").
		Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}

func (repo *TriggerRepository) UpsertPref(userID uint, triggerID uint, enabled bool, sortOrder int) error {
	pref := models.UserTriggerPref{
		UserID:    userID,
		TriggerID: triggerID,
		Enabled:   enabled,
		SortOrder: sortOrder,
	}
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "trigger_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "sort_order"}),
	}).Create(&pref).Error
}
