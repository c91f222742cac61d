package db

import (
	"time"

	"github.com/aramaea/aceso/internal/models"
	"gorm.io/gorm"
)

type CheckInRepository struct {
	database *gorm.DB
}

func NewCheckInRepository(database *gorm.DB) *CheckInRepository {
	return &CheckInRepository{database: database}
}

func (repo *CheckInRepository) FindDailyByDay(userID uint, dayStart time.Time, dayEnd time.Time) (models.CheckIn, bool, error) {
	entry := models.CheckIn{}
	result := repo.database.
		Where("user_id = ? AND mode = ? AND date >= ? AND date < ?", userID, models.ModeDaily, dayStart, dayEnd).
		Order("date DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.CheckIn{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.CheckIn{}, false, nil
	}
	return entry, true, nil
}

func (repo *CheckInRepository) ListByUserRange(userID uint, fromStart time.Time, toEnd time.Time) ([]models.CheckIn, error) {
	entries := make([]models.CheckIn, 0)
	if err := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, fromStart, toEnd).
		Order("date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *CheckInRepository) Create(entry *models.CheckIn) error {
	return repo.database.Create(entry).Error
}

// UpdateScalars writes only the parent row's editable fields; children
// go through ReplaceChildren.
func (repo *CheckInRepository) UpdateScalars(entry *models.CheckIn) error {
	return repo.database.Model(entry).Updates(map[string]any{
		"overall_severity": entry.OverallSeverity,
		"activity":         entry.Activity,
		"notes":            entry.Notes,
	}).Error
}

// ReplaceChildren swaps the full child set of a check-in in one
// transaction: delete everything, insert the new rows. There is no
// incremental diffing anywhere in the save path.
func (repo *CheckInRepository) ReplaceChildren(checkInID uint, conditions []models.ConditionEntry, triggers []models.TriggerEntry) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("check_in_id = ?", checkInID).Delete(&models.ConditionEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("check_in_id = ?", checkInID).Delete(&models.TriggerEntry{}).Error; err != nil {
			return err
		}
		for index := range conditions {
			conditions[index].ID = 0
			conditions[index].CheckInID = checkInID
		}
		for index := range triggers {
			triggers[index].ID = 0
			triggers[index].CheckInID = checkInID
		}
		if len(conditions) > 0 {
			if err := tx.Create(&conditions).Error; err != nil {
				return err
			}
		}
		if len(triggers) > 0 {
			if err := tx.Create(&triggers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo *CheckInRepository) ListChildren(checkInID uint) ([]models.ConditionEntry, []models.TriggerEntry, error) {
	conditions := make([]models.ConditionEntry, 0)
	if err := repo.database.Where("check_in_id = ?", checkInID).Order("id ASC").Find(&conditions).Error; err != nil {
		return nil, nil, err
	}
	triggers := make([]models.TriggerEntry, 0)
	if err := repo.database.Where("check_in_id = ?", checkInID).Order("id ASC").Find(&triggers).Error; err != nil {
		return nil, nil, err
	}
	return conditions, triggers, nil
}
