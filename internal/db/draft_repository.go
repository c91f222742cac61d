package db

import (
	"errors"
	"time"

	"github.com/aramaea/aceso/internal/models"
	"gorm.io/gorm"
)

// DraftRepository backs the local draft cache with a key-value table.
type DraftRepository struct {
	database *gorm.DB
}

func NewDraftRepository(database *gorm.DB) *DraftRepository {
	return &DraftRepository{database: database}
}

func (repo *DraftRepository) Get(key string) (string, bool, error) {
	var record models.DraftRecord
	err := repo.database.Where("key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return record.Payload, true, nil
}

func (repo *DraftRepository) Set(key string, payload string) error {
	record := models.DraftRecord{
		Key:       key,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}
	return repo.database.Save(&record).Error
}

func (repo *DraftRepository) Delete(key string) error {
	return repo.database.Where("key = ?", key).Delete(&models.DraftRecord{}).Error
}

func (repo *DraftRepository) DeleteUpdatedBefore(cutoff time.Time) (int64, error) {
	result := repo.database.Where("updated_at < ?", cutoff).Delete(&models.DraftRecord{})
	return result.RowsAffected, result.Error
}
