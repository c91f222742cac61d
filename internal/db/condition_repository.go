package db

import (
	"github.com/aramaea/aceso/internal/models"
	"gorm.io/gorm"
)

type ConditionRepository struct {
	database *gorm.DB
}

func NewConditionRepository(database *gorm.DB) *ConditionRepository {
	return &ConditionRepository{database: database}
}

func (repo *ConditionRepository) ListByUser(userID uint) ([]models.Condition, error) {
	conditions := make([]models.Condition, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("is_builtin DESC, id ASC").
		Find(&conditions).Error; err != nil {
		return nil, err
	}
	return conditions, nil
}

func (repo *ConditionRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Condition{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ConditionRepository) Create(condition *models.Condition) error {
	return repo.database.Create(condition).Error
}

func (repo *ConditionRepository) DeleteByIDAndUser(conditionID uint, userID uint) (int64, error) {
	result := repo.database.
		Where("id = ? AND user_id = ? AND is_builtin = ?", conditionID, userID, false).
		Delete(&models.Condition{})
	return result.RowsAffected, result.Error
}

// SeedBuiltins inserts the builtin condition set for a new user; it is a
// no-op when the user already has any conditions.
func (repo *ConditionRepository) SeedBuiltins(userID uint) error {
	count, err := repo.CountByUser(userID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return repo.database.Transaction(func(tx *gorm.DB) error {
		for _, builtin := range models.DefaultBuiltinConditions() {
			condition := models.Condition{
				UserID:    userID,
				Name:      builtin.Name,
				Icon:      builtin.Icon,
				Color:     builtin.Color,
				IsBuiltin: true,
			}
			if err := tx.Create(&condition).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
