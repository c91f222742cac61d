package db

import "gorm.io/gorm"

type Repositories struct {
	Users      *UserRepository
	CheckIns   *CheckInRepository
	Drafts     *DraftRepository
	Triggers   *TriggerRepository
	Conditions *ConditionRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(database),
		CheckIns:   NewCheckInRepository(database),
		Drafts:     NewDraftRepository(database),
		Triggers:   NewTriggerRepository(database),
		Conditions: NewConditionRepository(database),
	}
}
