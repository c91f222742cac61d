package services

import (
	"errors"
	"sort"

	"github.com/aramaea/aceso/internal/models"
)

var ErrTriggerNotFound = errors.New("trigger not found")

type TriggerCatalogRepository interface {
	ListActive() ([]models.Trigger, error)
	FindByID(triggerID uint) (models.Trigger, error)
	ListPrefs(userID uint) ([]models.UserTriggerPref, error)
	UpsertPref(userID uint, triggerID uint, enabled bool, sortOrder int) error
}

// TriggerCatalogService reads the global trigger catalog filtered by
// per-user enablement. The log-entry core treats its output as
// read-only input; preference toggling is the only mutation here and
// never touches the catalog itself.
type TriggerCatalogService struct {
	triggers TriggerCatalogRepository
}

func NewTriggerCatalogService(triggers TriggerCatalogRepository) *TriggerCatalogService {
	return &TriggerCatalogService{triggers: triggers}
}

// EnabledForUser returns the active triggers the user has not disabled.
// Triggers without a stored preference default to enabled. Disabling a
// trigger hides its entire subtree: children of a disabled parent drop
// out even when their own preference says enabled.
func (service *TriggerCatalogService) EnabledForUser(userID uint) ([]models.Trigger, error) {
	active, err := service.triggers.ListActive()
	if err != nil {
		return nil, err
	}
	prefs, err := service.triggers.ListPrefs(userID)
	if err != nil {
		return nil, err
	}

	prefByTrigger := make(map[uint]models.UserTriggerPref, len(prefs))
	for _, pref := range prefs {
		prefByTrigger[pref.TriggerID] = pref
	}

	enabledByID := make(map[uint]bool, len(active))
	byID := make(map[uint]models.Trigger, len(active))
	for _, trigger := range active {
		byID[trigger.ID] = trigger
		enabledByID[trigger.ID] = true
		if pref, ok := prefByTrigger[trigger.ID]; ok {
			enabledByID[trigger.ID] = pref.Enabled
		}
	}

	enabled := make([]models.Trigger, 0, len(active))
	for _, trigger := range active {
		if !subtreeEnabled(trigger, byID, enabledByID) {
			continue
		}
		enabled = append(enabled, trigger)
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		left := effectiveSortOrder(enabled[i], prefByTrigger)
		right := effectiveSortOrder(enabled[j], prefByTrigger)
		if left == right {
			return enabled[i].ID < enabled[j].ID
		}
		return left < right
	})
	return enabled, nil
}

func (service *TriggerCatalogService) SetPreference(userID uint, triggerID uint, enabled bool, sortOrder int) error {
	if _, err := service.triggers.FindByID(triggerID); err != nil {
		return ErrTriggerNotFound
	}
	return service.triggers.UpsertPref(userID, triggerID, enabled, sortOrder)
}

func subtreeEnabled(trigger models.Trigger, byID map[uint]models.Trigger, enabledByID map[uint]bool) bool {
	current := trigger
	for {
		if !enabledByID[current.ID] {
			return false
		}
		if current.ParentID == nil {
			return true
		}
		parent, ok := byID[*current.ParentID]
		if !ok {
			// Parent is inactive; the subtree goes with it.
			return false
		}
		current = parent
	}
}

func effectiveSortOrder(trigger models.Trigger, prefByTrigger map[uint]models.UserTriggerPref) int {
	if pref, ok := prefByTrigger[trigger.ID]; ok && pref.SortOrder != 0 {
		return pref.SortOrder
	}
	return trigger.SortOrder
}
