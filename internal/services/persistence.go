package services

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"sort"
	"time"

	"github.com/aramaea/aceso/internal/models"
	"github.com/google/uuid"
)

var (
	ErrCheckInLoadFailed   = errors.New("load check-in failed")
	ErrCheckInCreateFailed = errors.New("create check-in failed")
	ErrCheckInUpdateFailed = errors.New("update check-in failed")
	ErrChildReplaceFailed  = errors.New("replace check-in entries failed")
	ErrDraftWriteFailed    = errors.New("write draft failed")
)

type PersistenceDraftStore interface {
	Set(key string, payload string) error
	Delete(key string) error
}

type PersistenceCheckInStore interface {
	FindDailyByDay(userID uint, dayStart time.Time, dayEnd time.Time) (models.CheckIn, bool, error)
	Create(entry *models.CheckIn) error
	UpdateScalars(entry *models.CheckIn) error
	ReplaceChildren(checkInID uint, conditions []models.ConditionEntry, triggers []models.TriggerEntry) error
}

type StreakUpdater interface {
	UpdateStreak(userID uint, day time.Time, location *time.Location) (StreakResult, error)
}

// PersistenceController commits form state to the store and manages the
// draft cache lifecycle around that commit.
type PersistenceController struct {
	drafts   PersistenceDraftStore
	checkIns PersistenceCheckInStore
	streaks  StreakUpdater
	now      func() time.Time
}

func NewPersistenceController(drafts PersistenceDraftStore, checkIns PersistenceCheckInStore, streaks StreakUpdater) *PersistenceController {
	return &PersistenceController{
		drafts:   drafts,
		checkIns: checkIns,
		streaks:  streaks,
		now:      time.Now,
	}
}

// Save persists the form. Write failures abort the remaining steps and
// leave the draft untouched so no input is lost. On full success the
// draft is deleted, the form is reset (which disarms autosave before
// any stale in-flight write could resurrect the draft), and the saved
// row plus streak result are returned.
func (controller *PersistenceController) Save(form *FormState, userID uint, day time.Time, location *time.Location) (models.CheckIn, StreakResult, error) {
	dayStart, dayEnd := DayRange(day, location)
	finalSeverity := FinalOverallSeverity(form)
	conditionEntries := buildConditionEntries(form)
	triggerEntries := buildTriggerEntries(form)

	var entry models.CheckIn
	switch form.Mode {
	case models.ModeDaily:
		existing, found, err := controller.checkIns.FindDailyByDay(userID, dayStart, dayEnd)
		if err != nil {
			return models.CheckIn{}, StreakResult{}, ErrCheckInLoadFailed
		}
		if found {
			existing.OverallSeverity = finalSeverity
			existing.Notes = form.Notes
			if err := controller.checkIns.UpdateScalars(&existing); err != nil {
				return models.CheckIn{}, StreakResult{}, ErrCheckInUpdateFailed
			}
			entry = existing
		} else {
			entry = models.CheckIn{
				UUID:            uuid.NewString(),
				UserID:          userID,
				Date:            dayStart,
				Mode:            models.ModeDaily,
				OverallSeverity: finalSeverity,
				Notes:           form.Notes,
			}
			if err := controller.checkIns.Create(&entry); err != nil {
				return models.CheckIn{}, StreakResult{}, ErrCheckInCreateFailed
			}
		}
	default:
		loggedAt := controller.now()
		entry = models.CheckIn{
			UUID:            uuid.NewString(),
			UserID:          userID,
			Date:            dayStart,
			Mode:            models.ModeMoment,
			OverallSeverity: finalSeverity,
			Activity:        form.ActivityText,
			Notes:           form.Notes,
			LoggedAt:        &loggedAt,
		}
		if err := controller.checkIns.Create(&entry); err != nil {
			return models.CheckIn{}, StreakResult{}, ErrCheckInCreateFailed
		}
	}

	if err := controller.checkIns.ReplaceChildren(entry.ID, conditionEntries, triggerEntries); err != nil {
		return models.CheckIn{}, StreakResult{}, ErrChildReplaceFailed
	}

	streak, err := controller.streaks.UpdateStreak(userID, dayStart, location)
	if err != nil {
		// The save already succeeded; a streak failure never rolls it back.
		log.Printf("save: streak update failed for user %d: %v", userID, err)
	}

	key := DraftKey(userID, day, form.Mode, location)
	if err := controller.drafts.Delete(key); err != nil {
		log.Printf("save: draft delete failed for key %s: %v", key, err)
	}

	form.Reset()
	return entry, streak, nil
}

// Autosave writes the full current snapshot to the draft cache. It is a
// no-op until hydration completes, so hydrating never re-writes a draft
// that duplicates server state.
func (controller *PersistenceController) Autosave(form *FormState, userID uint, day time.Time, location *time.Location) error {
	if !form.Hydrated() {
		return nil
	}
	return controller.writeDraft(form, userID, day, location)
}

// Cancel performs one last draft write to preserve in-progress edits and
// leaves persisted data untouched. Calling it repeatedly just rewrites
// the latest snapshot.
func (controller *PersistenceController) Cancel(form *FormState, userID uint, day time.Time, location *time.Location) error {
	if !form.Hydrated() {
		return nil
	}
	return controller.writeDraft(form, userID, day, location)
}

func (controller *PersistenceController) writeDraft(form *FormState, userID uint, day time.Time, location *time.Location) error {
	snapshot := form.Snapshot(controller.now())
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return ErrDraftWriteFailed
	}
	key := DraftKey(userID, day, form.Mode, location)
	if err := controller.drafts.Set(key, string(payload)); err != nil {
		return ErrDraftWriteFailed
	}
	return nil
}

// FinalOverallSeverity resolves the severity to persist: the explicit
// field when set, otherwise the round-half-up mean of the currently-set
// per-condition severities, otherwise nil. The fallback is computed at
// save time only and never reflected back into the visible field.
func FinalOverallSeverity(form *FormState) *int {
	if form.OverallSeverity != nil {
		return copyIntPointer(form.OverallSeverity)
	}

	sum := 0
	count := 0
	for _, id := range form.SelectedConditionIDs() {
		if severity, ok := form.ConditionSeverity(id); ok {
			sum += severity
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := float64(sum) / float64(count)
	rounded := int(math.Floor(mean + 0.5))
	return &rounded
}

func buildConditionEntries(form *FormState) []models.ConditionEntry {
	entries := make([]models.ConditionEntry, 0)
	for _, id := range form.SelectedConditionIDs() {
		severity, _ := form.ConditionSeverity(id)
		entries = append(entries, models.ConditionEntry{
			ConditionID: id,
			Severity:    severity,
		})
	}
	return entries
}

// buildTriggerEntries keeps one entry per trigger with a non-null
// value; nulls are omitted entirely, never written explicitly.
func buildTriggerEntries(form *FormState) []models.TriggerEntry {
	values := form.TriggerValues()
	ids := make([]uint, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	entries := make([]models.TriggerEntry, 0, len(ids))
	for _, id := range ids {
		value := values[id]
		if value.IsNull() {
			continue
		}
		entries = append(entries, models.TriggerEntry{
			TriggerID:    id,
			NumericValue: value.Numeric,
			TextValue:    value.Text,
			ValueLabel:   value.Label,
		})
	}
	return entries
}
