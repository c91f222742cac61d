package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aramaea/aceso/internal/models"
)

var ErrHydrationCancelled = errors.New("hydration cancelled")

// CancelToken invalidates an in-flight hydration when its editing
// context is abandoned. It is checked after every awaited read so a
// late-arriving result never overwrites the form of a newer context.
type CancelToken struct {
	mu        sync.Mutex
	cancelled bool
}

func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

func (token *CancelToken) Cancel() {
	token.mu.Lock()
	defer token.mu.Unlock()
	token.cancelled = true
}

func (token *CancelToken) Cancelled() bool {
	if token == nil {
		return false
	}
	token.mu.Lock()
	defer token.mu.Unlock()
	return token.cancelled
}

// DraftKey identifies one draft slot. Switching mode or date selects a
// different slot; values never merge across slots.
func DraftKey(userID uint, day time.Time, mode string, location *time.Location) string {
	return fmt.Sprintf("%d|%s|%s", userID, DateAtLocation(day, location).Format("2006-01-02"), mode)
}

type HydrationDraftStore interface {
	Get(key string) (string, bool, error)
}

type HydrationCheckInReader interface {
	FindDailyByDay(userID uint, dayStart time.Time, dayEnd time.Time) (models.CheckIn, bool, error)
	ListChildren(checkInID uint) ([]models.ConditionEntry, []models.TriggerEntry, error)
}

// HydrationResolver decides the form's starting values whenever the
// editing context (user, calendar day, mode) changes. Precedence is
// strict and single-pass: draft wins verbatim, then the persisted daily
// row, then blank. Nothing is ever merged.
type HydrationResolver struct {
	drafts   HydrationDraftStore
	checkIns HydrationCheckInReader
}

func NewHydrationResolver(drafts HydrationDraftStore, checkIns HydrationCheckInReader) *HydrationResolver {
	return &HydrationResolver{
		drafts:   drafts,
		checkIns: checkIns,
	}
}

func (resolver *HydrationResolver) Hydrate(token *CancelToken, form *FormState, userID uint, day time.Time, mode string, location *time.Location) error {
	form.Reset()
	form.Mode = mode

	draft, usable := resolver.loadDraft(userID, day, mode, location)
	if token.Cancelled() {
		return ErrHydrationCancelled
	}
	if usable {
		form.LoadDraft(draft)
		form.Mode = mode
		form.MarkHydrated()
		return nil
	}

	// A moment session always starts blank absent a draft: there is no
	// natural one-per-day persisted row to autofill from.
	if mode != models.ModeDaily {
		form.MarkHydrated()
		return nil
	}

	dayStart, dayEnd := DayRange(day, location)
	entry, found, err := resolver.checkIns.FindDailyByDay(userID, dayStart, dayEnd)
	if token.Cancelled() {
		return ErrHydrationCancelled
	}
	if err != nil {
		log.Printf("hydration: daily check-in lookup failed for user %d: %v", userID, err)
		form.MarkHydrated()
		return nil
	}
	if !found {
		form.MarkHydrated()
		return nil
	}

	form.OverallSeverity = copyIntPointer(entry.OverallSeverity)
	form.SetNotes(entry.Notes)

	conditions, triggers, err := resolver.checkIns.ListChildren(entry.ID)
	if token.Cancelled() {
		return ErrHydrationCancelled
	}
	if err != nil {
		// Partial hydration is acceptable; the user can still fill in
		// the rest and save.
		log.Printf("hydration: child entries load failed for check-in %d: %v", entry.ID, err)
		form.MarkHydrated()
		return nil
	}

	for _, condition := range conditions {
		if !form.ConditionSelected(condition.ConditionID) {
			form.ToggleCondition(condition.ConditionID)
		}
		form.SetConditionSeverity(condition.ConditionID, condition.Severity)
	}
	for _, trigger := range triggers {
		form.SetTriggerValue(trigger.TriggerID, trigger.NumericValue, trigger.TextValue, trigger.ValueLabel)
	}

	form.MarkHydrated()
	return nil
}

// loadDraft treats every failure mode (read error, corrupt payload,
// wrong mode) as "no draft"; none of them surface to the user.
func (resolver *HydrationResolver) loadDraft(userID uint, day time.Time, mode string, location *time.Location) (models.CheckInDraft, bool) {
	key := DraftKey(userID, day, mode, location)
	payload, found, err := resolver.drafts.Get(key)
	if err != nil {
		log.Printf("hydration: draft read failed for key %s: %v", key, err)
		return models.CheckInDraft{}, false
	}
	if !found {
		return models.CheckInDraft{}, false
	}

	var draft models.CheckInDraft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		log.Printf("hydration: corrupt draft for key %s discarded", key)
		return models.CheckInDraft{}, false
	}
	if !models.IsValidMode(draft.Mode) {
		return models.CheckInDraft{}, false
	}
	return draft, true
}
