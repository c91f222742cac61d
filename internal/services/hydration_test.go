package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aramaea/aceso/internal/models"
)

type stubDraftStore struct {
	payloads map[string]string
	getErr   error
	setErr   error
	delErr   error
	deleted  []string
}

func newStubDraftStore() *stubDraftStore {
	return &stubDraftStore{payloads: make(map[string]string)}
}

func (store *stubDraftStore) Get(key string) (string, bool, error) {
	if store.getErr != nil {
		return "", false, store.getErr
	}
	payload, ok := store.payloads[key]
	return payload, ok, nil
}

func (store *stubDraftStore) Set(key string, payload string) error {
	if store.setErr != nil {
		return store.setErr
	}
	store.payloads[key] = payload
	return nil
}

func (store *stubDraftStore) Delete(key string) error {
	if store.delErr != nil {
		return store.delErr
	}
	store.deleted = append(store.deleted, key)
	delete(store.payloads, key)
	return nil
}

type stubCheckInReader struct {
	entry       models.CheckIn
	found       bool
	findErr     error
	conditions  []models.ConditionEntry
	triggers    []models.TriggerEntry
	childrenErr error

	onFind func()
	onList func()
}

func (reader *stubCheckInReader) FindDailyByDay(userID uint, dayStart time.Time, dayEnd time.Time) (models.CheckIn, bool, error) {
	if reader.onFind != nil {
		reader.onFind()
	}
	return reader.entry, reader.found, reader.findErr
}

func (reader *stubCheckInReader) ListChildren(checkInID uint) ([]models.ConditionEntry, []models.TriggerEntry, error) {
	if reader.onList != nil {
		reader.onList()
	}
	return reader.conditions, reader.triggers, reader.childrenErr
}

func storeDraft(t *testing.T, store *stubDraftStore, key string, draft models.CheckInDraft) {
	t.Helper()
	payload, err := json.Marshal(draft)
	if err != nil {
		t.Fatalf("marshal draft: %v", err)
	}
	store.payloads[key] = string(payload)
}

var testDay = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestHydrateDraftWinsOverPersisted(t *testing.T) {
	drafts := newStubDraftStore()
	key := DraftKey(1, testDay, models.ModeDaily, time.UTC)
	storeDraft(t, drafts, key, models.CheckInDraft{
		Mode:            models.ModeDaily,
		OverallSeverity: intPtr(8),
		Notes:           "from draft",
	})

	severity := 3
	reader := &stubCheckInReader{
		entry: models.CheckIn{ID: 42, OverallSeverity: &severity, Notes: "from database"},
		found: true,
	}

	form := NewFormState(models.ModeDaily)
	resolver := NewHydrationResolver(drafts, reader)
	if err := resolver.Hydrate(NewCancelToken(), form, 1, testDay, models.ModeDaily, time.UTC); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if form.Notes != "from draft" {
		t.Fatalf("notes = %q, want draft content", form.Notes)
	}
	if form.OverallSeverity == nil || *form.OverallSeverity != 8 {
		t.Fatal("draft severity should win over persisted value")
	}
	if !form.Hydrated() {
		t.Fatal("form should be hydrated")
	}
}

func TestHydrateDailyFromPersistedRow(t *testing.T) {
	severity := 4
	reader := &stubCheckInReader{
		entry: models.CheckIn{ID: 42, OverallSeverity: &severity, Notes: "stored notes"},
		found: true,
		conditions: []models.ConditionEntry{
			{ConditionID: 2, Severity: 6},
		},
		triggers: []models.TriggerEntry{
			{TriggerID: 5, NumericValue: floatPtr(1), ValueLabel: "Yes"},
		},
	}

	form := NewFormState(models.ModeDaily)
	resolver := NewHydrationResolver(newStubDraftStore(), reader)
	if err := resolver.Hydrate(NewCancelToken(), form, 1, testDay, models.ModeDaily, time.UTC); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if form.Notes != "stored notes" {
		t.Fatalf("notes = %q", form.Notes)
	}
	if !form.ConditionSelected(2) {
		t.Fatal("persisted condition should be selected")
	}
	if sev, ok := form.ConditionSeverity(2); !ok || sev != 6 {
		t.Fatalf("condition severity = %d (ok=%v), want 6", sev, ok)
	}
	value, ok := form.TriggerValue(5)
	if !ok || value.Numeric == nil || *value.Numeric != 1 || value.Label != "Yes" {
		t.Fatalf("trigger value = %+v (ok=%v)", value, ok)
	}
}

func TestHydrateMomentStartsBlankWithoutDraft(t *testing.T) {
	severity := 4
	reader := &stubCheckInReader{
		entry: models.CheckIn{ID: 42, OverallSeverity: &severity},
		found: true,
	}

	form := NewFormState(models.ModeMoment)
	resolver := NewHydrationResolver(newStubDraftStore(), reader)
	if err := resolver.Hydrate(NewCancelToken(), form, 1, testDay, models.ModeMoment, time.UTC); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if form.OverallSeverity != nil || form.Notes != "" {
		t.Fatal("moment hydration must not autofill from the daily row")
	}
	if !form.Hydrated() {
		t.Fatal("blank moment form should still be hydrated")
	}
}

func TestHydrateCorruptDraftFallsThrough(t *testing.T) {
	drafts := newStubDraftStore()
	key := DraftKey(1, testDay, models.ModeDaily, time.UTC)
	drafts.payloads[key] = "{not json"

	reader := &stubCheckInReader{
		entry: models.CheckIn{ID: 42, Notes: "stored notes"},
		found: true,
	}

	form := NewFormState(models.ModeDaily)
	resolver := NewHydrationResolver(drafts, reader)
	if err := resolver.Hydrate(NewCancelToken(), form, 1, testDay, models.ModeDaily, time.UTC); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if form.Notes != "stored notes" {
		t.Fatal("corrupt draft should be discarded in favor of the persisted row")
	}
}

func TestHydrateCancelledDiscardsResult(t *testing.T) {
	token := NewCancelToken()
	reader := &stubCheckInReader{
		entry:  models.CheckIn{ID: 42, Notes: "stale"},
		found:  true,
		onFind: token.Cancel,
	}

	form := NewFormState(models.ModeDaily)
	resolver := NewHydrationResolver(newStubDraftStore(), reader)
	err := resolver.Hydrate(token, form, 1, testDay, models.ModeDaily, time.UTC)
	if !errors.Is(err, ErrHydrationCancelled) {
		t.Fatalf("expected ErrHydrationCancelled, got %v", err)
	}
	if form.Hydrated() {
		t.Fatal("a cancelled hydration must not mark the form hydrated")
	}
	if form.Notes != "" {
		t.Fatal("a cancelled hydration must not apply fetched values")
	}
}

func TestHydratePartialOnChildrenError(t *testing.T) {
	severity := 5
	reader := &stubCheckInReader{
		entry:       models.CheckIn{ID: 42, OverallSeverity: &severity, Notes: "scalars only"},
		found:       true,
		childrenErr: errors.New("disk gone"),
	}

	form := NewFormState(models.ModeDaily)
	resolver := NewHydrationResolver(newStubDraftStore(), reader)
	if err := resolver.Hydrate(NewCancelToken(), form, 1, testDay, models.ModeDaily, time.UTC); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if form.Notes != "scalars only" {
		t.Fatal("scalar fields should survive a child load failure")
	}
	if len(form.SelectedConditionIDs()) != 0 {
		t.Fatal("no conditions should be selected when children failed to load")
	}
	if !form.Hydrated() {
		t.Fatal("partial hydration still completes")
	}
}

func TestDraftKeyIsolatesUserDayMode(t *testing.T) {
	base := DraftKey(1, testDay, models.ModeDaily, time.UTC)
	keys := []string{
		DraftKey(2, testDay, models.ModeDaily, time.UTC),
		DraftKey(1, testDay.AddDate(0, 0, 1), models.ModeDaily, time.UTC),
		DraftKey(1, testDay, models.ModeMoment, time.UTC),
	}
	for _, key := range keys {
		if key == base {
			t.Fatalf("key %q should differ from %q", key, base)
		}
	}
	if base != "1|2026-03-14|daily" {
		t.Fatalf("unexpected key format: %q", base)
	}
}

func TestCancelTokenNilSafe(t *testing.T) {
	var token *CancelToken
	if token.Cancelled() {
		t.Fatal("nil token reads as not cancelled")
	}
}
