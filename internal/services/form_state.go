package services

import (
	"sort"
	"time"

	"github.com/aramaea/aceso/internal/models"
)

const (
	MaxNotesLength    = 2000
	MaxActivityLength = 500
)

// FormState holds the check-in currently being edited. It is pure
// in-memory state: it never talks to storage, and every derived view is
// recomputed from current values on demand.
type FormState struct {
	Mode            string
	OverallSeverity *int
	ActivityText    string
	Notes           string

	selectedConditions  map[uint]struct{}
	conditionSeverities map[uint]int
	triggerValues       map[uint]models.TriggerValue

	hydrated bool
}

func NewFormState(mode string) *FormState {
	form := &FormState{}
	form.Reset()
	form.Mode = mode
	return form
}

// Reset clears every field and disarms autosave until the next
// hydration pass completes.
func (form *FormState) Reset() {
	form.Mode = ""
	form.OverallSeverity = nil
	form.ActivityText = ""
	form.Notes = ""
	form.selectedConditions = make(map[uint]struct{})
	form.conditionSeverities = make(map[uint]int)
	form.triggerValues = make(map[uint]models.TriggerValue)
	form.hydrated = false
}

func (form *FormState) Hydrated() bool {
	return form.hydrated
}

func (form *FormState) MarkHydrated() {
	form.hydrated = true
}

func (form *FormState) SetOverallSeverity(value *int) {
	form.OverallSeverity = value
}

func (form *FormState) SetNotes(value string) {
	form.Notes = TrimNotes(value)
}

func (form *FormState) SetActivity(value string) {
	form.ActivityText = TrimActivity(value)
}

// ToggleCondition adds or removes a condition from the selected set.
// Removal also drops the per-condition severity so no orphaned severity
// survives a deselect.
func (form *FormState) ToggleCondition(conditionID uint) {
	if _, selected := form.selectedConditions[conditionID]; selected {
		delete(form.selectedConditions, conditionID)
		delete(form.conditionSeverities, conditionID)
		return
	}
	form.selectedConditions[conditionID] = struct{}{}
}

func (form *FormState) ConditionSelected(conditionID uint) bool {
	_, selected := form.selectedConditions[conditionID]
	return selected
}

// SetConditionSeverity accepts updates for unselected conditions on
// purpose: the UI never does this, but the store does not reject it.
func (form *FormState) SetConditionSeverity(conditionID uint, value int) {
	form.conditionSeverities[conditionID] = value
}

func (form *FormState) ConditionSeverity(conditionID uint) (int, bool) {
	value, ok := form.conditionSeverities[conditionID]
	return value, ok
}

func (form *FormState) SelectedConditionIDs() []uint {
	ids := make([]uint, 0, len(form.selectedConditions))
	for id := range form.selectedConditions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetTriggerValue stores the raw value together with the label chosen at
// input time; the label is never recomputed from the catalog later.
func (form *FormState) SetTriggerValue(triggerID uint, numeric *float64, text *string, label string) {
	form.triggerValues[triggerID] = models.TriggerValue{
		Numeric: numeric,
		Text:    text,
		Label:   label,
	}
}

// ClearTriggerValue resets a trigger to null; cleared triggers are
// omitted from the next save entirely.
func (form *FormState) ClearTriggerValue(triggerID uint) {
	delete(form.triggerValues, triggerID)
}

func (form *FormState) TriggerValue(triggerID uint) (models.TriggerValue, bool) {
	value, ok := form.triggerValues[triggerID]
	return value, ok
}

func (form *FormState) TriggerValues() map[uint]models.TriggerValue {
	values := make(map[uint]models.TriggerValue, len(form.triggerValues))
	for id, value := range form.triggerValues {
		values[id] = value
	}
	return values
}

// VisibleTriggers filters the enabled catalog down to what the form
// should render right now. Group rows organize the tree and never
// become inputs; period_pain shows only while on_period is exactly 1.
func (form *FormState) VisibleTriggers(enabled []models.Trigger) []models.Trigger {
	onPeriodActive := false
	for _, trigger := range enabled {
		if trigger.Key != models.TriggerKeyOnPeriod {
			continue
		}
		if value, ok := form.triggerValues[trigger.ID]; ok {
			onPeriodActive = value.Numeric != nil && *value.Numeric == 1
		}
		break
	}

	visible := make([]models.Trigger, 0, len(enabled))
	for _, trigger := range enabled {
		switch trigger.Input().(type) {
		case models.GroupInput:
			continue
		case models.BinaryInput, models.ScaleInput, models.EnumInput:
		}
		if trigger.Key == models.TriggerKeyPeriodPain && !onPeriodActive {
			continue
		}
		visible = append(visible, trigger)
	}
	return visible
}

// Snapshot serializes the full current state into a draft payload.
func (form *FormState) Snapshot(now time.Time) models.CheckInDraft {
	draft := models.CheckInDraft{
		Mode:                 form.Mode,
		OverallSeverity:      copyIntPointer(form.OverallSeverity),
		SelectedConditionIDs: form.SelectedConditionIDs(),
		ConditionSeverities:  make(map[uint]int, len(form.conditionSeverities)),
		Notes:                form.Notes,
		TriggerValues:        form.TriggerValues(),
		UpdatedAt:            now,
	}
	if form.Mode == models.ModeMoment {
		draft.ActivityText = form.ActivityText
	}
	for id, value := range form.conditionSeverities {
		draft.ConditionSeverities[id] = value
	}
	return draft
}

// LoadDraft populates the form verbatim from a cached draft. Activity
// is restored only when the draft itself was a moment draft.
func (form *FormState) LoadDraft(draft models.CheckInDraft) {
	form.Mode = draft.Mode
	form.OverallSeverity = copyIntPointer(draft.OverallSeverity)
	form.Notes = draft.Notes
	if draft.Mode == models.ModeMoment {
		form.ActivityText = draft.ActivityText
	}
	form.selectedConditions = make(map[uint]struct{}, len(draft.SelectedConditionIDs))
	for _, id := range draft.SelectedConditionIDs {
		form.selectedConditions[id] = struct{}{}
	}
	form.conditionSeverities = make(map[uint]int, len(draft.ConditionSeverities))
	for id, value := range draft.ConditionSeverities {
		form.conditionSeverities[id] = value
	}
	form.triggerValues = make(map[uint]models.TriggerValue, len(draft.TriggerValues))
	for id, value := range draft.TriggerValues {
		form.triggerValues[id] = value
	}
}

func TrimNotes(value string) string {
	if len(value) <= MaxNotesLength {
		return value
	}
	return value[:MaxNotesLength]
}

func TrimActivity(value string) string {
	if len(value) <= MaxActivityLength {
		return value
	}
	return value[:MaxActivityLength]
}

func copyIntPointer(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
