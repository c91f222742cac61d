package api

import (
	"time"

	"github.com/aramaea/aceso/internal/models"
	"github.com/aramaea/aceso/internal/services"
	"github.com/gofiber/fiber/v2"
)

type triggerValueView struct {
	TriggerID uint     `json:"trigger_id"`
	Numeric   *float64 `json:"numeric,omitempty"`
	Text      *string  `json:"text,omitempty"`
	Label     string   `json:"label,omitempty"`
}

type triggerView struct {
	ID        uint           `json:"id"`
	Key       string         `json:"key"`
	Label     string         `json:"label"`
	Category  string         `json:"category"`
	InputType string         `json:"input_type"`
	ParentID  *uint          `json:"parent_id,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
	SortOrder int            `json:"sort_order"`
}

type checkInSnapshot struct {
	Mode                 string             `json:"mode"`
	Date                 string             `json:"date"`
	OverallSeverity      *int               `json:"overall_severity,omitempty"`
	Activity             string             `json:"activity,omitempty"`
	Notes                string             `json:"notes"`
	SelectedConditionIDs []uint             `json:"selected_condition_ids"`
	ConditionSeverities  map[uint]int       `json:"condition_severities"`
	TriggerValues        []triggerValueView `json:"trigger_values"`
	VisibleTriggers      []triggerView      `json:"visible_triggers"`
}

type checkInResponse struct {
	UUID            string     `json:"uuid"`
	Date            string     `json:"date"`
	Mode            string     `json:"mode"`
	OverallSeverity *int       `json:"overall_severity,omitempty"`
	Activity        string     `json:"activity,omitempty"`
	Notes           string     `json:"notes"`
	LoggedAt        *time.Time `json:"logged_at,omitempty"`
}

func (handler *Handler) respondSnapshot(c *fiber.Ctx, user *models.User, session *services.Session, location *time.Location) error {
	enabled, err := handler.catalog.EnabledForUser(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load triggers")
	}

	var snapshot checkInSnapshot
	_ = session.WithForm(func(form *services.FormState) error {
		snapshot = buildSnapshot(form, session, enabled)
		return nil
	})
	return c.JSON(snapshot)
}

func buildSnapshot(form *services.FormState, session *services.Session, enabled []models.Trigger) checkInSnapshot {
	snapshot := checkInSnapshot{
		Mode:                 form.Mode,
		Date:                 session.Day().Format("2006-01-02"),
		OverallSeverity:      form.OverallSeverity,
		Notes:                form.Notes,
		SelectedConditionIDs: form.SelectedConditionIDs(),
		ConditionSeverities:  make(map[uint]int),
		TriggerValues:        make([]triggerValueView, 0),
		VisibleTriggers:      make([]triggerView, 0),
	}
	if form.Mode == models.ModeMoment {
		snapshot.Activity = form.ActivityText
	}
	for _, id := range form.SelectedConditionIDs() {
		if severity, ok := form.ConditionSeverity(id); ok {
			snapshot.ConditionSeverities[id] = severity
		}
	}
	for _, trigger := range form.VisibleTriggers(enabled) {
		snapshot.VisibleTriggers = append(snapshot.VisibleTriggers, buildTriggerView(trigger))
		if value, ok := form.TriggerValue(trigger.ID); ok {
			snapshot.TriggerValues = append(snapshot.TriggerValues, triggerValueView{
				TriggerID: trigger.ID,
				Numeric:   value.Numeric,
				Text:      value.Text,
				Label:     value.Label,
			})
		}
	}
	return snapshot
}

// buildTriggerView matches exhaustively on the input variant so a new
// input type cannot silently render with the wrong option shape.
func buildTriggerView(trigger models.Trigger) triggerView {
	view := triggerView{
		ID:        trigger.ID,
		Key:       trigger.Key,
		Label:     trigger.Label,
		Category:  trigger.Category,
		InputType: trigger.InputType,
		ParentID:  trigger.ParentID,
		SortOrder: trigger.SortOrder,
	}
	switch input := trigger.Input().(type) {
	case models.BinaryInput, models.GroupInput:
	case models.ScaleInput:
		view.Options = map[string]any{"min": input.Min, "max": input.Max}
		if len(input.Labels) > 0 {
			view.Options["labels"] = input.Labels
		}
	case models.EnumInput:
		view.Options = map[string]any{"choices": input.Choices}
	}
	return view
}

func checkInView(entry models.CheckIn) checkInResponse {
	return checkInResponse{
		UUID:            entry.UUID,
		Date:            entry.Date.Format("2006-01-02"),
		Mode:            entry.Mode,
		OverallSeverity: entry.OverallSeverity,
		Activity:        entry.Activity,
		Notes:           entry.Notes,
		LoggedAt:        entry.LoggedAt,
	}
}
