package api

import (
	"errors"
	"time"

	"github.com/aramaea/aceso/internal/models"
	"github.com/aramaea/aceso/internal/services"
	"github.com/gofiber/fiber/v2"
)

var (
	errUnauthorized = errors.New("unauthorized")
	errAttachFailed = errors.New("editing context changed")
)

// GetCheckIn enters (or re-enters) an editing context: it runs the
// hydration pass when needed and returns the current form snapshot.
func (handler *Handler) GetCheckIn(c *fiber.Ctx) error {
	user, session, location, err := handler.attachSession(c)
	if err != nil {
		return handler.respondAttachError(c, err)
	}
	return handler.respondSnapshot(c, user, session, location)
}

type triggerEditPayload struct {
	TriggerID uint     `json:"trigger_id"`
	Numeric   *float64 `json:"numeric"`
	Text      *string  `json:"text"`
	Label     string   `json:"label"`
	Clear     bool     `json:"clear"`
}

type fieldEditsPayload struct {
	OverallSeverity      *int                 `json:"overall_severity"`
	ClearOverallSeverity bool                 `json:"clear_overall_severity"`
	Notes                *string              `json:"notes"`
	Activity             *string              `json:"activity"`
	ToggleConditions     []uint               `json:"toggle_conditions"`
	ConditionSeverities  map[uint]int         `json:"condition_severities"`
	Triggers             []triggerEditPayload `json:"triggers"`
}

// ApplyCheckInFields mutates the form and autosaves the draft. The
// draft write happens after every observable change; the autosave gate
// inside the persistence controller keeps pre-hydration edits out of
// the cache.
func (handler *Handler) ApplyCheckInFields(c *fiber.Ctx) error {
	user, session, location, err := handler.attachSession(c)
	if err != nil {
		return handler.respondAttachError(c, err)
	}

	payload := fieldEditsPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.OverallSeverity != nil && !models.IsValidSeverity(*payload.OverallSeverity) {
		return apiError(c, fiber.StatusBadRequest, "invalid severity")
	}
	for _, severity := range payload.ConditionSeverities {
		if !models.IsValidSeverity(severity) {
			return apiError(c, fiber.StatusBadRequest, "invalid severity")
		}
	}

	autosaveErr := session.WithForm(func(form *services.FormState) error {
		applyFieldEdits(form, payload)
		return handler.persistence.Autosave(form, user.ID, session.Day(), location)
	})
	if autosaveErr != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to autosave draft")
	}

	return handler.respondSnapshot(c, user, session, location)
}

func applyFieldEdits(form *services.FormState, payload fieldEditsPayload) {
	if payload.ClearOverallSeverity {
		form.SetOverallSeverity(nil)
	} else if payload.OverallSeverity != nil {
		form.SetOverallSeverity(payload.OverallSeverity)
	}
	if payload.Notes != nil {
		form.SetNotes(*payload.Notes)
	}
	if payload.Activity != nil && form.Mode == models.ModeMoment {
		form.SetActivity(*payload.Activity)
	}
	for _, conditionID := range payload.ToggleConditions {
		form.ToggleCondition(conditionID)
	}
	for conditionID, severity := range payload.ConditionSeverities {
		form.SetConditionSeverity(conditionID, severity)
	}
	for _, edit := range payload.Triggers {
		if edit.Clear {
			form.ClearTriggerValue(edit.TriggerID)
			continue
		}
		form.SetTriggerValue(edit.TriggerID, edit.Numeric, edit.Text, edit.Label)
	}
}

// SaveCheckIn commits the session's form. A failed save keeps the
// session and its draft alive so nothing the user typed is lost.
func (handler *Handler) SaveCheckIn(c *fiber.Ctx) error {
	user, session, location, err := handler.attachSession(c)
	if err != nil {
		return handler.respondAttachError(c, err)
	}

	var saved models.CheckIn
	var streak services.StreakResult
	saveErr := session.WithForm(func(form *services.FormState) error {
		var err error
		saved, streak, err = handler.persistence.Save(form, user.ID, session.Day(), location)
		return err
	})
	if saveErr != nil {
		return apiError(c, fiber.StatusInternalServerError, saveFailureMessage(saveErr))
	}

	handler.sessions.Release(session)
	return c.JSON(fiber.Map{
		"check_in": checkInView(saved),
		"streak":   streak,
	})
}

func saveFailureMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrCheckInLoadFailed):
		return "failed to load existing check-in"
	case errors.Is(err, services.ErrCheckInCreateFailed):
		return "failed to create check-in"
	case errors.Is(err, services.ErrCheckInUpdateFailed):
		return "failed to update check-in"
	case errors.Is(err, services.ErrChildReplaceFailed):
		return "failed to save check-in entries"
	default:
		return "failed to save check-in"
	}
}

// CancelCheckIn writes one last draft snapshot and leaves the editing
// context. Cancelling an already-closed context is a no-op.
func (handler *Handler) CancelCheckIn(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	mode, day, err := handler.parseCheckInParams(c, user)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	location := handler.userLocation(user)
	session, found := handler.sessions.Lookup(user.ID, day, mode, location)
	if !found {
		return c.SendStatus(fiber.StatusNoContent)
	}

	cancelErr := session.WithForm(func(form *services.FormState) error {
		return handler.persistence.Cancel(form, user.ID, session.Day(), location)
	})
	if cancelErr != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to preserve draft")
	}

	handler.sessions.Release(session)
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) parseCheckInParams(c *fiber.Ctx, user *models.User) (string, time.Time, error) {
	mode, err := parseModeParam(c.Params("mode"))
	if err != nil {
		return "", time.Time{}, err
	}
	day, err := parseDayParam(c.Params("date"), handler.userLocation(user))
	if err != nil {
		return "", time.Time{}, err
	}
	return mode, day, nil
}

func (handler *Handler) attachSession(c *fiber.Ctx) (*models.User, *services.Session, *time.Location, error) {
	user, ok := currentUser(c)
	if !ok {
		return nil, nil, nil, errUnauthorized
	}
	mode, day, err := handler.parseCheckInParams(c, user)
	if err != nil {
		return nil, nil, nil, err
	}

	location := handler.userLocation(user)
	session, err := handler.sessions.Attach(user.ID, day, mode, location)
	if err != nil {
		return nil, nil, nil, errAttachFailed
	}
	return user, session, location, nil
}

func (handler *Handler) respondAttachError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errUnauthorized):
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, errInvalidModeParam):
		return apiError(c, fiber.StatusBadRequest, "invalid mode")
	case errors.Is(err, errInvalidDateParam):
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	default:
		return apiError(c, fiber.StatusConflict, "editing context changed")
	}
}
