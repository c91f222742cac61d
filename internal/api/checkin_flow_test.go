package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aramaea/aceso/internal/db"
	"github.com/aramaea/aceso/internal/services"
	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "aceso-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repos := db.NewRepositories(database)
	insights := services.NewInsightsService(repos.CheckIns, "", "", "test-model")
	handler := NewHandler(repos, "test-secret", time.UTC, insights)

	app := fiber.New()
	RegisterRoutes(app, handler)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return response
}

func decodeBody(t *testing.T, response *http.Response, into any) {
	t.Helper()

	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(into); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func registerTestUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	response := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    email,
		"password": "a long enough password",
		"timezone": "UTC",
	})
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("register status = %d", response.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, response, &body)
	if body.Token == "" {
		t.Fatal("register should return a token")
	}
	return body.Token
}

type snapshotBody struct {
	Mode                 string         `json:"mode"`
	Date                 string         `json:"date"`
	OverallSeverity      *int           `json:"overall_severity"`
	Activity             string         `json:"activity"`
	Notes                string         `json:"notes"`
	SelectedConditionIDs []uint         `json:"selected_condition_ids"`
	ConditionSeverities  map[string]int `json:"condition_severities"`
	TriggerValues        []struct {
		TriggerID uint     `json:"trigger_id"`
		Numeric   *float64 `json:"numeric"`
		Label     string   `json:"label"`
	} `json:"trigger_values"`
	VisibleTriggers []struct {
		ID        uint   `json:"id"`
		Key       string `json:"key"`
		InputType string `json:"input_type"`
	} `json:"visible_triggers"`
}

func (snapshot snapshotBody) visibleKeys() map[string]uint {
	keys := make(map[string]uint, len(snapshot.VisibleTriggers))
	for _, trigger := range snapshot.VisibleTriggers {
		keys[trigger.Key] = trigger.ID
	}
	return keys
}

func getSnapshot(t *testing.T, app *fiber.App, token string, mode string, date string) snapshotBody {
	t.Helper()

	response := doJSON(t, app, fiber.MethodGet, "/api/checkins/"+mode+"/"+date, token, nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("get check-in status = %d", response.StatusCode)
	}
	var snapshot snapshotBody
	decodeBody(t, response, &snapshot)
	return snapshot
}

func TestDailyCheckInFlow(t *testing.T) {
	app := newTestApp(t)
	token := registerTestUser(t, app, "flow@example.com")

	snapshot := getSnapshot(t, app, token, "daily", "2026-03-14")
	if snapshot.Mode != "daily" || snapshot.Date != "2026-03-14" {
		t.Fatalf("snapshot context = %s/%s", snapshot.Mode, snapshot.Date)
	}
	if snapshot.Notes != "" || len(snapshot.SelectedConditionIDs) != 0 {
		t.Fatal("first hydration of an empty day should be blank")
	}

	keys := snapshot.visibleKeys()
	onPeriodID, ok := keys["on_period"]
	if !ok {
		t.Fatal("on_period should be visible by default")
	}
	if _, visible := keys["period_pain"]; visible {
		t.Fatal("period_pain must stay hidden while on_period is unset")
	}

	response := doJSON(t, app, fiber.MethodPut, "/api/checkins/daily/2026-03-14/fields", token, fiber.Map{
		"notes":                "slept badly",
		"toggle_conditions":    []uint{1},
		"condition_severities": map[string]int{"1": 6},
		"triggers": []fiber.Map{
			{"trigger_id": onPeriodID, "numeric": 1, "label": "Yes"},
		},
	})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("apply fields status = %d", response.StatusCode)
	}
	var edited snapshotBody
	decodeBody(t, response, &edited)

	if edited.Notes != "slept badly" {
		t.Fatalf("notes = %q", edited.Notes)
	}
	if _, visible := edited.visibleKeys()["period_pain"]; !visible {
		t.Fatal("period_pain should appear once on_period == 1")
	}
	if edited.OverallSeverity != nil {
		t.Fatal("the severity fallback must not be reflected into the field before save")
	}

	response = doJSON(t, app, fiber.MethodPost, "/api/checkins/daily/2026-03-14/save", token, nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("save status = %d", response.StatusCode)
	}
	var saved struct {
		CheckIn struct {
			UUID            string `json:"uuid"`
			Date            string `json:"date"`
			Mode            string `json:"mode"`
			OverallSeverity *int   `json:"overall_severity"`
			Notes           string `json:"notes"`
		} `json:"check_in"`
		Streak struct {
			CurrentStreak int `json:"current_streak"`
			LongestStreak int `json:"longest_streak"`
		} `json:"streak"`
	}
	decodeBody(t, response, &saved)

	if saved.CheckIn.UUID == "" || saved.CheckIn.Mode != "daily" || saved.CheckIn.Date != "2026-03-14" {
		t.Fatalf("saved check-in = %+v", saved.CheckIn)
	}
	if saved.CheckIn.OverallSeverity == nil || *saved.CheckIn.OverallSeverity != 6 {
		t.Fatalf("fallback severity should persist as 6, got %v", saved.CheckIn.OverallSeverity)
	}
	if saved.Streak.CurrentStreak != 1 || saved.Streak.LongestStreak != 1 {
		t.Fatalf("streak = %+v", saved.Streak)
	}

	// The session was released; a fresh GET re-hydrates from the
	// persisted row, not from a leftover draft.
	rehydrated := getSnapshot(t, app, token, "daily", "2026-03-14")
	if rehydrated.Notes != "slept badly" {
		t.Fatalf("rehydrated notes = %q", rehydrated.Notes)
	}
	if len(rehydrated.SelectedConditionIDs) != 1 || rehydrated.SelectedConditionIDs[0] != 1 {
		t.Fatalf("rehydrated conditions = %v", rehydrated.SelectedConditionIDs)
	}
	if rehydrated.ConditionSeverities["1"] != 6 {
		t.Fatalf("rehydrated condition severities = %v", rehydrated.ConditionSeverities)
	}
	if len(rehydrated.TriggerValues) != 1 || rehydrated.TriggerValues[0].TriggerID != onPeriodID {
		t.Fatalf("rehydrated trigger values = %+v", rehydrated.TriggerValues)
	}
}

func TestCancelPreservesDraftAcrossSessions(t *testing.T) {
	app := newTestApp(t)
	token := registerTestUser(t, app, "cancel@example.com")

	getSnapshot(t, app, token, "moment", "2026-03-14")

	response := doJSON(t, app, fiber.MethodPut, "/api/checkins/moment/2026-03-14/fields", token, fiber.Map{
		"activity": "evening walk",
		"notes":    "in progress",
	})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("apply fields status = %d", response.StatusCode)
	}

	response = doJSON(t, app, fiber.MethodPost, "/api/checkins/moment/2026-03-14/cancel", token, nil)
	if response.StatusCode != fiber.StatusNoContent {
		t.Fatalf("cancel status = %d", response.StatusCode)
	}

	// Cancelling a context with no live session is a quiet no-op.
	response = doJSON(t, app, fiber.MethodPost, "/api/checkins/moment/2026-03-14/cancel", token, nil)
	if response.StatusCode != fiber.StatusNoContent {
		t.Fatalf("repeat cancel status = %d", response.StatusCode)
	}

	restored := getSnapshot(t, app, token, "moment", "2026-03-14")
	if restored.Activity != "evening walk" || restored.Notes != "in progress" {
		t.Fatalf("draft should win on re-entry, got activity=%q notes=%q", restored.Activity, restored.Notes)
	}

	response = doJSON(t, app, fiber.MethodPost, "/api/checkins/moment/2026-03-14/save", token, nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("save status = %d", response.StatusCode)
	}

	// Saving consumed the draft; a new moment context starts blank.
	blank := getSnapshot(t, app, token, "moment", "2026-03-14")
	if blank.Activity != "" || blank.Notes != "" {
		t.Fatalf("moment context should start blank after save, got activity=%q notes=%q", blank.Activity, blank.Notes)
	}
}

func TestModeContextsIsolatedOnSameDate(t *testing.T) {
	app := newTestApp(t)
	token := registerTestUser(t, app, "isolation@example.com")

	getSnapshot(t, app, token, "moment", "2026-03-14")
	response := doJSON(t, app, fiber.MethodPut, "/api/checkins/moment/2026-03-14/fields", token, fiber.Map{
		"notes":             "moment only",
		"activity":          "stretching",
		"overall_severity":  3,
		"toggle_conditions": []uint{2},
	})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("apply moment fields status = %d", response.StatusCode)
	}

	daily := getSnapshot(t, app, token, "daily", "2026-03-14")
	if daily.Notes != "" || daily.Activity != "" || daily.OverallSeverity != nil || len(daily.SelectedConditionIDs) != 0 {
		t.Fatalf("daily context on the same date must start blank, got notes=%q activity=%q severity=%v conditions=%v",
			daily.Notes, daily.Activity, daily.OverallSeverity, daily.SelectedConditionIDs)
	}

	response = doJSON(t, app, fiber.MethodPut, "/api/checkins/daily/2026-03-14/fields", token, fiber.Map{
		"notes": "daily only",
	})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("apply daily fields status = %d", response.StatusCode)
	}

	// Values never leak between the two slots in either direction.
	moment := getSnapshot(t, app, token, "moment", "2026-03-14")
	if moment.Notes != "moment only" || moment.Activity != "stretching" {
		t.Fatalf("moment edits lost or overwritten, got notes=%q activity=%q", moment.Notes, moment.Activity)
	}
	daily = getSnapshot(t, app, token, "daily", "2026-03-14")
	if daily.Notes != "daily only" || daily.Activity != "" {
		t.Fatalf("daily edits lost or polluted, got notes=%q activity=%q", daily.Notes, daily.Activity)
	}
}

func TestCheckInEndpointsRejectBadInput(t *testing.T) {
	app := newTestApp(t)
	token := registerTestUser(t, app, "validation@example.com")

	response := doJSON(t, app, fiber.MethodGet, "/api/checkins/daily/2026-03-14", "", nil)
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("missing token status = %d", response.StatusCode)
	}

	response = doJSON(t, app, fiber.MethodGet, "/api/checkins/weekly/2026-03-14", token, nil)
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad mode status = %d", response.StatusCode)
	}

	response = doJSON(t, app, fiber.MethodGet, "/api/checkins/daily/14-03-2026", token, nil)
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad date status = %d", response.StatusCode)
	}

	response = doJSON(t, app, fiber.MethodPut, "/api/checkins/daily/2026-03-14/fields", token, fiber.Map{
		"overall_severity": 14,
	})
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("out-of-range severity status = %d", response.StatusCode)
	}
}

func TestTriggerPreferenceHidesSubtreeInSnapshot(t *testing.T) {
	app := newTestApp(t)
	token := registerTestUser(t, app, "prefs@example.com")

	snapshot := getSnapshot(t, app, token, "daily", "2026-03-14")
	onPeriodID, ok := snapshot.visibleKeys()["on_period"]
	if !ok {
		t.Fatal("on_period should be visible by default")
	}

	response := doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/triggers/%d/preference", onPeriodID), token, fiber.Map{
		"enabled": false,
	})
	if response.StatusCode != fiber.StatusNoContent {
		t.Fatalf("preference status = %d", response.StatusCode)
	}

	filtered := getSnapshot(t, app, token, "daily", "2026-03-14")
	keys := filtered.visibleKeys()
	if _, visible := keys["on_period"]; visible {
		t.Fatal("disabled trigger should disappear from the snapshot")
	}
	if _, visible := keys["period_pain"]; visible {
		t.Fatal("children of a disabled trigger should disappear too")
	}

	response = doJSON(t, app, fiber.MethodPut, "/api/triggers/99999/preference", token, fiber.Map{
		"enabled": false,
	})
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown trigger status = %d", response.StatusCode)
	}
}

func TestInsightsUnconfiguredReturns503(t *testing.T) {
	app := newTestApp(t)
	token := registerTestUser(t, app, "insights@example.com")

	response := doJSON(t, app, fiber.MethodPost, "/api/insights", token, fiber.Map{"days": 30})
	if response.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("insights status = %d", response.StatusCode)
	}
}

func TestStreakEndpointReflectsSaves(t *testing.T) {
	app := newTestApp(t)
	token := registerTestUser(t, app, "streak@example.com")

	var streak struct {
		CurrentStreak int `json:"current_streak"`
		LongestStreak int `json:"longest_streak"`
	}
	response := doJSON(t, app, fiber.MethodGet, "/api/streak", token, nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("streak status = %d", response.StatusCode)
	}
	decodeBody(t, response, &streak)
	if streak.CurrentStreak != 0 {
		t.Fatalf("fresh user streak = %d", streak.CurrentStreak)
	}

	today := time.Now().UTC().Format("2006-01-02")
	getSnapshot(t, app, token, "daily", today)
	response = doJSON(t, app, fiber.MethodPost, "/api/checkins/daily/"+today+"/save", token, nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("save status = %d", response.StatusCode)
	}

	response = doJSON(t, app, fiber.MethodGet, "/api/streak", token, nil)
	decodeBody(t, response, &streak)
	if streak.CurrentStreak != 1 || streak.LongestStreak != 1 {
		t.Fatalf("streak after save = %+v", streak)
	}
}
