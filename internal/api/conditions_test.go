package api

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type conditionBody struct {
	ID        uint   `json:"ID"`
	Name      string `json:"Name"`
	IsBuiltin bool   `json:"IsBuiltin"`
}

func listConditions(t *testing.T, app *fiber.App, token string) []conditionBody {
	t.Helper()

	response := doJSON(t, app, fiber.MethodGet, "/api/conditions", token, nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("list conditions status = %d", response.StatusCode)
	}
	var conditions []conditionBody
	decodeBody(t, response, &conditions)
	return conditions
}

func TestConditionsLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := registerTestUser(t, app, "conditions@example.com")

	builtins := listConditions(t, app, token)
	if len(builtins) == 0 {
		t.Fatal("registration should seed builtin conditions")
	}
	for _, condition := range builtins {
		if !condition.IsBuiltin {
			t.Fatalf("seeded condition %q should be builtin", condition.Name)
		}
	}

	response := doJSON(t, app, fiber.MethodPost, "/api/conditions", token, fiber.Map{
		"name": "  Tinnitus  ",
		"icon": "🔔",
	})
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("create condition status = %d", response.StatusCode)
	}
	var created conditionBody
	decodeBody(t, response, &created)
	if created.Name != "Tinnitus" {
		t.Fatalf("condition name should be trimmed, got %q", created.Name)
	}
	if created.IsBuiltin {
		t.Fatal("user-created conditions are not builtin")
	}

	response = doJSON(t, app, fiber.MethodPost, "/api/conditions", token, fiber.Map{"name": "   "})
	if response.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("blank name status = %d", response.StatusCode)
	}

	response = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/conditions/%d", created.ID), token, nil)
	if response.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete condition status = %d", response.StatusCode)
	}

	// Builtins cannot be removed.
	response = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/conditions/%d", builtins[0].ID), token, nil)
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("delete builtin status = %d", response.StatusCode)
	}

	remaining := listConditions(t, app, token)
	if len(remaining) != len(builtins) {
		t.Fatalf("expected only builtins to remain, got %d of %d", len(remaining), len(builtins))
	}
}
