package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"tutordesk/config"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = config.Config{EncryptionKey: "test-signing-key"}
	t.Cleanup(func() { config.AppConfig = prev })

	app := fiber.New()
	SetupRoutes(app, nil)
	return app
}

func TestHealthEndpointsReachable(t *testing.T) {
	app := setupTestApp(t)

	// The 404 fallback is registered last; both health routes must win
	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test(%s): %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s returned %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestUnknownRouteFallsThroughTo404(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/no-such-route", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /no-such-route returned %d, want 404", resp.StatusCode)
	}
}

func TestProtectedAPIRejectsAnonymous(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/team/limit", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /api/v1/team/limit returned %d, want 401", resp.StatusCode)
	}
}
