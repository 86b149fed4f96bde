package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"tutordesk/config"
)

func protectedApp(t *testing.T) *fiber.App {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = config.Config{EncryptionKey: "test-signing-key"}
	t.Cleanup(func() { config.AppConfig = prev })

	app := fiber.New()
	app.Get("/private", Protected(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestProtectedRejectsMissingCredentials(t *testing.T) {
	app := protectedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestProtectedRejectsMalformedHeader(t *testing.T) {
	app := protectedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestProtectedRejectsGarbageToken(t *testing.T) {
	app := protectedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
