package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type envelope struct {
	Success bool `json:"success"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testRequest(t *testing.T, app *fiber.App, method, path string) (int, envelope) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var parsed envelope
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("%s %s: response %q is not enveloped JSON: %v", method, path, raw, err)
	}
	return resp.StatusCode, parsed
}

func TestErrorHandlerMapsOversizedBody(t *testing.T) {
	app := NewApp()
	app.Post("/upload", func(c *fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})

	status, resp := testRequest(t, app, http.MethodPost, "/upload")
	if status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}
	if resp.Error == nil || resp.Error.Code != "FILE_TOO_LARGE" {
		t.Errorf("expected FILE_TOO_LARGE, got %+v", resp.Error)
	}
}

func TestErrorHandlerEnvelopesUnknownRoute(t *testing.T) {
	app := NewApp()

	status, resp := testRequest(t, app, http.MethodGet, "/no-such-route")
	if status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}
	if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %+v", resp.Error)
	}
}

func TestErrorHandlerEnvelopesInternalError(t *testing.T) {
	app := NewApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.ErrInternalServerError
	})

	status, resp := testRequest(t, app, http.MethodGet, "/boom")
	if status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", status)
	}
	if resp.Error == nil || resp.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %+v", resp.Error)
	}
}
