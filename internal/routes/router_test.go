package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gestor-pelada/gestor/internal/api"
	"gestor-pelada/gestor/internal/app"
	"gestor-pelada/gestor/internal/config"
	"gestor-pelada/gestor/internal/dashboard"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/models/dtos/responses"
	"gestor-pelada/gestor/internal/models/entities"
	"gestor-pelada/gestor/internal/providers"
)

func newTestServer(t *testing.T) (http.Handler, *app.App) {
	t.Helper()
	var a *app.App
	backend := providers.NewMemoryProvider(func() string {
		if a == nil {
			return ""
		}
		return a.Sessions.AccessToken()
	})
	backend.SeedUser("ana@pelada.test", "secret1", "Ana")

	a = app.New(memoryOptions(backend))
	t.Cleanup(a.Close)

	cfg := &config.Config{
		AllowedOrigins: []string{"http://localhost:*"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	handlers := api.NewHandlers(a, config.BackendMemory, "http://localhost:8787", time.Now())
	return RegisterRoutes(cfg, handlers, a.Sessions, metrics.Nop()), a
}

func memoryOptions(backend *providers.MemoryProvider) app.Options {
	return app.Options{
		Auth:     backend,
		Data:     backend,
		EntryURL: "http://localhost:8787/",
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, responses.APIResponse[json.RawMessage]) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp responses.APIResponse[json.RawMessage]
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode %s %s response: %v", method, path, err)
		}
	}
	return rr.Code, resp
}

func decodeData[T any](t *testing.T, resp responses.APIResponse[json.RawMessage]) T {
	t.Helper()
	var out T
	if resp.Data == nil {
		t.Fatal("Expected data in response")
	}
	if err := json.Unmarshal(*resp.Data, &out); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	return out
}

func TestRouter_DashboardFlow(t *testing.T) {
	h, _ := newTestServer(t)

	if code, _ := do(t, h, "GET", "/api/v1/dashboard", nil); code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 before sign in, got %d", code)
	}

	do(t, h, "POST", "/api/v1/auth/mode", map[string]string{"mode": "password"})
	code, resp := do(t, h, "POST", "/api/v1/auth/sign-in", map[string]string{"email": "ana@pelada.test", "password": "secret1"})
	if code != http.StatusOK {
		t.Fatalf("Expected 200 on sign in, got %d (%s)", code, resp.Error)
	}
	state := decodeData[responses.AuthStateResponse](t, resp)
	if state.Phase != "authenticated" {
		t.Errorf("Expected authenticated, got %s", state.Phase)
	}

	code, resp = do(t, h, "POST", "/api/v1/groups", map[string]any{"name": "", "max_players": 2})
	if code != http.StatusBadRequest || resp.Error == "" {
		t.Errorf("Expected 400 with a notice for an empty name, got %d %q", code, resp.Error)
	}

	code, resp = do(t, h, "POST", "/api/v1/groups", map[string]any{"name": "Quinta", "max_players": 2})
	if code != http.StatusCreated {
		t.Fatalf("Expected 201 on create group, got %d (%s)", code, resp.Error)
	}
	created := decodeData[responses.ActionResponse](t, resp)

	_, resp = do(t, h, "GET", "/api/v1/groups", nil)
	groups := decodeData[responses.GroupsResponse](t, resp)
	if groups.SelectedID != created.GroupID || len(groups.Groups) != 1 {
		t.Errorf("Expected new group selected, got %+v", groups)
	}

	code, resp = do(t, h, "POST", "/api/v1/events", map[string]any{"scheduled_at": time.Now().Add(24 * time.Hour)})
	if code != http.StatusCreated {
		t.Fatalf("Expected 201 on create event, got %d (%s)", code, resp.Error)
	}

	_, resp = do(t, h, "GET", "/api/v1/dashboard", nil)
	view := decodeData[dashboard.View](t, resp)
	if view.ActiveEvent == nil || !view.IsAdmin {
		t.Fatalf("Expected an active event for the admin, got %+v", view)
	}

	code, resp = do(t, h, "POST", "/api/v1/events/"+view.ActiveEvent.ID+"/confirm", nil)
	if code != http.StatusOK || resp.Notice == "" {
		t.Errorf("Expected 200 with a notice on confirm, got %d %q", code, resp.Error)
	}

	_, resp = do(t, h, "POST", "/api/v1/dashboard/refresh", nil)
	view = decodeData[dashboard.View](t, resp)
	if len(view.Queue) != 1 || view.MyConfirmation == nil {
		t.Errorf("Expected own confirmation in the queue, got %+v", view.Queue)
	}

	code, _ = do(t, h, "PUT", "/api/v1/groups/selected", map[string]string{"group_id": "missing"})
	if code != http.StatusNotFound {
		t.Errorf("Expected 404 selecting an unknown group, got %d", code)
	}

	_, resp = do(t, h, "GET", "/healthCheck", nil)
	health := decodeData[entities.HealthCheckResponse](t, resp)
	if !health.Authenticated || health.Backend != config.BackendMemory {
		t.Errorf("Expected authenticated memory backend in health, got %+v", health)
	}

	do(t, h, "POST", "/api/v1/auth/sign-out", nil)
	if code, _ := do(t, h, "GET", "/api/v1/groups", nil); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after sign out, got %d", code)
	}
}

func TestRouter_AuthCallback(t *testing.T) {
	h, a := newTestServer(t)

	req := httptest.NewRequest("GET", "/auth/callback?error=access_denied&error_description=Link+expirado", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code == http.StatusFound {
		t.Fatalf("Expected an error response for a failed redirect, got %d", rr.Code)
	}
	if a.Sessions.UserID() != "" {
		t.Error("Expected no session after a failed redirect")
	}
}
