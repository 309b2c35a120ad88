package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayusman/deskwatch/internal/plugin"
	"github.com/ayusman/deskwatch/internal/store"
)

func newHookHandler(t *testing.T) (*HookHandler, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	plugins := fakePlugins{"csvlog": &plugin.Plugin{Manifest: plugin.Manifest{Name: "csvlog"}}}
	return NewHookHandler(s, plugins), s
}

func TestHookHandler_Create(t *testing.T) {
	handler, s := newHookHandler(t)

	rec := serve(handler, http.MethodPost, "/api/hooks", `{"event_kind":"drinking","plugin_name":"csvlog","config":{"file":"x.csv"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created hookResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if !created.Enabled {
		t.Error("new hooks should be enabled")
	}
	if string(created.Config) != `{"file":"x.csv"}` {
		t.Errorf("unexpected config %s", created.Config)
	}

	stored, err := s.Hooks().GetByID(created.ID)
	if err != nil {
		t.Fatalf("hook not stored: %v", err)
	}
	if stored.EventKind != "drinking" || stored.PluginName != "csvlog" {
		t.Errorf("unexpected stored hook %+v", stored)
	}
}

func TestHookHandler_Create_Validation(t *testing.T) {
	handler, _ := newHookHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing kind", `{"plugin_name":"csvlog"}`},
		{"unknown kind", `{"event_kind":"gesture","plugin_name":"csvlog"}`},
		{"missing plugin", `{"event_kind":"study"}`},
		{"unknown plugin", `{"event_kind":"study","plugin_name":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, http.MethodPost, "/api/hooks", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestHookHandler_ListGetUpdateDelete(t *testing.T) {
	handler, s := newHookHandler(t)

	hk := &store.Hook{ID: "hook-1", EventKind: "study", PluginName: "csvlog", Enabled: true}
	if err := s.Hooks().Create(hk); err != nil {
		t.Fatalf("failed to create hook: %v", err)
	}

	rec := serve(handler, http.MethodGet, "/api/hooks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var listed listHooksResponse
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listed.Hooks) != 1 || listed.Hooks[0].ID != "hook-1" {
		t.Errorf("unexpected list %+v", listed)
	}

	rec = serve(handler, http.MethodGet, "/api/hooks/hook-1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("get: expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = serve(handler, http.MethodPut, "/api/hooks/hook-1", `{"event_kind":"*","enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected status %d, got %d", http.StatusOK, rec.Code)
	}
	updated, err := s.Hooks().GetByID("hook-1")
	if err != nil {
		t.Fatalf("failed to reload hook: %v", err)
	}
	if updated.EventKind != "*" || updated.Enabled {
		t.Errorf("update not applied: %+v", updated)
	}

	rec = serve(handler, http.MethodPut, "/api/hooks/hook-1", `{"plugin_name":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("update with unknown plugin: expected %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = serve(handler, http.MethodDelete, "/api/hooks/hook-1", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = serve(handler, method, "/api/hooks/hook-1", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s after delete: expected %d, got %d", method, http.StatusNotFound, rec.Code)
		}
	}
	rec = serve(handler, http.MethodPut, "/api/hooks/hook-1", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("PUT after delete: expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHookHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := newHookHandler(t)

	if rec := serve(handler, http.MethodPatch, "/api/hooks", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("collection PATCH: expected %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	if rec := serve(handler, http.MethodPost, "/api/hooks/x", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("item POST: expected %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestHookHandler_NoRegistry(t *testing.T) {
	handler := NewHookHandler(newTestStore(t), nil)

	rec := serve(handler, http.MethodPost, "/api/hooks", `{"event_kind":"study","plugin_name":"anything"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected %d without a registry, got %d", http.StatusCreated, rec.Code)
	}
}

func TestPluginsHandler(t *testing.T) {
	plugins := fakePlugins{"csvlog": &plugin.Plugin{Manifest: plugin.Manifest{Name: "csvlog", Version: "1.0.0"}}}

	rec := serve(PluginsHandler(plugins), http.MethodGet, "/api/plugins", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body struct {
		Plugins []pluginResponse `json:"plugins"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(body.Plugins) != 1 || body.Plugins[0].Name != "csvlog" {
		t.Errorf("unexpected plugins %+v", body.Plugins)
	}

	if rec := serve(PluginsHandler(plugins), http.MethodPost, "/api/plugins", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: expected %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
