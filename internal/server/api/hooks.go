package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/deskwatch/internal/behavior"
	"github.com/ayusman/deskwatch/internal/plugin"
	"github.com/ayusman/deskwatch/internal/store"
)

// PluginRegistry looks up installed plugins by name.
type PluginRegistry interface {
	Get(name string) (*plugin.Plugin, error)
	List() []*plugin.Plugin
}

// HookHandler handles HTTP requests for hook resources.
type HookHandler struct {
	store   *store.Store
	plugins PluginRegistry
}

// NewHookHandler creates a HookHandler. When plugins is nil, plugin names are
// not checked.
func NewHookHandler(s *store.Store, plugins PluginRegistry) *HookHandler {
	return &HookHandler{store: s, plugins: plugins}
}

// ServeHTTP routes /api/hooks and /api/hooks/{id}.
func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/hooks")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createHookRequest struct {
	EventKind  string          `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	Config     json.RawMessage `json:"config"`
}

type updateHookRequest struct {
	EventKind  string          `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type hookResponse struct {
	ID         string          `json:"id"`
	EventKind  string          `json:"event_kind"`
	PluginName string          `json:"plugin_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

func toHookResponse(hk *store.Hook) hookResponse {
	config := hk.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	return hookResponse{
		ID:         hk.ID,
		EventKind:  hk.EventKind,
		PluginName: hk.PluginName,
		Config:     config,
		Enabled:    hk.Enabled,
		CreatedAt:  hk.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func validKind(kind string) bool {
	switch kind {
	case string(behavior.KindDrinking), string(behavior.KindStudy), store.AnyKind:
		return true
	}
	return false
}

// checkPlugin writes an error response and returns false when name is not an
// installed plugin.
func (h *HookHandler) checkPlugin(w http.ResponseWriter, name string) bool {
	if h.plugins == nil {
		return true
	}
	if _, err := h.plugins.Get(name); err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			writeError(w, http.StatusBadRequest, "Plugin not found")
			return false
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify plugin")
		return false
	}
	return true
}

func (h *HookHandler) list(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.store.Hooks().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hooks")
		return
	}

	response := listHooksResponse{Hooks: make([]hookResponse, 0, len(hooks))}
	for _, hk := range hooks {
		response.Hooks = append(response.Hooks, toHookResponse(hk))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *HookHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	hk, err := h.store.Hooks().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return
	}
	writeJSON(w, http.StatusOK, toHookResponse(hk))
}

func (h *HookHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.EventKind == "" {
		writeError(w, http.StatusBadRequest, "event_kind is required")
		return
	}
	if !validKind(req.EventKind) {
		writeError(w, http.StatusBadRequest, "event_kind must be drinking, study or *")
		return
	}
	if req.PluginName == "" {
		writeError(w, http.StatusBadRequest, "plugin_name is required")
		return
	}
	if !h.checkPlugin(w, req.PluginName) {
		return
	}

	hk := &store.Hook{
		ID:         uuid.New().String(),
		EventKind:  req.EventKind,
		PluginName: req.PluginName,
		Config:     req.Config,
		Enabled:    true,
	}
	if err := h.store.Hooks().Create(hk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create hook")
		return
	}
	writeJSON(w, http.StatusCreated, toHookResponse(hk))
}

func (h *HookHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	hk, err := h.store.Hooks().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return
	}

	var req updateHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.EventKind != "" {
		if !validKind(req.EventKind) {
			writeError(w, http.StatusBadRequest, "event_kind must be drinking, study or *")
			return
		}
		hk.EventKind = req.EventKind
	}
	if req.PluginName != "" {
		if !h.checkPlugin(w, req.PluginName) {
			return
		}
		hk.PluginName = req.PluginName
	}
	if req.Config != nil {
		hk.Config = req.Config
	}
	if req.Enabled != nil {
		hk.Enabled = *req.Enabled
	}

	if err := h.store.Hooks().Update(hk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update hook")
		return
	}
	writeJSON(w, http.StatusOK, toHookResponse(hk))
}

func (h *HookHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Hooks().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete hook")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Events      []string `json:"events"`
}

// PluginsHandler lists installed plugins at GET /api/plugins.
func PluginsHandler(plugins PluginRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		list := plugins.List()
		out := make([]pluginResponse, 0, len(list))
		for _, p := range list {
			events := p.Manifest.Events
			if events == nil {
				events = []string{}
			}
			out = append(out, pluginResponse{
				Name:        p.Manifest.Name,
				Version:     p.Manifest.Version,
				Description: p.Manifest.Description,
				Events:      events,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"plugins": out})
	}
}
