package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/meridiancap/cms-apiserver/internal/services"
	"github.com/meridiancap/cms-apiserver/types"
)

// SettingsHandler serves the public settings map and the admin settings
// manager. Writes are upserts keyed by setting_key.
type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// PublicMap serves GET /api/public/settings: all settings as a
// key→value map.
func (h *SettingsHandler) PublicMap(w http.ResponseWriter, r *http.Request) {
	values, err := h.settings.Map(r.Context())
	if err != nil {
		writeRepoError(w, r, err, "settings not found")
		return
	}
	writeSuccess(w, "settings", values)
}

// Manage serves /api/admin/settings-manager: GET lists full rows, POST
// upserts one setting by key.
func (h *SettingsHandler) Manage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.settings.List(r.Context())
		if err != nil {
			writeRepoError(w, r, err, "settings not found")
			return
		}
		writeSuccess(w, "settings list", settings)
	case http.MethodPost, http.MethodPut:
		var setting types.Setting
		if err := json.NewDecoder(r.Body).Decode(&setting); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.settings.Set(r.Context(), setting); err != nil {
			writeRepoError(w, r, err, "")
			return
		}
		writeSuccess(w, "setting saved", map[string]any{"setting_key": setting.SettingKey})
	default:
		MethodNotAllowed(w, r)
	}
}

// ContentHandler serves public page content and the admin content
// manager. Writes are upserts keyed by section_key.
type ContentHandler struct {
	content *services.ContentService
}

func NewContentHandler(content *services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// PublicPage serves GET /api/public/content?page=X: the page's active
// sections as a key→content map.
func (h *ContentHandler) PublicPage(w http.ResponseWriter, r *http.Request) {
	page := strings.TrimSpace(r.URL.Query().Get("page"))
	if page == "" {
		writeValidation(w, map[string]string{"page": "page is required"})
		return
	}

	values, err := h.content.MapByPage(r.Context(), page)
	if err != nil {
		writeRepoError(w, r, err, "content not found")
		return
	}
	writeSuccess(w, "content", values)
}

// Manage serves /api/admin/content-manager: GET lists all sections
// including inactive ones, POST upserts one section by key.
func (h *ContentHandler) Manage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sections, err := h.content.List(r.Context(), true)
		if err != nil {
			writeRepoError(w, r, err, "content not found")
			return
		}
		writeSuccess(w, "content list", sections)
	case http.MethodPost, http.MethodPut:
		var section types.ContentSection
		if err := json.NewDecoder(r.Body).Decode(&section); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.content.Set(r.Context(), section); err != nil {
			writeRepoError(w, r, err, "")
			return
		}
		writeSuccess(w, "content section saved", map[string]any{"section_key": section.SectionKey})
	default:
		MethodNotAllowed(w, r)
	}
}
