package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/meridiancap/cms-apiserver/internal/services"
	"github.com/meridiancap/cms-apiserver/types"
)

// ResourceHandler serves one schema-driven content entity: a public
// read-only endpoint and an admin manager endpoint carrying full CRUD.
// One instance serves one schema; every entity shares this code.
type ResourceHandler struct {
	service *services.ResourceService
}

func NewResourceHandler(service *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// Public serves GET /api/{resource}: a filtered list, or a single row
// when ?id=N is present. Inactive rows are never visible here.
func (h *ResourceHandler) Public(w http.ResponseWriter, r *http.Request) {
	h.serveRead(w, r, false)
}

// Manage serves /api/admin/{resource}-manager and dispatches on the HTTP
// method: GET reads with admin visibility, POST creates, PUT fully
// replaces, DELETE applies the entity's delete policy.
func (h *ResourceHandler) Manage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.serveRead(w, r, true)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		MethodNotAllowed(w, r)
	}
}

func (h *ResourceHandler) serveRead(w http.ResponseWriter, r *http.Request, forAdmin bool) {
	name := h.service.Schema().Name

	if raw := strings.TrimSpace(r.URL.Query().Get("id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		resource, err := h.service.GetByID(r.Context(), id, forAdmin)
		if err != nil {
			writeRepoError(w, r, err, fmt.Sprintf("%s not found", name))
			return
		}
		writeSuccess(w, name, resource)
		return
	}

	filters, limit := h.service.ParseFilters(r.URL.Query())
	resources, err := h.service.List(r.Context(), filters, limit, forAdmin)
	if err != nil {
		writeRepoError(w, r, err, fmt.Sprintf("%s not found", name))
		return
	}
	writeSuccess(w, name+" list", resources)
}

func (h *ResourceHandler) create(w http.ResponseWriter, r *http.Request) {
	attrs, ok := decodeAttrs(w, r)
	if !ok {
		return
	}

	id, err := h.service.Create(r.Context(), attrs)
	if err != nil {
		writeRepoError(w, r, err, "")
		return
	}
	writeSuccess(w, fmt.Sprintf("%s created", h.service.Schema().Name), map[string]any{"id": id})
}

func (h *ResourceHandler) update(w http.ResponseWriter, r *http.Request) {
	attrs, ok := decodeAttrs(w, r)
	if !ok {
		return
	}

	id := requestID(r, attrs)
	if id < 1 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	name := h.service.Schema().Name
	if err := h.service.Update(r.Context(), id, attrs); err != nil {
		writeRepoError(w, r, err, fmt.Sprintf("%s not found", name))
		return
	}
	writeSuccess(w, fmt.Sprintf("%s updated", name), map[string]any{"id": id})
}

func (h *ResourceHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := requestID(r, nil)
	if id < 1 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	name := h.service.Schema().Name
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeRepoError(w, r, err, fmt.Sprintf("%s not found", name))
		return
	}
	writeSuccess(w, fmt.Sprintf("%s deleted", name), nil)
}

func decodeAttrs(w http.ResponseWriter, r *http.Request) (types.Resource, bool) {
	var attrs types.Resource
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	// A body of JSON null decodes into a nil map without error; treat it
	// as an empty submission so callers can write to the map.
	if attrs == nil {
		attrs = types.Resource{}
	}
	return attrs, true
}

// requestID resolves the target row id from the query string, falling
// back to an "id" field in the decoded body.
func requestID(r *http.Request, attrs types.Resource) int {
	if raw := strings.TrimSpace(r.URL.Query().Get("id")); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			return id
		}
		return 0
	}
	if attrs != nil {
		return attrs.ID()
	}
	return 0
}
