package handlers

import (
	"net/http"

	"github.com/meridiancap/cms-apiserver/internal/services"
)

// ContactHandler accepts public contact-form submissions.
type ContactHandler struct {
	contact *services.ContactService
}

func NewContactHandler(contact *services.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit serves POST /api/contact. The submission is stored first; the
// notification publish is best-effort and cannot fail the request.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	attrs, ok := decodeAttrs(w, r)
	if !ok {
		return
	}

	id, err := h.contact.Submit(r.Context(), attrs)
	if err != nil {
		writeRepoError(w, r, err, "")
		return
	}
	writeSuccess(w, "message received", map[string]any{"id": id})
}
