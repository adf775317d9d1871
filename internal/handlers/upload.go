package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/meridiancap/cms-apiserver/internal/services"
)

const (
	maxUploadMemory = 8 << 20
	maxUploadBytes  = 32 << 20
	formFieldFile   = "file"
)

// UploadHandler accepts multipart media uploads from the admin
// dashboard.
type UploadHandler struct {
	media *services.MediaService
}

func NewUploadHandler(media *services.MediaService) *UploadHandler {
	return &UploadHandler{media: media}
}

// Upload serves POST /api/admin/upload: stores the file in object
// storage, records a media row, and returns the public URL and size.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.media.Enabled() {
		writeError(w, http.StatusInternalServerError, "upload storage is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeValidation(w, map[string]string{formFieldFile: "file is required"})
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, maxUploadBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upload, err := h.media.Upload(r.Context(), header.Filename, data, header.Header.Get("Content-Type"))
	if err != nil {
		writeRepoError(w, r, err, "")
		return
	}

	writeSuccess(w, "file uploaded", upload)
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
