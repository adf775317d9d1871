package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/meridiancap/cms-apiserver/internal/storage"
	"github.com/meridiancap/cms-apiserver/internal/store"
	"github.com/meridiancap/cms-apiserver/types"
)

// allowedUploadExtensions is the extension allow-list for admin uploads:
// web images plus PDF for report files.
var allowedUploadExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
}

// Upload is the result of storing one file.
type Upload struct {
	// MediaID is the surrogate key of the media row recorded for the
	// file.
	MediaID int `json:"media_id"`

	// URL is the public URL the stored object is served under.
	URL string `json:"url"`

	// Size is the stored object's size in bytes.
	Size int64 `json:"size"`
}

// MediaService stores uploaded files in object storage and records a
// media row for each. A nil storage backend disables uploads.
type MediaService struct {
	storage       *storage.Storage
	media         ResourceRepository
	publicBaseURL string
}

func NewMediaService(st *storage.Storage, media ResourceRepository, publicBaseURL string) *MediaService {
	return &MediaService{
		storage:       st,
		media:         media,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Enabled reports whether an object-storage backend is configured.
func (s *MediaService) Enabled() bool {
	return s.storage != nil
}

// Upload validates the file against the extension allow-list, writes it
// to object storage under a random key prefix, and records a media row.
func (s *MediaService) Upload(ctx context.Context, filename string, data []byte, contentType string) (Upload, error) {
	if s.storage == nil {
		return Upload{}, fmt.Errorf("upload storage is not configured")
	}

	ext := strings.ToLower(path.Ext(filename))
	detected, ok := allowedUploadExtensions[ext]
	if !ok {
		return Upload{}, store.NewValidationError("file", fmt.Sprintf("file type %q is not allowed", ext))
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = detected
	}

	key, err := objectKey(filename)
	if err != nil {
		return Upload{}, err
	}

	size := int64(len(data))
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), size, contentType); err != nil {
		return Upload{}, err
	}

	url := s.publicBaseURL + "/" + key
	mediaID, err := s.media.Create(ctx, types.Resource{
		"file_name":  path.Base(filename),
		"url":        url,
		"mime_type":  contentType,
		"size_bytes": size,
	})
	if err != nil {
		// The object is already stored; surface the DB failure rather
		// than leaving the caller with a URL that has no record.
		return Upload{}, err
	}

	return Upload{MediaID: mediaID, URL: url, Size: size}, nil
}

// objectKey builds a collision-free storage key: a random hex prefix
// followed by a slugified form of the original base name.
func objectKey(filename string) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}

	base := path.Base(filename)
	ext := path.Ext(base)
	name := store.Slugify(strings.TrimSuffix(base, ext))
	if name == "" {
		name = "file"
	}
	return hex.EncodeToString(buf[:]) + "-" + name + strings.ToLower(ext), nil
}
