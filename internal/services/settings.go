package services

import (
	"context"
	"strings"

	"github.com/meridiancap/cms-apiserver/internal/store"
	"github.com/meridiancap/cms-apiserver/types"
)

// SettingRepository defines persistence operations for site settings.
type SettingRepository interface {
	Set(ctx context.Context, setting types.Setting) error
	List(ctx context.Context) ([]types.Setting, error)
	Map(ctx context.Context) (map[string]string, error)
}

// ContentRepository defines persistence operations for content sections.
type ContentRepository interface {
	Set(ctx context.Context, section types.ContentSection) error
	List(ctx context.Context, forAdmin bool) ([]types.ContentSection, error)
	MapByPage(ctx context.Context, page string) (map[string]string, error)
}

// SettingsService encapsulates setting use-cases.
type SettingsService struct {
	repo SettingRepository
}

func NewSettingsService(repo SettingRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Set upserts a setting by key. The key is the identity: setting the
// same key twice leaves exactly one row holding the latest value.
func (s *SettingsService) Set(ctx context.Context, setting types.Setting) error {
	setting.SettingKey = strings.TrimSpace(setting.SettingKey)
	if setting.SettingKey == "" {
		return store.NewValidationError("setting_key", "setting_key is required")
	}
	if setting.SettingType == "" {
		setting.SettingType = "text"
	}
	if setting.Category == "" {
		setting.Category = "general"
	}
	return s.repo.Set(ctx, setting)
}

func (s *SettingsService) List(ctx context.Context) ([]types.Setting, error) {
	return s.repo.List(ctx)
}

func (s *SettingsService) Map(ctx context.Context) (map[string]string, error) {
	return s.repo.Map(ctx)
}

// ContentService encapsulates content-section use-cases.
type ContentService struct {
	repo ContentRepository
}

func NewContentService(repo ContentRepository) *ContentService {
	return &ContentService{repo: repo}
}

// Set upserts a section by key.
func (s *ContentService) Set(ctx context.Context, section types.ContentSection) error {
	section.SectionKey = strings.TrimSpace(section.SectionKey)
	if section.SectionKey == "" {
		return store.NewValidationError("section_key", "section_key is required")
	}
	return s.repo.Set(ctx, section)
}

func (s *ContentService) List(ctx context.Context, forAdmin bool) ([]types.ContentSection, error) {
	return s.repo.List(ctx, forAdmin)
}

func (s *ContentService) MapByPage(ctx context.Context, page string) (map[string]string, error) {
	return s.repo.MapByPage(ctx, page)
}
