package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/meridiancap/cms-apiserver/types"
)

const (
	defaultListLimit = 0 // unlimited
	maxListLimit     = 200
)

// ResourceRepository defines the persistence operations of the generic
// schema-driven repository.
type ResourceRepository interface {
	Schema() types.Schema
	List(ctx context.Context, filters map[string]any, limit int, forAdmin bool) ([]types.Resource, error)
	GetByID(ctx context.Context, id int, forAdmin bool) (types.Resource, error)
	Create(ctx context.Context, attrs types.Resource) (int, error)
	Update(ctx context.Context, id int, attrs types.Resource) error
	Delete(ctx context.Context, id int) error
}

// ResourceService encapsulates the use-cases shared by every content
// entity. One instance serves one schema.
type ResourceService struct {
	repo ResourceRepository
}

func NewResourceService(repo ResourceRepository) *ResourceService {
	return &ResourceService{repo: repo}
}

// Schema returns the schema of the underlying repository.
func (s *ResourceService) Schema() types.Schema {
	return s.repo.Schema()
}

// ParseFilters extracts the schema's allow-listed filters plus the
// optional result limit from query parameters. Values that fail numeric
// or boolean coercion are treated as absent, never as errors.
func (s *ResourceService) ParseFilters(query url.Values) (map[string]any, int) {
	schema := s.repo.Schema()
	filters := make(map[string]any)
	for _, spec := range schema.Filters {
		raw := strings.TrimSpace(query.Get(spec.Param))
		if raw == "" {
			continue
		}
		if value, ok := coerceFilter(spec.Kind, raw); ok {
			filters[spec.Column] = value
		}
	}

	limit := defaultListLimit
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return filters, limit
}

func coerceFilter(kind types.FieldKind, raw string) (any, bool) {
	switch kind {
	case types.FieldInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, true
		}
		return nil, false
	case types.FieldFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, true
		}
		return nil, false
	case types.FieldBool:
		switch strings.ToLower(raw) {
		case "1", "true", "yes":
			return true, true
		case "0", "false", "no":
			return false, true
		}
		return nil, false
	default:
		return raw, true
	}
}

func (s *ResourceService) List(ctx context.Context, filters map[string]any, limit int, forAdmin bool) ([]types.Resource, error) {
	return s.repo.List(ctx, filters, limit, forAdmin)
}

func (s *ResourceService) GetByID(ctx context.Context, id int, forAdmin bool) (types.Resource, error) {
	return s.repo.GetByID(ctx, id, forAdmin)
}

func (s *ResourceService) Create(ctx context.Context, attrs types.Resource) (int, error) {
	return s.repo.Create(ctx, attrs)
}

func (s *ResourceService) Update(ctx context.Context, id int, attrs types.Resource) error {
	return s.repo.Update(ctx, id, attrs)
}

func (s *ResourceService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
