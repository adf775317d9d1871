package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/meridiancap/cms-apiserver/types"
)

// ContentRepository handles persistence for page content sections.
// Sections are keyed by section_key with the same upsert semantics as
// settings.
type ContentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Set inserts the section or replaces the existing row with the same
// section_key in a single statement.
func (r *ContentRepository) Set(ctx context.Context, section types.ContentSection) error {
	const query = `
		INSERT INTO content_sections (section_key, section_name, content, page, display_order, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (section_key) DO UPDATE
		SET section_name = EXCLUDED.section_name,
			content = EXCLUDED.content,
			page = EXCLUDED.page,
			display_order = EXCLUDED.display_order,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(
		ctx,
		query,
		section.SectionKey,
		section.SectionName,
		section.Content,
		section.Page,
		section.DisplayOrder,
		section.IsActive,
		time.Now(),
	)
	return err
}

// List returns content sections. Non-admin reads see only active
// sections. Ordering is deterministic: page, display_order, then key.
func (r *ContentRepository) List(ctx context.Context, forAdmin bool) ([]types.ContentSection, error) {
	query := `
		SELECT id, section_key, section_name, content, page, display_order, is_active, updated_at
		FROM content_sections`
	if !forAdmin {
		query += `
		WHERE is_active = TRUE`
	}
	query += `
		ORDER BY page ASC, display_order ASC, section_key ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := make([]types.ContentSection, 0)
	for rows.Next() {
		var s types.ContentSection
		if err := rows.Scan(&s.ID, &s.SectionKey, &s.SectionName, &s.Content, &s.Page, &s.DisplayOrder, &s.IsActive, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// MapByPage returns the active sections of one page as a key→content
// map, the shape the public content endpoint serves.
func (r *ContentRepository) MapByPage(ctx context.Context, page string) (map[string]string, error) {
	const query = `
		SELECT section_key, content
		FROM content_sections
		WHERE page = $1 AND is_active = TRUE`
	rows, err := r.db.QueryContext(ctx, query, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, content string
		if err := rows.Scan(&key, &content); err != nil {
			return nil, err
		}
		values[key] = content
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
