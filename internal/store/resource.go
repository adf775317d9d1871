package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meridiancap/cms-apiserver/types"
)

// ResourceRepository is the single, schema-driven persistence layer shared
// by every content entity. One instance is constructed per types.Schema;
// the schema supplies the table name, field list, visibility flag, delete
// policy, ordering rule, and optional slug policy.
type ResourceRepository struct {
	db     *sql.DB
	schema types.Schema
}

func NewResourceRepository(db *sql.DB, schema types.Schema) *ResourceRepository {
	return &ResourceRepository{db: db, schema: schema}
}

// Schema returns the schema this repository was instantiated for.
func (r *ResourceRepository) Schema() types.Schema {
	return r.schema
}

// columns returns the full select list in stable order: id, the schema's
// fields, then the common columns the table carries.
func (r *ResourceRepository) columns() []string {
	cols := make([]string, 0, len(r.schema.Fields)+5)
	cols = append(cols, "id")
	for _, f := range r.schema.Fields {
		cols = append(cols, f.Column)
	}
	if r.schema.HasOrder {
		cols = append(cols, "display_order")
	}
	if r.schema.HasActive {
		cols = append(cols, "is_active")
	}
	cols = append(cols, "created_at", "updated_at")
	return cols
}

// orderClause builds the deterministic ordering shared by all list reads:
// display_order ascending first (when present), then the schema's
// secondary keys, then created_at descending as the final tiebreaker.
func (r *ResourceRepository) orderClause() string {
	keys := make([]string, 0, len(r.schema.OrderBy)+2)
	if r.schema.HasOrder {
		keys = append(keys, "display_order ASC")
	}
	for _, k := range r.schema.OrderBy {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		keys = append(keys, k.Column+" "+dir)
	}
	keys = append(keys, "created_at DESC")
	return " ORDER BY " + strings.Join(keys, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRow scans one row into a Resource using typed holders derived from
// the schema's field kinds.
func (r *ResourceRepository) scanRow(row rowScanner) (types.Resource, error) {
	var id int
	dest := make([]any, 0, len(r.schema.Fields)+5)
	dest = append(dest, &id)

	strVals := make([]string, len(r.schema.Fields))
	intVals := make([]int64, len(r.schema.Fields))
	floatVals := make([]float64, len(r.schema.Fields))
	boolVals := make([]bool, len(r.schema.Fields))
	for i, f := range r.schema.Fields {
		switch f.Kind {
		case types.FieldInt:
			dest = append(dest, &intVals[i])
		case types.FieldFloat:
			dest = append(dest, &floatVals[i])
		case types.FieldBool:
			dest = append(dest, &boolVals[i])
		default:
			dest = append(dest, &strVals[i])
		}
	}

	var displayOrder int64
	var isActive bool
	var createdAt, updatedAt time.Time
	if r.schema.HasOrder {
		dest = append(dest, &displayOrder)
	}
	if r.schema.HasActive {
		dest = append(dest, &isActive)
	}
	dest = append(dest, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	resource := types.Resource{"id": id}
	for i, f := range r.schema.Fields {
		switch f.Kind {
		case types.FieldInt:
			resource[f.Column] = intVals[i]
		case types.FieldFloat:
			resource[f.Column] = floatVals[i]
		case types.FieldBool:
			resource[f.Column] = boolVals[i]
		default:
			resource[f.Column] = strVals[i]
		}
	}
	if r.schema.HasOrder {
		resource["display_order"] = displayOrder
	}
	if r.schema.HasActive {
		resource["is_active"] = isActive
	}
	resource["created_at"] = createdAt
	resource["updated_at"] = updatedAt
	return resource, nil
}

// List returns rows matching the given column filters, ordered by the
// schema's ordering rule. Non-admin reads always AND in is_active = TRUE
// when the table carries the flag. A limit of zero means no limit.
//
// Filter keys are column names; only columns declared in the schema's
// filter allow-list are applied, everything else is ignored.
func (r *ResourceRepository) List(ctx context.Context, filters map[string]any, limit int, forAdmin bool) ([]types.Resource, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(r.columns(), ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(r.schema.Table)

	var clauses []string
	var args []any
	if !forAdmin && r.schema.HasActive {
		clauses = append(clauses, "is_active = TRUE")
	}
	for _, spec := range r.schema.Filters {
		value, ok := filters[spec.Column]
		if !ok {
			continue
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", spec.Column, len(args)))
	}
	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}
	sb.WriteString(r.orderClause())
	if limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", limit))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := make([]types.Resource, 0)
	for rows.Next() {
		resource, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return resources, nil
}

// GetByID fetches one row by surrogate key, applying the same visibility
// rule as List: public reads cannot see inactive rows.
func (r *ResourceRepository) GetByID(ctx context.Context, id int, forAdmin bool) (types.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
		strings.Join(r.columns(), ", "), r.schema.Table)
	if !forAdmin && r.schema.HasActive {
		query += " AND is_active = TRUE"
	}

	resource, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return resource, nil
}

// Create validates and inserts a new row and returns its surrogate key.
// Required fields must be present and non-empty; optional fields fall
// back to their declared defaults. For slugged schemas, a missing slug is
// derived from the source field and uniqueness-probed.
func (r *ResourceRepository) Create(ctx context.Context, attrs types.Resource) (int, error) {
	values, err := r.prepareWrite(ctx, attrs, 0)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	cols := make([]string, 0, len(r.schema.Fields)+4)
	args := make([]any, 0, len(r.schema.Fields)+4)
	for _, f := range r.schema.Fields {
		cols = append(cols, f.Column)
		args = append(args, values[f.Column])
	}
	if r.schema.HasOrder {
		cols = append(cols, "display_order")
		args = append(args, values["display_order"])
	}
	if r.schema.HasActive {
		cols = append(cols, "is_active")
		args = append(args, values["is_active"])
	}
	cols = append(cols, "created_at", "updated_at")
	args = append(args, now, now)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.schema.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	var id int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Update fully replaces the tracked fields of the row with the given id.
// This is a whole-record write, not a partial patch: absent optional
// fields revert to their defaults. Slugged schemas re-derive and re-probe
// the slug, excluding the row's own id from the collision check.
func (r *ResourceRepository) Update(ctx context.Context, id int, attrs types.Resource) error {
	values, err := r.prepareWrite(ctx, attrs, id)
	if err != nil {
		return err
	}

	assignments := make([]string, 0, len(r.schema.Fields)+3)
	args := make([]any, 0, len(r.schema.Fields)+4)
	for _, f := range r.schema.Fields {
		args = append(args, values[f.Column])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", f.Column, len(args)))
	}
	if r.schema.HasOrder {
		args = append(args, values["display_order"])
		assignments = append(assignments, fmt.Sprintf("display_order = $%d", len(args)))
	}
	if r.schema.HasActive {
		args = append(args, values["is_active"])
		assignments = append(assignments, fmt.Sprintf("is_active = $%d", len(args)))
	}
	args = append(args, time.Now())
	assignments = append(assignments, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		r.schema.Table, strings.Join(assignments, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete applies the schema's fixed delete policy: hard-deleted entities
// lose the row permanently, soft-deleted entities keep the row with
// is_active flipped to false.
func (r *ResourceRepository) Delete(ctx context.Context, id int) error {
	var query string
	var args []any
	if r.schema.Delete == types.SoftDelete {
		query = fmt.Sprintf("UPDATE %s SET is_active = FALSE, updated_at = $1 WHERE id = $2", r.schema.Table)
		args = []any{time.Now(), id}
	} else {
		query = fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.schema.Table)
		args = []any{id}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// prepareWrite validates attrs against the schema and produces the final
// column values for an insert or update. excludeID is the row's own id on
// update (excluded from slug collision checks) and zero on create.
func (r *ResourceRepository) prepareWrite(ctx context.Context, attrs types.Resource, excludeID int) (map[string]any, error) {
	values := make(map[string]any, len(r.schema.Fields)+2)
	invalid := &ValidationError{Fields: map[string]string{}}

	for _, f := range r.schema.Fields {
		raw, present := attrs[f.Column]
		if present {
			coerced, ok := coerceValue(f.Kind, raw)
			if !ok {
				invalid.Fields[f.Column] = fmt.Sprintf("%s has an invalid value", f.Column)
				continue
			}
			if f.Required && f.Kind == types.FieldString && strings.TrimSpace(coerced.(string)) == "" {
				invalid.Fields[f.Column] = fmt.Sprintf("%s is required", f.Column)
				continue
			}
			values[f.Column] = coerced
			continue
		}

		if f.Required {
			invalid.Fields[f.Column] = fmt.Sprintf("%s is required", f.Column)
			continue
		}
		values[f.Column] = fieldDefault(f)
	}

	if r.schema.HasOrder {
		order, ok := coerceValue(types.FieldInt, attrs["display_order"])
		if !ok {
			order = int64(0)
		}
		values["display_order"] = order
	}
	if r.schema.HasActive {
		active, ok := coerceValue(types.FieldBool, attrs["is_active"])
		if !ok {
			active = true
		}
		values["is_active"] = active
	}

	if len(invalid.Fields) > 0 {
		return nil, invalid
	}

	if r.schema.Slug != nil {
		if err := r.applySlug(ctx, values, excludeID); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func (r *ResourceRepository) applySlug(ctx context.Context, values map[string]any, excludeID int) error {
	policy := r.schema.Slug
	base, _ := values[policy.Column].(string)
	if strings.TrimSpace(base) == "" {
		source, _ := values[policy.SourceColumn].(string)
		base = source
	}
	base = Slugify(base)
	if base == "" {
		base = r.schema.Table
	}

	unique, err := r.ensureUniqueSlug(ctx, policy.Column, base, excludeID)
	if err != nil {
		return err
	}
	values[policy.Column] = unique
	return nil
}

// ensureUniqueSlug probes for collisions, appending -2, -3, ... until the
// candidate is free. Past maxSlugProbes a timestamp+random suffix is used
// unconditionally so the loop always terminates. The migration's unique
// index remains the backstop against concurrent writers.
func (r *ResourceRepository) ensureUniqueSlug(ctx context.Context, column, base string, excludeID int) (string, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND id <> $2)",
		r.schema.Table, column)

	candidate := base
	for probe := 2; ; probe++ {
		var taken bool
		if err := r.db.QueryRowContext(ctx, query, candidate, excludeID).Scan(&taken); err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		if probe > maxSlugProbes {
			return fallbackSlug(base, time.Now()), nil
		}
		candidate = fmt.Sprintf("%s-%d", base, probe)
	}
}

// coerceValue converts a raw attribute (typically a JSON-decoded value)
// into the field kind's canonical Go type. Returns false when the value
// cannot be interpreted; callers treat such inputs as absent or invalid
// depending on context.
func coerceValue(kind types.FieldKind, raw any) (any, bool) {
	if raw == nil {
		return nil, false
	}
	switch kind {
	case types.FieldString:
		if s, ok := raw.(string); ok {
			return s, true
		}
		return nil, false
	case types.FieldInt:
		switch v := raw.(type) {
		case int:
			return int64(v), true
		case int64:
			return v, true
		case float64:
			return int64(v), true
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n, true
			}
		}
		return nil, false
	case types.FieldFloat:
		switch v := raw.(type) {
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
		return nil, false
	case types.FieldBool:
		switch v := raw.(type) {
		case bool:
			return v, true
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "1", "true", "yes":
				return true, true
			case "0", "false", "no":
				return false, true
			}
		}
		return nil, false
	}
	return nil, false
}

func fieldDefault(f types.Field) any {
	if f.Default != nil {
		if v, ok := coerceValue(f.Kind, f.Default); ok {
			return v
		}
	}
	switch f.Kind {
	case types.FieldInt:
		return int64(0)
	case types.FieldFloat:
		return float64(0)
	case types.FieldBool:
		return false
	default:
		return ""
	}
}
