package types

// Resource is a single row of a schema-driven content entity, keyed by
// column name. Common columns (id, display_order, is_active, created_at,
// updated_at) appear alongside the entity-specific attributes declared by
// the schema.
//
// Values use the Go types produced by the field kinds: string, int64,
// float64, bool, and time.Time for the timestamp columns.
type Resource map[string]any

// ID returns the surrogate key of the resource, or 0 if unset.
func (r Resource) ID() int {
	switch v := r["id"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// FieldKind identifies the Go/SQL type of a schema field.
type FieldKind int

// Supported field kinds.
const (
	// FieldString is a short or long text column, scanned as string.
	FieldString FieldKind = iota

	// FieldInt is an integer column, scanned as int64.
	FieldInt

	// FieldFloat is a numeric column, scanned as float64.
	FieldFloat

	// FieldBool is a boolean column, scanned as bool.
	FieldBool
)

// Field declares one entity-specific attribute of a schema.
type Field struct {
	// Column is the database column name, also used as the JSON key.
	Column string

	// Kind is the value type of the column.
	Kind FieldKind

	// Required marks the field as mandatory on create and update.
	// Missing required fields produce a validation error.
	Required bool

	// Default is the value written when the field is absent from a
	// write and Required is false. A nil Default falls back to the
	// zero value of the kind.
	Default any
}

// DeletePolicy determines what Delete does for an entity. The policy is
// fixed per entity type and never caller-selectable.
type DeletePolicy int

const (
	// HardDelete removes the row permanently.
	HardDelete DeletePolicy = iota

	// SoftDelete flips is_active to false and retains the row. Only
	// valid for schemas with an active flag.
	SoftDelete
)

// OrderKey is one component of a schema's ordering rule.
type OrderKey struct {
	Column string
	Desc   bool
}

// FilterSpec declares one allow-listed query filter for public and admin
// list reads. Filters are equality predicates on a single column; inputs
// are coerced to the field kind, and values that fail coercion are treated
// as absent rather than as errors.
type FilterSpec struct {
	// Param is the query-string parameter name.
	Param string

	// Column is the database column the filter compares against.
	Column string

	// Kind is the expected value type, used for coercion.
	Kind FieldKind
}

// SlugPolicy declares that a schema maintains a unique, URL-safe slug
// derived from another field when not supplied explicitly.
type SlugPolicy struct {
	// Column is the slug column.
	Column string

	// SourceColumn is the field the slug is derived from (normalized,
	// lowercased, hyphenated) when the write omits the slug.
	SourceColumn string
}

// Schema is the full configuration of one content entity. A single
// generic repository is instantiated per schema; everything that varies
// between entities (table, fields, delete policy, ordering, slug rule,
// filters) is data here rather than code.
type Schema struct {
	// Name is the singular resource name used in routes and messages
	// (e.g. "project").
	Name string

	// Table is the database table name.
	Table string

	// Fields are the entity-specific attributes, in column order.
	Fields []Field

	// HasActive reports whether the table carries an is_active
	// visibility flag. Public reads on such tables always filter
	// is_active = true; admin reads return all rows.
	HasActive bool

	// HasOrder reports whether the table carries a display_order column
	// used as the primary sort key.
	HasOrder bool

	// Delete is the entity's fixed delete policy.
	Delete DeletePolicy

	// OrderBy are the secondary sort keys applied between display_order
	// and the created_at tiebreaker.
	OrderBy []OrderKey

	// Slug, when non-nil, enables slug derivation and uniqueness
	// probing for the entity.
	Slug *SlugPolicy

	// Filters are the allow-listed list filters.
	Filters []FilterSpec
}

// Field returns the declared field for column, or false if the column is
// not part of the schema.
func (s Schema) Field(column string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return Field{}, false
}
