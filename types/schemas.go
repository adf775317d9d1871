package types

// Schemas for every content entity managed by the API. The table-level
// differences between entities (delete policy, visibility flag, ordering,
// slugs, filters) live entirely in this data; the repository, service,
// and handler layers are shared.

// ProjectSchema describes investment projects shown in the portfolio.
var ProjectSchema = Schema{
	Name:      "project",
	Table:     "projects",
	HasActive: true,
	HasOrder:  true,
	Delete:    HardDelete,
	Fields: []Field{
		{Column: "title", Kind: FieldString, Required: true},
		{Column: "slug", Kind: FieldString},
		{Column: "description", Kind: FieldString},
		{Column: "category", Kind: FieldString},
		{Column: "status", Kind: FieldString, Default: "active"},
		{Column: "year", Kind: FieldInt},
		{Column: "investment_amount", Kind: FieldFloat},
		{Column: "image_url", Kind: FieldString},
		{Column: "is_featured", Kind: FieldBool, Default: false},
	},
	OrderBy: []OrderKey{{Column: "year", Desc: true}},
	Slug:    &SlugPolicy{Column: "slug", SourceColumn: "title"},
	Filters: []FilterSpec{
		{Param: "category", Column: "category", Kind: FieldString},
		{Param: "status", Column: "status", Kind: FieldString},
		{Param: "featured", Column: "is_featured", Kind: FieldBool},
		{Param: "year", Column: "year", Kind: FieldInt},
	},
}

// ServiceSchema describes the services offered by the company. Services
// carry a unique slug used in public URLs.
var ServiceSchema = Schema{
	Name:      "service",
	Table:     "services",
	HasActive: true,
	HasOrder:  true,
	Delete:    HardDelete,
	Fields: []Field{
		{Column: "title", Kind: FieldString, Required: true},
		{Column: "slug", Kind: FieldString},
		{Column: "summary", Kind: FieldString},
		{Column: "description", Kind: FieldString},
		{Column: "icon", Kind: FieldString},
		{Column: "image_url", Kind: FieldString},
		{Column: "is_featured", Kind: FieldBool, Default: false},
	},
	OrderBy: []OrderKey{{Column: "title"}},
	Slug:    &SlugPolicy{Column: "slug", SourceColumn: "title"},
	Filters: []FilterSpec{
		{Param: "featured", Column: "is_featured", Kind: FieldBool},
	},
}

// ReportSchema describes annual and periodic reports.
var ReportSchema = Schema{
	Name:      "report",
	Table:     "reports",
	HasActive: true,
	HasOrder:  true,
	Delete:    HardDelete,
	Fields: []Field{
		{Column: "title", Kind: FieldString, Required: true},
		{Column: "description", Kind: FieldString},
		{Column: "report_type", Kind: FieldString, Default: "annual"},
		{Column: "year", Kind: FieldInt, Required: true},
		{Column: "file_url", Kind: FieldString},
	},
	OrderBy: []OrderKey{{Column: "year", Desc: true}},
	Filters: []FilterSpec{
		{Param: "year", Column: "year", Kind: FieldInt},
		{Param: "type", Column: "report_type", Kind: FieldString},
	},
}

// FAQSchema describes frequently asked questions.
var FAQSchema = Schema{
	Name:      "faq",
	Table:     "faqs",
	HasActive: true,
	HasOrder:  true,
	Delete:    HardDelete,
	Fields: []Field{
		{Column: "question", Kind: FieldString, Required: true},
		{Column: "answer", Kind: FieldString, Required: true},
		{Column: "category", Kind: FieldString, Default: "general"},
	},
	Filters: []FilterSpec{
		{Param: "category", Column: "category", Kind: FieldString},
	},
}

// AboutItemSchema describes blocks on the about page. About items are the
// one soft-deleted entity: Delete flips is_active and retains the row.
var AboutItemSchema = Schema{
	Name:      "about item",
	Table:     "about_items",
	HasActive: true,
	HasOrder:  true,
	Delete:    SoftDelete,
	Fields: []Field{
		{Column: "title", Kind: FieldString, Required: true},
		{Column: "content", Kind: FieldString},
		{Column: "item_type", Kind: FieldString, Default: "section"},
		{Column: "image_url", Kind: FieldString},
	},
	Filters: []FilterSpec{
		{Param: "type", Column: "item_type", Kind: FieldString},
	},
}

// ProcessItemSchema describes the numbered steps of the investment
// process shown on the landing page.
var ProcessItemSchema = Schema{
	Name:      "process item",
	Table:     "process_items",
	HasActive: true,
	HasOrder:  true,
	Delete:    HardDelete,
	Fields: []Field{
		{Column: "title", Kind: FieldString, Required: true},
		{Column: "description", Kind: FieldString},
		{Column: "step_number", Kind: FieldInt, Required: true},
		{Column: "icon", Kind: FieldString},
	},
	OrderBy: []OrderKey{{Column: "step_number"}},
}

// ContactSchema describes contact-form submissions. Rows are created by
// the public contact endpoint and read only by admins; there is no
// visibility flag and no display order.
var ContactSchema = Schema{
	Name:   "contact",
	Table:  "contacts",
	Delete: HardDelete,
	Fields: []Field{
		{Column: "name", Kind: FieldString, Required: true},
		{Column: "email", Kind: FieldString, Required: true},
		{Column: "phone", Kind: FieldString},
		{Column: "subject", Kind: FieldString},
		{Column: "message", Kind: FieldString, Required: true},
		{Column: "is_read", Kind: FieldBool, Default: false},
	},
	Filters: []FilterSpec{
		{Param: "read", Column: "is_read", Kind: FieldBool},
	},
}

// MediaSchema describes uploaded media assets. Rows are written by the
// upload endpoint and by the admin media manager.
var MediaSchema = Schema{
	Name:      "media",
	Table:     "media",
	HasActive: true,
	HasOrder:  true,
	Delete:    HardDelete,
	Fields: []Field{
		{Column: "file_name", Kind: FieldString, Required: true},
		{Column: "url", Kind: FieldString, Required: true},
		{Column: "mime_type", Kind: FieldString},
		{Column: "size_bytes", Kind: FieldInt},
		{Column: "alt_text", Kind: FieldString},
	},
}

// AllSchemas lists every schema-driven entity in route-registration
// order. Keyed entities (settings, content sections) are not schema
// driven and have their own repositories.
var AllSchemas = []Schema{
	ProjectSchema,
	ServiceSchema,
	ReportSchema,
	FAQSchema,
	AboutItemSchema,
	ProcessItemSchema,
	ContactSchema,
	MediaSchema,
}
