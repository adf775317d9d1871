package types

import "time"

// Setting is one key/value pair of site-wide configuration (site name,
// contact details, social links). Settings are keyed by SettingKey, not by
// the surrogate id: writes are upserts against the key.
type Setting struct {
	// ID is the surrogate key of the row.
	ID int `json:"id" db:"id"`

	// SettingKey is the unique business key of the setting.
	SettingKey string `json:"setting_key" db:"setting_key"`

	// SettingValue is the stored value, always text on the wire.
	SettingValue string `json:"setting_value" db:"setting_value"`

	// SettingType hints how the frontend should interpret the value
	// (e.g. "text", "url", "email", "json").
	SettingType string `json:"setting_type" db:"setting_type"`

	// Category groups related settings in the admin UI.
	Category string `json:"category" db:"category"`

	// UpdatedAt is the timestamp of the most recent write to the key.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ContentSection is one editable block of page copy, keyed by SectionKey.
// Like settings, writes are upserts against the key rather than the id.
type ContentSection struct {
	// ID is the surrogate key of the row.
	ID int `json:"id" db:"id"`

	// SectionKey is the unique business key of the section.
	SectionKey string `json:"section_key" db:"section_key"`

	// SectionName is the human-readable label shown in the admin UI.
	SectionName string `json:"section_name" db:"section_name"`

	// Content is the section body.
	Content string `json:"content" db:"content"`

	// Page names the public page the section belongs to.
	Page string `json:"page" db:"page"`

	// DisplayOrder positions the section among its page's sections.
	DisplayOrder int `json:"display_order" db:"display_order"`

	// IsActive controls public visibility of the section.
	IsActive bool `json:"is_active" db:"is_active"`

	// UpdatedAt is the timestamp of the most recent write to the key.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
