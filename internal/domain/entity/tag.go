package entity

import "strings"

// TagCategory groups tags for UI filtering.
type TagCategory string

// Valid tag categories.
const (
	TagCategoryIndustry TagCategory = "industry"
	TagCategoryStatus   TagCategory = "status"
	TagCategoryPriority TagCategory = "priority"
	TagCategoryLocation TagCategory = "location"
	TagCategoryCustom   TagCategory = "custom"
)

// Tag is a lowercase-unique label attached to leads.
type Tag struct {
	ID         int64
	Name       string
	Category   TagCategory
	UsageCount int64
	IsSystem   bool
}

// NormalizeTagName lowercases and trims a tag name so the name-unique index
// holds regardless of how the tag arrived.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate checks the Tag fields.
func (t *Tag) Validate() error {
	if NormalizeTagName(t.Name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	switch t.Category {
	case TagCategoryIndustry, TagCategoryStatus, TagCategoryPriority, TagCategoryLocation, TagCategoryCustom:
		return nil
	default:
		return &ValidationError{Field: "category", Message: "unknown tag category: " + string(t.Category)}
	}
}
