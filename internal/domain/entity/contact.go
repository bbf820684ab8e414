package entity

import "strings"

// Contact types. Primary is the contact folded into lead.contact_info when the
// contact store is unavailable.
const (
	ContactTypePrimary   = "primary"
	ContactTypeSecondary = "secondary"
)

// ContactInfo is the embedded contact payload stored as JSON on a lead.
type ContactInfo struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
}

// Empty reports whether the contact carries no usable information.
func (c ContactInfo) Empty() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

// Contact is a person attached to a lead.
type Contact struct {
	ID          int64
	LeadID      int64
	UserID      int64
	Name        string
	Title       string
	Email       string
	Phone       string
	Company     string
	ContactType string
}

// Validate checks that the contact has at least one way to reach the person
// and a valid contact type.
func (c *Contact) Validate() error {
	if c.Email == "" && c.Phone == "" && strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "contact", Message: "requires a name, email, or phone"}
	}
	if c.ContactType != ContactTypePrimary && c.ContactType != ContactTypeSecondary {
		return &ValidationError{Field: "contact_type", Message: "unknown contact type: " + c.ContactType}
	}
	return nil
}
