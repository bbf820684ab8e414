package entity

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ColumnDataType is the declared value type of a user-defined column.
type ColumnDataType string

// Valid column data types.
const (
	ColumnTypeText     ColumnDataType = "text"
	ColumnTypeEmail    ColumnDataType = "email"
	ColumnTypePhone    ColumnDataType = "phone"
	ColumnTypeURL      ColumnDataType = "url"
	ColumnTypeNumber   ColumnDataType = "number"
	ColumnTypeCurrency ColumnDataType = "currency"
	ColumnTypeBoolean  ColumnDataType = "boolean"
	ColumnTypeDate     ColumnDataType = "date"
)

// Column is a user-defined custom field. The field key and description feed
// the extraction prompt; the data type drives coercion at persistence time.
type Column struct {
	ID          int64
	UserID      int64
	FieldKey    string
	DataType    ColumnDataType
	Description string
	IsVisible   bool
}

// Validate checks the Column fields.
func (c *Column) Validate() error {
	if strings.TrimSpace(c.FieldKey) == "" {
		return &ValidationError{Field: "field_key", Message: "must not be empty"}
	}
	switch c.DataType {
	case ColumnTypeText, ColumnTypeEmail, ColumnTypePhone, ColumnTypeURL,
		ColumnTypeNumber, ColumnTypeCurrency, ColumnTypeBoolean, ColumnTypeDate:
		return nil
	default:
		return &ValidationError{Field: "data_type", Message: "unknown data type: " + string(c.DataType)}
	}
}

// DefaultColumns returns the seed column set for users with no configured
// columns yet.
func DefaultColumns(userID int64) []Column {
	return []Column{
		{UserID: userID, FieldKey: "contact_name", DataType: ColumnTypeText, Description: "Name of the primary contact person", IsVisible: true},
		{UserID: userID, FieldKey: "contact_email", DataType: ColumnTypeEmail, Description: "Email address of the primary contact", IsVisible: true},
		{UserID: userID, FieldKey: "contact_phone", DataType: ColumnTypePhone, Description: "Phone number of the primary contact", IsVisible: true},
	}
}

var (
	emailValueRe  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneValueRe  = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{6,}\d`)
	numberValueRe = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)
)

// droppedValues are placeholder strings that never reach storage.
var droppedValues = map[string]bool{
	"": true, "n/a": true, "na": true, "none": true, "null": true,
	"unknown": true, "not available": true, "-": true,
}

// Coerce converts a raw extracted string into the column's declared type.
// It returns the typed value and true, or (nil, false) when the value is a
// placeholder or cannot be represented in the declared type; dropped values
// are omitted from custom_fields entirely rather than stored as null-strings.
func (c *Column) Coerce(raw string) (any, bool) {
	v := strings.TrimSpace(raw)
	if droppedValues[strings.ToLower(v)] {
		return nil, false
	}

	switch c.DataType {
	case ColumnTypeText:
		return v, true
	case ColumnTypeEmail:
		if m := emailValueRe.FindString(v); m != "" {
			return strings.ToLower(m), true
		}
		return nil, false
	case ColumnTypePhone:
		if m := phoneValueRe.FindString(v); m != "" {
			return m, true
		}
		return nil, false
	case ColumnTypeURL:
		if u, err := url.Parse(v); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return v, true
		}
		return nil, false
	case ColumnTypeNumber:
		if m := numberValueRe.FindString(v); m != "" {
			m = strings.ReplaceAll(m, ",", "")
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				if f == float64(int64(f)) {
					return int64(f), true
				}
				return f, true
			}
		}
		return nil, false
	case ColumnTypeCurrency:
		if amount, ok := ParseCurrency(v); ok {
			return amount, true
		}
		return nil, false
	case ColumnTypeBoolean:
		switch strings.ToLower(v) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
		return nil, false
	case ColumnTypeDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		return nil, false
	}
	return nil, false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006",
}

// currencyMagnitudes maps magnitude suffixes to multipliers.
var currencyMagnitudes = []struct {
	suffix     string
	multiplier float64
}{
	{"billion", 1e9}, {"bn", 1e9}, {"b", 1e9},
	{"million", 1e6}, {"mm", 1e6}, {"m", 1e6},
	{"thousand", 1e3}, {"k", 1e3},
}

// ParseCurrency extracts a canonical integer dollar amount from strings like
// "$50M", "50 million", "USD 2.3 billion" or "1,200,000". Returns (0, false)
// when no amount can be found.
func ParseCurrency(s string) (int64, bool) {
	lower := strings.ToLower(s)
	m := numberValueRe.FindStringIndex(strings.ReplaceAll(lower, ",", ""))
	cleaned := strings.ReplaceAll(lower, ",", "")
	if m == nil {
		return 0, false
	}
	numStr := cleaned[m[0]:m[1]]
	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, false
	}
	rest := strings.TrimSpace(cleaned[m[1]:])
	for _, mag := range currencyMagnitudes {
		if strings.HasPrefix(rest, mag.suffix) {
			return int64(f * mag.multiplier), true
		}
	}
	return int64(f), true
}
