package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestColumn_Coerce_Number(t *testing.T) {
	col := Column{FieldKey: "room_count", DataType: ColumnTypeNumber}

	tests := []struct {
		in     string
		want   any
		wantOK bool
	}{
		{"120", int64(120), true},
		{"120 rooms", int64(120), true},
		{"approx. 45,000", int64(45000), true},
		{"3.5", 3.5, true},
		{"n/a", nil, false},
		{"unknown", nil, false},
		{"", nil, false},
		{"no digits here", nil, false},
	}
	for _, tt := range tests {
		got, ok := col.Coerce(tt.in)
		assert.Equal(t, tt.wantOK, ok, "Coerce(%q) ok", tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "Coerce(%q)", tt.in)
		}
	}
}

func TestColumn_Coerce_Currency(t *testing.T) {
	col := Column{FieldKey: "budget", DataType: ColumnTypeCurrency}

	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"$50M", 50_000_000, true},
		{"50 million", 50_000_000, true},
		{"USD 2.3 billion", 2_300_000_000, true},
		{"$1,200,000", 1_200_000, true},
		{"750k", 750_000, true},
		{"n/a", 0, false},
		{"undisclosed", 0, false},
	}
	for _, tt := range tests {
		got, ok := col.Coerce(tt.in)
		assert.Equal(t, tt.wantOK, ok, "Coerce(%q) ok", tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "Coerce(%q)", tt.in)
		}
	}
}

func TestColumn_Coerce_EmailPhoneURL(t *testing.T) {
	email := Column{FieldKey: "contact_email", DataType: ColumnTypeEmail}
	got, ok := email.Coerce("Contact: John.Doe@Example.COM for details")
	assert.True(t, ok)
	assert.Equal(t, "john.doe@example.com", got)
	_, ok = email.Coerce("no email present")
	assert.False(t, ok)

	phone := Column{FieldKey: "contact_phone", DataType: ColumnTypePhone}
	got, ok = phone.Coerce("call (512) 555-0134 today")
	assert.True(t, ok)
	assert.Equal(t, "(512) 555-0134", got)
	_, ok = phone.Coerce("call us")
	assert.False(t, ok)

	u := Column{FieldKey: "website", DataType: ColumnTypeURL}
	got, ok = u.Coerce("https://example.com/about")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/about", got)
	_, ok = u.Coerce("example dot com")
	assert.False(t, ok)
}

func TestColumn_Coerce_BooleanAndDate(t *testing.T) {
	b := Column{FieldKey: "is_franchise", DataType: ColumnTypeBoolean}
	for in, want := range map[string]bool{"Yes": true, "true": true, "1": true, "No": false, "false": false} {
		got, ok := b.Coerce(in)
		assert.True(t, ok, "Coerce(%q)", in)
		assert.Equal(t, want, got, "Coerce(%q)", in)
	}
	_, ok := b.Coerce("maybe")
	assert.False(t, ok)

	d := Column{FieldKey: "groundbreaking", DataType: ColumnTypeDate}
	got, ok := d.Coerce("2026-03-15")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got)
	_, ok = d.Coerce("sometime soon")
	assert.False(t, ok)
}

func TestColumn_Validate(t *testing.T) {
	col := Column{FieldKey: "budget", DataType: ColumnTypeCurrency}
	assert.NoError(t, col.Validate())

	col = Column{FieldKey: "", DataType: ColumnTypeText}
	assert.Error(t, col.Validate())

	col = Column{FieldKey: "x", DataType: "geo"}
	assert.Error(t, col.Validate())
}

func TestDefaultColumns(t *testing.T) {
	cols := DefaultColumns(7)
	assert.Len(t, cols, 3)
	for _, c := range cols {
		assert.Equal(t, int64(7), c.UserID)
		assert.True(t, c.IsVisible)
		assert.NoError(t, c.Validate())
	}
}
