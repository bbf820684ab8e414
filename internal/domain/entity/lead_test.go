package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validLead() Lead {
	return Lead{
		UserID:   1,
		SourceID: 10,
		Title:    "New hotel development announced in Austin",
		URL:      "https://example.com/news/hotel-austin",
		Status:   StatusNew,
		Priority: PriorityMedium,
	}
}

func TestLead_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Lead)
		wantErr bool
		field   string
	}{
		{name: "valid lead", mutate: func(l *Lead) {}},
		{name: "empty title", mutate: func(l *Lead) { l.Title = "   " }, wantErr: true, field: "title"},
		{name: "missing user", mutate: func(l *Lead) { l.UserID = 0 }, wantErr: true, field: "user_id"},
		{name: "non-http url", mutate: func(l *Lead) { l.URL = "ftp://example.com/x" }, wantErr: true, field: "url"},
		{name: "empty url", mutate: func(l *Lead) { l.URL = "" }, wantErr: true, field: "url"},
		{name: "confidence over 100", mutate: func(l *Lead) { l.Confidence = 101 }, wantErr: true, field: "confidence"},
		{name: "negative score", mutate: func(l *Lead) { l.Score = -1 }, wantErr: true, field: "score"},
		{name: "bogus status", mutate: func(l *Lead) { l.Status = "imaginary" }, wantErr: true, field: "status"},
		{name: "bogus priority", mutate: func(l *Lead) { l.Priority = "asap" }, wantErr: true, field: "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := validLead()
			tt.mutate(&lead)
			err := lead.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   string
		want LeadStatus
	}{
		{"proposed", StatusNew},
		{"Planning", StatusNew},
		{"announced", StatusNew},
		{"under construction", StatusQualified},
		{"in_progress", StatusQualified},
		{"completed", StatusWon},
		{"cancelled", StatusLost},
		{"on hold", StatusLost},
		{"qualified", StatusQualified},
		{"", StatusNew},
		{"gibberish", StatusNew},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapStatus(tt.in), "MapStatus(%q)", tt.in)
	}
}

func TestMapStatus_Idempotent(t *testing.T) {
	inputs := []string{"proposed", "under construction", "completed", "cancelled", "anything"}
	for _, in := range inputs {
		once := MapStatus(in)
		twice := MapStatus(string(once))
		assert.Equal(t, once, twice, "MapStatus not idempotent for %q", in)
	}
}

func TestMapPriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, MapPriority("High"))
	assert.Equal(t, PriorityUrgent, MapPriority(" urgent "))
	assert.Equal(t, PriorityMedium, MapPriority(""))
	assert.Equal(t, PriorityMedium, MapPriority("whenever"))
}

func TestQualificationForScore(t *testing.T) {
	assert.Equal(t, QualificationUnqualified, QualificationForScore(0))
	assert.Equal(t, QualificationUnqualified, QualificationForScore(49))
	assert.Equal(t, QualificationQualified, QualificationForScore(50))
	assert.Equal(t, QualificationQualified, QualificationForScore(79))
	assert.Equal(t, QualificationHighlyQualified, QualificationForScore(80))
	assert.Equal(t, QualificationHighlyQualified, QualificationForScore(100))
}
