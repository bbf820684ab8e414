// Package entity defines the core domain entities and validation logic for the
// lead discovery engine. It contains the fundamental business objects such as
// Lead, Contact, LeadSource, Tag and Column, along with their validation rules
// and domain-specific errors.
package entity

import (
	"net/url"
	"strings"
	"time"
)

// LeadStatus is the lifecycle state of a lead.
type LeadStatus string

// Valid lead statuses.
const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusProposal  LeadStatus = "proposal"
	StatusWon       LeadStatus = "won"
	StatusLost      LeadStatus = "lost"
	StatusArchived  LeadStatus = "archived"
)

// LeadPriority is the triage priority of a lead.
type LeadPriority string

// Valid lead priorities.
const (
	PriorityLow    LeadPriority = "low"
	PriorityMedium LeadPriority = "medium"
	PriorityHigh   LeadPriority = "high"
	PriorityUrgent LeadPriority = "urgent"
)

// Qualification buckets derived from the lead score.
const (
	QualificationUnqualified     = "unqualified"
	QualificationQualified       = "qualified"
	QualificationHighlyQualified = "highly_qualified"
)

// Extraction methods recorded on a lead.
const (
	ExtractionMethodAI       = "ai"
	ExtractionMethodManual   = "manual"
	ExtractionMethodTemplate = "template"
)

// Lead represents a candidate business opportunity extracted from a public
// article or record. A lead always belongs to exactly one user and references
// the LeadSource it was discovered through.
type Lead struct {
	ID       int64
	UserID   int64
	SourceID int64

	Title       string
	Description string
	URL         string

	Company     string
	ContactInfo *ContactInfo

	ProjectType  string
	Location     string
	Budget       string
	Timeline     string
	IndustryType string

	Keywords []string

	Status   LeadStatus
	Priority LeadPriority

	CustomFields map[string]any

	Confidence       int
	ExtractionMethod string
	Score            int
	Qualification    string

	PublishedAt time.Time
	ScrapedAt   time.Time
	Notes       string
	CreatedAt   time.Time
}

// validStatuses is the closed set of lead statuses.
var validStatuses = map[LeadStatus]bool{
	StatusNew: true, StatusContacted: true, StatusQualified: true,
	StatusProposal: true, StatusWon: true, StatusLost: true, StatusArchived: true,
}

// validPriorities is the closed set of lead priorities.
var validPriorities = map[LeadPriority]bool{
	PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityUrgent: true,
}

// Validate checks the Lead invariants before persistence:
// non-empty title, http(s) URL, an owning user, bounded confidence and score,
// and enum membership for status and priority.
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if l.UserID == 0 {
		return &ValidationError{Field: "user_id", Message: "must be set"}
	}
	u, err := url.Parse(l.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "url", Message: "must be a valid http(s) URL"}
	}
	if l.Confidence < 0 || l.Confidence > 100 {
		return &ValidationError{Field: "confidence", Message: "must be between 0 and 100"}
	}
	if l.Score < 0 || l.Score > 100 {
		return &ValidationError{Field: "score", Message: "must be between 0 and 100"}
	}
	if !validStatuses[l.Status] {
		return &ValidationError{Field: "status", Message: "unknown status: " + string(l.Status)}
	}
	if !validPriorities[l.Priority] {
		return &ValidationError{Field: "priority", Message: "unknown priority: " + string(l.Priority)}
	}
	return nil
}

// statusKeywordMap translates project-stage keywords found in article text
// into lead statuses. Unknown keywords map to StatusNew.
var statusKeywordMap = map[string]LeadStatus{
	"proposed":           StatusNew,
	"planning":           StatusNew,
	"planned":            StatusNew,
	"announced":          StatusNew,
	"under_construction": StatusQualified,
	"in_progress":        StatusQualified,
	"completed":          StatusWon,
	"cancelled":          StatusLost,
	"on_hold":            StatusLost,
}

// MapStatus maps an extracted status keyword onto a LeadStatus.
// The mapping is total and idempotent: feeding a valid LeadStatus string back
// in returns the same status, and anything unrecognized becomes StatusNew.
func MapStatus(keyword string) LeadStatus {
	k := strings.ToLower(strings.TrimSpace(keyword))
	k = strings.ReplaceAll(k, " ", "_")
	if validStatuses[LeadStatus(k)] {
		return LeadStatus(k)
	}
	if s, ok := statusKeywordMap[k]; ok {
		return s
	}
	return StatusNew
}

// MapPriority maps an extracted priority string onto a LeadPriority,
// defaulting to medium. Idempotent over repeated mapping.
func MapPriority(value string) LeadPriority {
	p := LeadPriority(strings.ToLower(strings.TrimSpace(value)))
	if validPriorities[p] {
		return p
	}
	return PriorityMedium
}

// QualificationForScore derives the qualification bucket from a 0..100 score.
func QualificationForScore(score int) string {
	switch {
	case score >= 80:
		return QualificationHighlyQualified
	case score >= 50:
		return QualificationQualified
	default:
		return QualificationUnqualified
	}
}
