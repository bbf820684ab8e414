package entity

import (
	"strings"
	"time"
)

// MinTitleLength is the shortest trimmed title a hit may carry.
const MinTitleLength = 5

// RawHit is a single search result produced by a source adapter before
// enrichment or extraction. Every hit records the engine that produced it so
// failures can be attributed per source.
type RawHit struct {
	Title         string
	URL           string
	Snippet       string
	Source        string
	Engine        string
	Author        string
	ImageURL      string
	APISource     string
	PublishedDate time.Time
	URLVerified   bool
}

// Validate rejects hits that cannot become leads: missing or trivially short
// titles and hits with neither URL nor source attribution.
func (h *RawHit) Validate() error {
	if len(strings.TrimSpace(h.Title)) < MinTitleLength {
		return &ValidationError{Field: "title", Message: "must be at least 5 characters"}
	}
	if h.URL == "" && h.Source == "" {
		return &ValidationError{Field: "url", Message: "hit has neither URL nor source"}
	}
	return nil
}

// EnrichedHit is a RawHit plus the fetched article body, when the enricher
// could obtain one. ArticleText is empty when enrichment was skipped or
// failed; extraction then falls back to the snippet.
type EnrichedHit struct {
	RawHit
	ArticleText string
	ExtractedAt time.Time
}

// Text returns the best available body for extraction: article text if
// enrichment produced one, snippet otherwise.
func (h *EnrichedHit) Text() string {
	if h.ArticleText != "" {
		return h.ArticleText
	}
	return h.Snippet
}

// ExtractedData is the structured result of running pattern and/or LLM
// extraction over an enriched hit. String fields are empty when nothing was
// found; the persister treats empty and "Unknown" alike.
type ExtractedData struct {
	Company      string
	Location     string
	ProjectType  string
	Budget       string
	Timeline     string
	IndustryType string
	Description  string

	RoomCount     int
	SquareFootage int
	Employees     int

	Status   string
	Priority string
	Keywords []string

	Contacts []ContactInfo
	Custom   map[string]string

	Confidence int
	AIUsed     bool
}

// Known reports whether a string field value carries real information, as
// opposed to an empty or placeholder value.
func Known(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unknown", "n/a", "none", "null":
		return false
	}
	return true
}
