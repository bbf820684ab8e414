package entity

import (
	"fmt"
	"strings"
	"time"
)

// Scrape frequencies supported by the scheduler.
const (
	FrequencyManual = "manual"
	FrequencyHourly = "hourly"
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// Limits on a single scrape configuration.
const (
	MaxKeywords   = 20
	MaxResultsCap = 1000
)

// ScrapeConfig is a saved search: what to look for, where, and how hard.
// A configuration drives one scrape job at a time.
type ScrapeConfig struct {
	ID     int64
	UserID int64
	Name   string

	Keywords []string
	Sources  []string

	MaxResults int
	Industry   string
	Location   string

	ExtractionRules map[string]string

	Frequency string
	UseAI     bool
	SmartMode bool
	IsActive  bool

	LastRunAt *time.Time
	CreatedAt time.Time
}

// Validate checks a configuration before a job starts. Failures here are
// fatal for the job: they wrap FatalConfigError so callers abort rather than
// retry.
func (c *ScrapeConfig) Validate() error {
	if c.UserID == 0 {
		return &FatalConfigError{Reason: "configuration has no owning user"}
	}
	if len(c.Keywords) == 0 {
		return &FatalConfigError{Reason: "at least one keyword is required"}
	}
	if len(c.Keywords) > MaxKeywords {
		return &FatalConfigError{Reason: fmt.Sprintf("too many keywords: %d (max %d)", len(c.Keywords), MaxKeywords)}
	}
	for _, kw := range c.Keywords {
		if strings.TrimSpace(kw) == "" {
			return &FatalConfigError{Reason: "keywords must not be blank"}
		}
	}
	if c.MaxResults < 1 || c.MaxResults > MaxResultsCap {
		return &FatalConfigError{Reason: fmt.Sprintf("max_results must be between 1 and %d, got %d", MaxResultsCap, c.MaxResults)}
	}
	switch c.Frequency {
	case "", FrequencyManual, FrequencyHourly, FrequencyDaily, FrequencyWeekly:
	default:
		return &FatalConfigError{Reason: "unknown frequency: " + c.Frequency}
	}
	return nil
}

// SourceEnabled reports whether the named source participates in this
// configuration. An empty source list means all registered sources run.
func (c *ScrapeConfig) SourceEnabled(name string) bool {
	if len(c.Sources) == 0 {
		return true
	}
	for _, s := range c.Sources {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}
