package entity

import (
	"net/url"
	"strings"
	"time"
)

// SourceType classifies where a lead source lives on the web.
type SourceType string

// Valid source types.
const (
	SourceTypeWebsite     SourceType = "website"
	SourceTypeSocialMedia SourceType = "social_media"
	SourceTypeNewsSite    SourceType = "news_site"
	SourceTypeJobBoard    SourceType = "job_board"
	SourceTypeRSSFeed     SourceType = "rss_feed"
	SourceTypeAPI         SourceType = "api"
	SourceTypeOther       SourceType = "other"
)

// LeadSource is the provenance record leads point at. Sources are created
// lazily by the persister the first time a provider name is seen.
type LeadSource struct {
	ID            int64
	Name          string
	URL           string
	Type          SourceType
	LastScrapedAt *time.Time
	CreatedAt     time.Time
}

// Validate checks the LeadSource fields.
func (s *LeadSource) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	switch s.Type {
	case SourceTypeWebsite, SourceTypeSocialMedia, SourceTypeNewsSite,
		SourceTypeJobBoard, SourceTypeRSSFeed, SourceTypeAPI, SourceTypeOther:
		return nil
	default:
		return &ValidationError{Field: "type", Message: "unknown source type: " + string(s.Type)}
	}
}

var socialMediaHosts = []string{
	"twitter.com", "x.com", "facebook.com", "linkedin.com", "instagram.com",
	"reddit.com", "tiktok.com",
}

var jobBoardHosts = []string{
	"indeed.com", "glassdoor.com", "monster.com", "ziprecruiter.com", "lever.co",
	"greenhouse.io",
}

var newsSiteTerms = []string{"news", "times", "post", "journal", "herald", "tribune", "wire", "press", "reuters", "bloomberg"}

// DeriveSourceType infers the source type from the provider name and URL.
// Heuristics, in priority order: RSS/feed markers, API markers, social media
// hosts, job board hosts, news terms, then website.
func DeriveSourceType(name, rawURL string) SourceType {
	lower := strings.ToLower(name)
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	if strings.Contains(lower, "rss") || strings.Contains(lower, "feed") ||
		strings.Contains(strings.ToLower(rawURL), "/feed") || strings.HasSuffix(strings.ToLower(rawURL), ".xml") {
		return SourceTypeRSSFeed
	}
	if strings.Contains(lower, "api") || strings.HasPrefix(host, "api.") {
		return SourceTypeAPI
	}
	for _, h := range socialMediaHosts {
		if strings.HasSuffix(host, h) {
			return SourceTypeSocialMedia
		}
	}
	for _, h := range jobBoardHosts {
		if strings.HasSuffix(host, h) {
			return SourceTypeJobBoard
		}
	}
	for _, term := range newsSiteTerms {
		if strings.Contains(lower, term) || strings.Contains(host, term) {
			return SourceTypeNewsSite
		}
	}
	if host != "" || lower != "" {
		return SourceTypeWebsite
	}
	return SourceTypeOther
}
