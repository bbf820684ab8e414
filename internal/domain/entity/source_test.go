package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadSource_Validate(t *testing.T) {
	src := LeadSource{Name: "NewsAPI", URL: "https://newsapi.org", Type: SourceTypeAPI}
	assert.NoError(t, src.Validate())

	src = LeadSource{Name: "", Type: SourceTypeWebsite}
	assert.Error(t, src.Validate())

	src = LeadSource{Name: "x", Type: "billboard"}
	assert.Error(t, src.Validate())
}

func TestDeriveSourceType(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want SourceType
	}{
		{"Hotel News RSS", "https://hotelnews.com/feed", SourceTypeRSSFeed},
		{"Construction Wire", "https://constructionwire.com/daily.xml", SourceTypeRSSFeed},
		{"NewsAPI", "https://newsapi.org/v2", SourceTypeAPI},
		{"Search", "https://api.bing.microsoft.com/v7.0", SourceTypeAPI},
		{"LinkedIn post", "https://www.linkedin.com/posts/123", SourceTypeSocialMedia},
		{"Listing", "https://www.indeed.com/viewjob", SourceTypeJobBoard},
		{"Austin Business Journal", "https://bizjournals.com/austin", SourceTypeNewsSite},
		{"Company site", "https://acme-hotels.example", SourceTypeWebsite},
		{"", "", SourceTypeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveSourceType(tt.name, tt.url), "DeriveSourceType(%q, %q)", tt.name, tt.url)
	}
}

func TestNormalizeTagName(t *testing.T) {
	assert.Equal(t, "hospitality", NormalizeTagName("  Hospitality "))
	assert.Equal(t, "", NormalizeTagName("   "))
}
