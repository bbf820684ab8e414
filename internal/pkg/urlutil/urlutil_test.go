package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsArticleURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/news/2026/hotel-opens", true},
		{"http://hotelnewsnow.com/articles/12345", true},
		{"ftp://example.com/file", false},
		{"https://a.b/x", false},
		{"https://ab.c/x", true},
		{"https://example.com/search?q=hotels", false},
		{"https://example.com/tag/hotels", false},
		{"https://example.com/category/business", false},
		{"https://example.com/author/jane", false},
		{"https://example.com/feed", false},
		{"https://example.com/login", false},
		{"https://example.com/brochure.pdf", false},
		{"https://example.com/photo.jpg", false},
		{"https://example.com/feed.xml", false},
		{"not a url at all", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsArticleURL(tt.url), "IsArticleURL(%q)", tt.url)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTPS://Example.COM/News/Story/", "https://example.com/News/Story"},
		{"https://example.com/a?utm_source=x&ref=y", "https://example.com/a"},
		{"https://example.com/a#section", "https://example.com/a"},
		{"https://example.com/", "https://example.com"},
		{"  https://example.com/x  ", "https://example.com/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	urls := []string{
		"https://Example.com/Path/?q=1",
		"https://example.com/a#b",
		"garbage input",
	}
	for _, u := range urls {
		once := Normalize(u)
		assert.Equal(t, once, Normalize(once), "Normalize not idempotent for %q", u)
	}
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "example.com", ExtractDomain("https://www.example.com/a"))
	assert.Equal(t, "news.example.co.uk", ExtractDomain("http://news.example.co.uk/x"))
	assert.Equal(t, "", ExtractDomain("://bad"))
}

func TestSynthesizeFallback(t *testing.T) {
	u := SynthesizeFallback("Hotel News Now", "Marriott Plans 200-Room Tower in Austin!")
	assert.Equal(t, "https://news-search-result/hotel-news-now/marriott-plans-200-room-tower-in-austin", u)
	assert.True(t, IsFallback(u))
	assert.False(t, IsFallback("https://example.com/a"))

	again := SynthesizeFallback("Hotel News Now", "Marriott Plans 200-Room Tower in Austin!")
	assert.Equal(t, u, again, "fallback URLs are deterministic")
}

func TestSynthesizeFallback_TitleCap(t *testing.T) {
	long := "this title is extremely long and keeps going well past the fifty character slug limit"
	u := SynthesizeFallback("src", long)
	assert.LessOrEqual(t, len(u), len("https://news-search-result/src/")+50)
	assert.True(t, IsFallback(u))
}
