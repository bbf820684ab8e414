// Package urlutil contains URL classification and normalization helpers used
// across source adapters, deduplication, and persistence.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// fallbackHost is the synthetic host used for hits that arrive without a
// usable URL. Leads built from these URLs are flagged so the UI can avoid
// linking to them.
const fallbackHost = "news-search-result"

// nonArticlePaths are path segments that indicate index, navigation, or
// account pages rather than article content.
var nonArticlePaths = []string{
	"/search", "/tag/", "/tags/", "/category/", "/categories/", "/author/",
	"/page/", "/feed", "/rss", "/comments", "/login", "/register", "/signup",
	"/subscribe", "/sitemap",
}

// binarySuffixes are file extensions that never resolve to article HTML.
var binarySuffixes = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".ico",
	".zip", ".gz", ".mp3", ".mp4", ".avi", ".mov", ".doc", ".docx",
	".xls", ".xlsx", ".css", ".js", ".xml", ".json",
}

// IsArticleURL reports whether a URL plausibly points at an article page
// worth enriching: http(s), a real hostname, and a path that is neither a
// navigation page nor a binary asset.
func IsArticleURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	if len(host) < 4 || !strings.Contains(host, ".") {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, seg := range nonArticlePaths {
		if strings.Contains(path, seg) || strings.HasSuffix(path, strings.TrimSuffix(seg, "/")) {
			return false
		}
	}
	for _, suffix := range binarySuffixes {
		if strings.HasSuffix(path, suffix) {
			return false
		}
	}
	return true
}

// Normalize reduces a URL to its canonical dedup form: lowercased scheme and
// host, path without trailing slash, query and fragment dropped. Invalid URLs
// are returned trimmed but otherwise untouched so callers can still use them
// as map keys.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	path := strings.TrimSuffix(u.Path, "/")
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + path
}

// ExtractDomain returns the registrable-ish hostname with any www. prefix
// stripped, or "" when the URL cannot be parsed.
func ExtractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases, replaces runs of non-alphanumerics with hyphens, and
// caps the result at max bytes.
func slugify(s string, max int) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > max {
		slug = strings.Trim(slug[:max], "-")
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// SynthesizeFallback builds a deterministic placeholder URL for a hit that
// arrived without one. Identical source and title always synthesize the same
// URL so the dedup key stays stable across runs.
func SynthesizeFallback(source, title string) string {
	return "https://" + fallbackHost + "/" + slugify(source, 40) + "/" + slugify(title, 50)
}

// IsFallback reports whether a URL was synthesized by SynthesizeFallback.
func IsFallback(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Hostname() == fallbackHost
}
