// Package enricher fetches article bodies for hits whose adapters only
// produced a short snippet. Extraction quality rises sharply with real
// article text, so enrichment runs before the extractor whenever it can.
package enricher

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/httpclient"
	"leadscout/internal/observability/metrics"
	"leadscout/internal/pkg/text"
	"leadscout/internal/pkg/urlutil"
)

const (
	// snippetThreshold is the snippet length above which enrichment is
	// skipped: the adapter already gave us enough to extract from.
	snippetThreshold = 100

	// minContentLength is the minimum selector-extracted length before
	// falling back to paragraph concatenation.
	minContentLength = 200

	// maxArticleChars caps stored article text.
	maxArticleChars = 10000
)

// redirectOnlyHosts serve interstitial redirect pages, never article bodies.
var redirectOnlyHosts = []string{
	"news.google.com", "www.google.com", "www.bing.com", "r.msn.com",
}

// chromeSelectors are stripped before content extraction.
var chromeSelectors = []string{
	"nav", "script", "style", "header", "footer",
	".advertisement", ".sidebar", ".comments", ".social-share",
}

// contentSelectors is the priority list tried for the article body.
var contentSelectors = []string{
	"article .content", "article .body", ".article-content",
	".post-content", ".entry-content", "main", "article",
}

// Enricher fetches and cleans article text. Safe for concurrent use.
type Enricher struct {
	client *httpclient.Client
}

// New creates an Enricher backed by the shared scraping client.
func New(client *httpclient.Client) *Enricher {
	return &Enricher{client: client}
}

// Enrich returns the hit with ArticleText filled in where possible. Failures
// are absorbed: the returned hit then carries an empty ArticleText and the
// original snippet, and extraction proceeds from the snippet.
func (e *Enricher) Enrich(ctx context.Context, hit entity.RawHit) entity.EnrichedHit {
	enriched := entity.EnrichedHit{RawHit: hit, ExtractedAt: time.Now()}

	if !e.shouldFetch(hit) {
		metrics.RecordContentFetchSkipped()
		return enriched
	}

	start := time.Now()
	body, err := e.client.Get(ctx, "enricher", hit.URL)
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		slog.Debug("article fetch failed, keeping snippet",
			slog.String("url", hit.URL),
			slog.Any("error", err))
		return enriched
	}
	metrics.RecordContentFetchSuccess(time.Since(start))

	content := e.extractContent(body, hit.URL)
	if content == "" {
		return enriched
	}
	enriched.ArticleText = text.Truncate(content, maxArticleChars)
	return enriched
}

// shouldFetch applies the skip rules: long snippets are already sufficient,
// fallback URLs are synthetic, and redirect-only hosts never serve content.
func (e *Enricher) shouldFetch(hit entity.RawHit) bool {
	if len(hit.Snippet) > snippetThreshold {
		return false
	}
	if hit.URL == "" || urlutil.IsFallback(hit.URL) || !urlutil.IsArticleURL(hit.URL) {
		return false
	}
	u, err := url.Parse(hit.URL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range redirectOnlyHosts {
		if host == h {
			return false
		}
	}
	return true
}

// extractContent runs readability first, then the selector chain, then the
// paragraph fallback.
func (e *Enricher) extractContent(body []byte, pageURL string) string {
	if u, err := url.Parse(pageURL); err == nil {
		if article, err := readability.FromReader(bytes.NewReader(body), u); err == nil {
			if cleaned := text.CollapseWhitespace(article.TextContent); len(cleaned) >= minContentLength {
				return cleaned
			}
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	for _, sel := range chromeSelectors {
		doc.Find(sel).Remove()
	}

	for _, sel := range contentSelectors {
		if content := text.CollapseWhitespace(doc.Find(sel).First().Text()); len(content) >= minContentLength {
			return content
		}
	}

	// Last resort: every paragraph on the page.
	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if p := text.CollapseWhitespace(s.Text()); p != "" {
			parts = append(parts, p)
		}
	})
	return strings.Join(parts, " ")
}
