package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/httpclient"
	"leadscout/internal/pkg/text"
	"leadscout/internal/pkg/urlutil"
)

// searchProvider describes one HTML search engine as data: how to build the
// query URL and which selectors find results on its SERP. Selector lists are
// ordered from most to least specific; the first selector that yields
// elements wins.
type searchProvider struct {
	name         string
	searchURL    string // format string receiving the URL-encoded query
	resultSels   []string
	titleSel     string
	snippetSel   string
	linkSel      string
	unwrapGoogle bool
}

// searchProviders is the provider table for general-purpose engines.
var searchProviders = []searchProvider{
	{
		name:         "google",
		searchURL:    "https://www.google.com/search?q=%s&num=30",
		resultSels:   []string{"div.g", "div[data-hveid]"},
		titleSel:     "h3",
		snippetSel:   "div[data-sncf], div.VwiC3b",
		linkSel:      "a",
		unwrapGoogle: true,
	},
	{
		name:       "bing",
		searchURL:  "https://www.bing.com/news/search?q=%s",
		resultSels: []string{"div.news-card", "li.b_algo"},
		titleSel:   "a.title, h2",
		snippetSel: "div.snippet, p",
		linkSel:    "a.title, h2 a",
	},
	{
		name:       "duckduckgo",
		searchURL:  "https://html.duckduckgo.com/html/?q=%s",
		resultSels: []string{"div.result", "div.results_links"},
		titleSel:   "a.result__a",
		snippetSel: "a.result__snippet",
		linkSel:    "a.result__a",
	},
	{
		name:       "yahoo",
		searchURL:  "https://news.search.yahoo.com/search?p=%s",
		resultSels: []string{"div.NewsArticle", "li div.dd"},
		titleSel:   "h4 a, h3 a",
		snippetSel: "p",
		linkSel:    "h4 a, h3 a",
	},
	{
		name:       "msn",
		searchURL:  "https://www.msn.com/en-us/search?q=%s",
		resultSels: []string{"div.contentCard", "div.card"},
		titleSel:   "a.title, h3",
		snippetSel: "p.abstract, p",
		linkSel:    "a",
	},
	{
		name:       "aol",
		searchURL:  "https://search.aol.com/aol/search?q=%s",
		resultSels: []string{"div.algo", "div.dd"},
		titleSel:   "h3 a",
		snippetSel: "div.compText p, p",
		linkSel:    "h3 a",
	},
}

// industryProviders are named trade sites with on-site search.
var industryProviders = []searchProvider{
	{
		name:       "hotel_news_now",
		searchURL:  "https://www.costar.com/news/search?query=%s",
		resultSels: []string{"article", "div.search-result"},
		titleSel:   "h2 a, h3 a",
		snippetSel: "p",
		linkSel:    "h2 a, h3 a",
	},
	{
		name:       "construction_dive",
		searchURL:  "https://www.constructiondive.com/search/?q=%s",
		resultSels: []string{"li.row.feed__item", "article"},
		titleSel:   "h3 a, a.analytics",
		snippetSel: "p.feed__description, p",
		linkSel:    "h3 a, a.analytics",
	},
}

// EngineHTMLSearch is the engine name prefix for HTML search adapters.
const EngineHTMLSearch = "html_search"

// HTMLSearchAdapter scrapes search engine result pages with per-provider
// CSS selector tables. One adapter instance covers one provider.
type HTMLSearchAdapter struct {
	client   *httpclient.Client
	provider searchProvider
}

// NewHTMLSearchAdapters creates one adapter per known provider, general
// engines first, then industry sites.
func NewHTMLSearchAdapters(client *httpclient.Client) []*HTMLSearchAdapter {
	var adapters []*HTMLSearchAdapter
	for _, p := range searchProviders {
		adapters = append(adapters, &HTMLSearchAdapter{client: client, provider: p})
	}
	for _, p := range industryProviders {
		adapters = append(adapters, &HTMLSearchAdapter{client: client, provider: p})
	}
	return adapters
}

// Name implements Adapter.
func (a *HTMLSearchAdapter) Name() string { return EngineHTMLSearch + "_" + a.provider.name }

// Search implements Adapter: fetch the SERP and walk the selector table.
func (a *HTMLSearchAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	doc, searchURL, err := a.fetchSERP(ctx, strings.Join(keywords, " "))
	if err != nil {
		return nil, err
	}

	var hits []entity.RawHit
	for _, sel := range a.provider.resultSels {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if len(hits) >= maxResults {
				return
			}
			hit, ok := a.parseResult(s, searchURL)
			if !ok {
				return
			}
			if !MatchesKeywords(hit.Title+" "+hit.Snippet, keywords) {
				return
			}
			hits = append(hits, hit)
		})
		if len(hits) > 0 {
			break
		}
	}
	return capHits(hits, maxResults), nil
}

// FallbackSearch implements FallbackSearcher: accept any link whose visible
// text looks like an article headline, skipping the relevance filter and the
// selector table.
func (a *HTMLSearchAdapter) FallbackSearch(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	doc, searchURL, err := a.fetchSERP(ctx, strings.Join(keywords, " "))
	if err != nil {
		return nil, err
	}

	var hits []entity.RawHit
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if len(hits) >= maxResults {
			return
		}
		title := text.CollapseWhitespace(s.Text())
		if len(title) < 10 || len(title) > 200 {
			return
		}
		href, _ := s.Attr("href")
		link := a.resolveLink(href, searchURL)
		if link == "" || !urlutil.IsArticleURL(link) {
			return
		}
		hit := entity.RawHit{
			Title:       title,
			URL:         link,
			URLVerified: true,
			Source:      a.provider.name,
			Engine:      a.Name(),
			Snippet:     "",
		}
		if hit.Validate() == nil {
			hits = append(hits, hit)
		}
	})
	return capHits(hits, maxResults), nil
}

// fetchSERP fetches and parses the provider's result page for query.
func (a *HTMLSearchAdapter) fetchSERP(ctx context.Context, query string) (*goquery.Document, *url.URL, error) {
	rawURL := fmt.Sprintf(a.provider.searchURL, url.QueryEscape(query))
	body, err := a.client.Get(ctx, a.Name(), rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetchSERP: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("fetchSERP: parse HTML: %w", err)
	}
	base, _ := url.Parse(rawURL)
	return doc, base, nil
}

// parseResult extracts one hit from a result element.
func (a *HTMLSearchAdapter) parseResult(s *goquery.Selection, base *url.URL) (entity.RawHit, bool) {
	title := text.CollapseWhitespace(s.Find(a.provider.titleSel).First().Text())
	if title == "" {
		return entity.RawHit{}, false
	}

	href, _ := s.Find(a.provider.linkSel).First().Attr("href")
	link := a.resolveLink(href, base)
	if link == "" {
		return entity.RawHit{}, false
	}

	snippet := text.CollapseWhitespace(s.Find(a.provider.snippetSel).First().Text())

	hit := entity.RawHit{
		Title:       title,
		URL:         link,
		URLVerified: urlutil.IsArticleURL(link),
		Snippet:     snippet,
		Source:      a.provider.name,
		Engine:      a.Name(),
	}
	if hit.Validate() != nil {
		return entity.RawHit{}, false
	}
	return hit, true
}

// resolveLink unwraps Google redirect links and resolves relative hrefs
// against the search URL's origin.
func (a *HTMLSearchAdapter) resolveLink(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
		return ""
	}

	if a.provider.unwrapGoogle && strings.HasPrefix(href, "/url?") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("q"); target != "" {
				href = target
			}
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if !u.IsAbs() && base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
