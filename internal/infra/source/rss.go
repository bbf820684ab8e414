package source

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/httpclient"
	"leadscout/internal/pkg/urlutil"
	"leadscout/internal/resilience/circuitbreaker"
)

// EngineRSS is the engine name for the RSS adapter.
const EngineRSS = "rss"

// defaultFeeds are the industry feeds polled when the operator configures
// none. Feeds that stop resolving are skipped per fetch, not removed.
var defaultFeeds = []string{
	"https://www.hotelmanagement.net/rss.xml",
	"https://www.constructiondive.com/feeds/news/",
	"https://www.bizjournals.com/feeds/news.xml",
}

// RSSAdapter polls a fixed set of feeds and keeps items whose title or
// description matches the configured keywords.
type RSSAdapter struct {
	client  *httpclient.Client
	feeds   []string
	breaker *circuitbreaker.CircuitBreaker
	parser  *gofeed.Parser
}

// NewRSSAdapter creates the RSS adapter. An empty feeds slice selects the
// default industry feed set.
func NewRSSAdapter(client *httpclient.Client, feeds []string) *RSSAdapter {
	if len(feeds) == 0 {
		feeds = defaultFeeds
	}
	return &RSSAdapter{
		client:  client,
		feeds:   feeds,
		breaker: circuitbreaker.New(circuitbreaker.SearchProviderConfig(EngineRSS)),
		parser:  gofeed.NewParser(),
	}
}

// Name implements Adapter.
func (a *RSSAdapter) Name() string { return EngineRSS }

// Search fetches every configured feed and filters items by keyword. A feed
// that fails to fetch or parse is logged and skipped; Search only errors
// when every feed failed.
func (a *RSSAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	var hits []entity.RawHit
	var lastErr error
	failed := 0

	for _, feedURL := range a.feeds {
		if len(hits) >= maxResults {
			break
		}
		feed, err := a.fetchFeed(ctx, feedURL)
		if err != nil {
			failed++
			lastErr = err
			slog.Warn("feed fetch failed",
				slog.String("engine", EngineRSS),
				slog.String("feed", feedURL),
				slog.Any("error", err))
			continue
		}
		hits = append(hits, a.filterItems(feed, keywords)...)
	}

	if failed == len(a.feeds) && lastErr != nil {
		return nil, lastErr
	}
	return capHits(hits, maxResults), nil
}

// fetchFeed retrieves and parses one feed through the breaker.
func (a *RSSAdapter) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	result, err := a.breaker.Execute(func() (interface{}, error) {
		body, err := a.client.Get(ctx, EngineRSS, feedURL)
		if err != nil {
			return nil, err
		}
		return a.parser.Parse(bytes.NewReader(body))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("rss circuit breaker open, feed skipped",
				slog.String("feed", feedURL))
		}
		return nil, err
	}
	return result.(*gofeed.Feed), nil
}

// filterItems converts matching feed items into raw hits.
func (a *RSSAdapter) filterItems(feed *gofeed.Feed, keywords []string) []entity.RawHit {
	var hits []entity.RawHit
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if !MatchesKeywords(item.Title+" "+item.Description, keywords) {
			continue
		}
		published := time.Now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}
		author := ""
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			author = item.Authors[0].Name
		}
		hit := entity.RawHit{
			Title:         item.Title,
			URL:           item.Link,
			URLVerified:   urlutil.IsArticleURL(item.Link),
			Snippet:       item.Description,
			Source:        feed.Title,
			Engine:        EngineRSS,
			Author:        author,
			PublishedDate: published,
		}
		if hit.Validate() == nil {
			hits = append(hits, hit)
		}
	}
	return hits
}
