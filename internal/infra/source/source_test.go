package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/httpclient"
	"leadscout/internal/resilience/retry"
)

func testClient() *httpclient.Client {
	cfg := httpclient.DefaultConfig()
	cfg.PerHostRPS = 1000
	cfg.PerHostBurst = 1000
	return httpclient.New(cfg, httpclient.WithRetryConfig(
		retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
	))
}

const sampleFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Hotel Industry Wire</title>
<item>
  <title>Hotel X opens in downtown Austin</title>
  <link>https://example.com/hotel-x</link>
  <description>A new 200-room hotel opened this week.</description>
  <pubDate>Mon, 10 Aug 2026 10:00:00 GMT</pubDate>
</item>
<item>
  <title>Hotel Y planned for riverfront site</title>
  <link>https://example.com/hotel-y</link>
  <description>Developers plan a boutique hotel.</description>
</item>
<item>
  <title>Weather update for the weekend</title>
  <link>https://example.com/weather</link>
  <description>Sunny skies expected.</description>
</item>
</channel></rss>`

func TestRSSAdapter_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	adapter := NewRSSAdapter(testClient(), []string{srv.URL + "/feed"})
	hits, err := adapter.Search(context.Background(), []string{"hotel"}, 10)
	require.NoError(t, err)

	require.Len(t, hits, 2, "weather item filtered out")
	assert.Equal(t, "Hotel X opens in downtown Austin", hits[0].Title)
	assert.Equal(t, "https://example.com/hotel-x", hits[0].URL)
	assert.Equal(t, "Hotel Industry Wire", hits[0].Source)
	assert.Equal(t, EngineRSS, hits[0].Engine)
	assert.Equal(t, 2026, hits[0].PublishedDate.Year())
	assert.True(t, hits[0].URLVerified, "validator-passing feed link is verified")
}

func TestRSSAdapter_Search_AllFeedsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := NewRSSAdapter(testClient(), []string{srv.URL + "/feed"})
	_, err := adapter.Search(context.Background(), []string{"hotel"}, 10)
	assert.Error(t, err)
}

func TestNewsAPIAdapter_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hotel OR resort", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Write([]byte(`{"status":"ok","articles":[
			{"source":{"name":"Hotel News"},"title":"Resort breaks ground in Miami",
			 "description":"A 300-room resort.","url":"https://example.com/resort",
			 "publishedAt":"2026-08-01T12:00:00Z","author":"Jo Writer"}
		]}`))
	}))
	defer srv.Close()

	adapter := NewNewsAPIAdapter(testClient(), "test-key")
	adapter.baseURL = srv.URL

	hits, err := adapter.Search(context.Background(), []string{"hotel", "resort"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Resort breaks ground in Miami", hits[0].Title)
	assert.Equal(t, "Hotel News", hits[0].Source)
	assert.Equal(t, "Jo Writer", hits[0].Author)
	assert.True(t, hits[0].URLVerified)
}

func TestNewsAPIAdapter_Search_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"apiKeyInvalid"}`))
	}))
	defer srv.Close()

	adapter := NewNewsAPIAdapter(testClient(), "bad-key")
	adapter.baseURL = srv.URL

	_, err := adapter.Search(context.Background(), []string{"hotel"}, 10)
	assert.ErrorContains(t, err, "apiKeyInvalid")
}

func TestBingNewsAdapter_SendsSubscriptionHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bing-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		w.Write([]byte(`{"value":[{"name":"New hotel tower announced","url":"https://example.com/t",
			"description":"desc","provider":[{"name":"MSN"}],"datePublished":"2026-08-02T08:00:00Z"}]}`))
	}))
	defer srv.Close()

	adapter := NewBingNewsAdapter(testClient(), "bing-key")
	adapter.baseURL = srv.URL

	hits, err := adapter.Search(context.Background(), []string{"hotel"}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "MSN", hits[0].Source)
	assert.Equal(t, EngineBingNews, hits[0].Engine)
}

const sampleSERP = `<html><body>
<div class="result">
  <a class="result__a" href="https://example.com/news/hotel-expansion">Hotel chain announces major expansion</a>
  <a class="result__snippet">The chain plans 40 new properties.</a>
</div>
<div class="result">
  <a class="result__a" href="/relative/path">Unrelated gardening tips for spring</a>
  <a class="result__snippet">How to plant tomatoes.</a>
</div>
</body></html>`

func TestHTMLSearchAdapter_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleSERP))
	}))
	defer srv.Close()

	adapter := &HTMLSearchAdapter{client: testClient(), provider: searchProvider{
		name:       "duckduckgo",
		searchURL:  srv.URL + "/html/?q=%s",
		resultSels: []string{"div.result"},
		titleSel:   "a.result__a",
		snippetSel: "a.result__snippet",
		linkSel:    "a.result__a",
	}}

	hits, err := adapter.Search(context.Background(), []string{"hotel"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1, "gardening result fails the relevance filter")
	assert.Equal(t, "Hotel chain announces major expansion", hits[0].Title)
	assert.Equal(t, "https://example.com/news/hotel-expansion", hits[0].URL)
	assert.Equal(t, "The chain plans 40 new properties.", hits[0].Snippet)
	assert.True(t, hits[0].URLVerified)
}

func TestHTMLSearchAdapter_ResolveLink(t *testing.T) {
	base, err := url.Parse("https://www.google.com/search?q=x")
	require.NoError(t, err)
	a := &HTMLSearchAdapter{provider: searchProvider{name: "google", unwrapGoogle: true}}

	assert.Equal(t, "https://target.example/article",
		a.resolveLink("/url?q=https://target.example/article&sa=U", base))
	assert.Equal(t, "https://www.google.com/rel",
		a.resolveLink("/rel", base))
	assert.Equal(t, "", a.resolveLink("javascript:void(0)", base))
	assert.Equal(t, "", a.resolveLink("#frag", base))
}

func TestHTMLSearchAdapter_FallbackSearch(t *testing.T) {
	page := `<html><body>
	  <a href="https://example.com/news/big-development-story">City approves big development downtown</a>
	  <a href="https://example.com/login">Log in</a>
	  <a href="https://example.com/a">x</a>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	adapter := &HTMLSearchAdapter{client: testClient(), provider: searchProvider{
		name:      "google",
		searchURL: srv.URL + "/?q=%s",
	}}

	hits, err := adapter.FallbackSearch(context.Background(), []string{"anything"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "City approves big development downtown", hits[0].Title)
	assert.True(t, hits[0].URLVerified)
}

func TestRegistry_EnabledAndKeyed(t *testing.T) {
	client := testClient()
	r := NewRegistry()
	r.Register(NewRSSAdapter(client, nil))
	r.RegisterKeyed(NewNewsAPIAdapter(client, "key"), "key")
	r.RegisterKeyed(NewBingNewsAdapter(client, ""), "")

	assert.Len(t, r.All(), 2, "keyless adapter not registered")
	assert.NotNil(t, r.Get("NewsAPI"))
	assert.Nil(t, r.Get("bing_news"))

	cfg := &entity.ScrapeConfig{Sources: []string{"rss", "bing_news"}}
	enabled := r.Enabled(cfg)
	require.Len(t, enabled, 1)
	assert.Equal(t, EngineRSS, enabled[0].Name())

	cfg.Sources = nil
	assert.Len(t, r.Enabled(cfg), 2)
}

func TestMatchesKeywords(t *testing.T) {
	assert.True(t, MatchesKeywords("New Hotel opens", []string{"hotel"}))
	assert.True(t, MatchesKeywords("Major construction project begins", []string{"zebra"}), "business term matches")
	assert.False(t, MatchesKeywords("Sunny weather this weekend", []string{"hotel"}))
}
