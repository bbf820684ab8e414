// Package config holds process-level configuration for the lead discovery
// service: search provider credentials, feature toggles, and the wiring
// that turns them into a populated source registry and LLM provider.
package config

import (
	"os"
	"strings"

	"leadscout/internal/infra/extractor"
	"leadscout/internal/infra/httpclient"
	"leadscout/internal/infra/source"
	pkgconfig "leadscout/internal/pkg/config"
)

// ProvidersConfig holds the API credentials and feature toggles for every
// external search and extraction provider. Keyless providers (RSS, HTML
// search, SEC EDGAR) are always available; keyed providers activate only
// when their credential is present.
type ProvidersConfig struct {
	// NewsAPIKey enables the NewsAPI adapter.
	// Env: NEWS_API_KEY
	NewsAPIKey string

	// BingNewsKey enables the Bing News Search adapter.
	// Env: BING_NEWS_KEY
	BingNewsKey string

	// GoogleCSEKey and GoogleCSEID together enable the Google Custom
	// Search adapter; both must be set.
	// Env: GOOGLE_CSE_KEY, GOOGLE_CSE_ID
	GoogleCSEKey string
	GoogleCSEID  string

	// CrunchbaseKey enables the Crunchbase company registry adapter.
	// Premium tier; also gated by UsePremiumAPIs.
	// Env: CRUNCHBASE_KEY
	CrunchbaseKey string

	// BusinessWireKey enables the Business Wire press release adapter.
	// Premium tier; also gated by UsePremiumAPIs.
	// Env: BUSINESS_WIRE_KEY
	BusinessWireKey string

	// SECEdgarKey is accepted for parity with the other providers but the
	// EDGAR full-text search API is public and needs no credential; the
	// adapter registers regardless.
	// Env: SEC_EDGAR_KEY
	SECEdgarKey string

	// YelpKey enables the Yelp Fusion business search adapter.
	// Premium tier; also gated by UsePremiumAPIs.
	// Env: YELP_KEY
	YelpKey string

	// YelpLocation scopes Yelp searches. Empty selects a national query.
	// Env: YELP_LOCATION
	YelpLocation string

	// RSSFeeds overrides the default industry feed set, comma separated.
	// Env: RSS_FEEDS
	RSSFeeds []string

	// UsePremiumAPIs gates the paid registry adapters (Crunchbase,
	// Business Wire, Yelp) independently of their keys, so operators can
	// park paid quota without unsetting credentials.
	// Env: USE_PREMIUM_APIS (default: true)
	UsePremiumAPIs bool

	// SmartExtraction restricts the LLM pass to hits whose pattern
	// confidence falls below the threshold, process-wide. Whether a model
	// is available at all depends only on useAI and a credential.
	// Env: SMART_EXTRACTION (default: true)
	SmartExtraction bool

	// LLMProvider selects the extraction model backend: "deepseek" or
	// "anthropic".
	// Env: LLM_PROVIDER (default: "deepseek")
	LLMProvider string

	// DeepSeekKey is the DeepSeek API credential.
	// Env: DEEPSEEK_API_KEY
	DeepSeekKey string

	// AnthropicKey is the Anthropic API credential.
	// Env: ANTHROPIC_API_KEY
	AnthropicKey string
}

// LoadProviders reads the provider configuration from the environment.
// Missing keys are not errors; they disable the corresponding adapter.
func LoadProviders() ProvidersConfig {
	cfg := ProvidersConfig{
		NewsAPIKey:      os.Getenv("NEWS_API_KEY"),
		BingNewsKey:     os.Getenv("BING_NEWS_KEY"),
		GoogleCSEKey:    os.Getenv("GOOGLE_CSE_KEY"),
		GoogleCSEID:     os.Getenv("GOOGLE_CSE_ID"),
		CrunchbaseKey:   os.Getenv("CRUNCHBASE_KEY"),
		BusinessWireKey: os.Getenv("BUSINESS_WIRE_KEY"),
		SECEdgarKey:     os.Getenv("SEC_EDGAR_KEY"),
		YelpKey:         os.Getenv("YELP_KEY"),
		YelpLocation:    os.Getenv("YELP_LOCATION"),
		LLMProvider:     pkgconfig.LoadEnvString("LLM_PROVIDER", "deepseek"),
		DeepSeekKey:     os.Getenv("DEEPSEEK_API_KEY"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
	}

	cfg.UsePremiumAPIs = pkgconfig.LoadEnvBool("USE_PREMIUM_APIS", true).Value.(bool)
	cfg.SmartExtraction = pkgconfig.LoadEnvBool("SMART_EXTRACTION", true).Value.(bool)

	if raw := os.Getenv("RSS_FEEDS"); raw != "" {
		for _, feed := range strings.Split(raw, ",") {
			if feed = strings.TrimSpace(feed); feed != "" {
				cfg.RSSFeeds = append(cfg.RSSFeeds, feed)
			}
		}
	}

	return cfg
}

// BuildRegistry creates a source registry with every adapter the
// configuration enables. The keyless adapters are always registered, so
// the registry is never empty and a bare environment still scrapes.
func (c ProvidersConfig) BuildRegistry(client *httpclient.Client) *source.Registry {
	registry := source.NewRegistry()

	registry.Register(source.NewRSSAdapter(client, c.RSSFeeds))
	for _, a := range source.NewHTMLSearchAdapters(client) {
		registry.Register(a)
	}
	registry.Register(source.NewSECEdgarAdapter(client))

	registry.RegisterKeyed(source.NewNewsAPIAdapter(client, c.NewsAPIKey), c.NewsAPIKey)
	registry.RegisterKeyed(source.NewBingNewsAdapter(client, c.BingNewsKey), c.BingNewsKey)
	if c.GoogleCSEID != "" {
		registry.RegisterKeyed(source.NewGoogleCSEAdapter(client, c.GoogleCSEKey, c.GoogleCSEID), c.GoogleCSEKey)
	}

	if c.UsePremiumAPIs {
		registry.RegisterKeyed(source.NewCrunchbaseAdapter(client, c.CrunchbaseKey), c.CrunchbaseKey)
		registry.RegisterKeyed(source.NewBusinessWireAdapter(client, c.BusinessWireKey), c.BusinessWireKey)
		registry.RegisterKeyed(source.NewYelpAdapter(client, c.YelpKey, c.YelpLocation), c.YelpKey)
	}

	return registry
}

// BuildLLMProvider creates the extraction model provider selected by the
// configuration, or nil when the selected provider has no credential. A nil
// provider means pattern extraction only. SmartExtraction does not gate
// this; it tightens when the model is consulted, not whether one exists.
func (c ProvidersConfig) BuildLLMProvider(usage *extractor.UsageLog) extractor.Provider {
	switch strings.ToLower(c.LLMProvider) {
	case "anthropic":
		if c.AnthropicKey != "" {
			return extractor.NewClaudeProvider(c.AnthropicKey, usage)
		}
	default:
		if c.DeepSeekKey != "" {
			return extractor.NewDeepSeekProvider(c.DeepSeekKey, usage)
		}
	}
	return nil
}
