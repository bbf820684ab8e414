// Package source contains the provider adapters that turn keyword searches
// into raw hits: RSS feeds, keyed news and registry APIs, and HTML search
// engine scraping.
package source

import (
	"context"
	"log/slog"
	"strings"

	"leadscout/internal/domain/entity"
)

// Adapter is a named provider integration. Search returns at most maxResults
// hits. Adapters are expected to swallow provider failures and return an
// error only for attribution; the dispatcher never aborts a job because one
// adapter failed.
type Adapter interface {
	// Name is the stable engine identifier used in config.sources, the
	// health monitor, and lead provenance.
	Name() string

	// Search runs the provider query for the given keywords.
	Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error)
}

// FallbackSearcher is implemented by adapters that support a permissive
// last-resort query used when every regular adapter returned zero hits.
type FallbackSearcher interface {
	Adapter
	FallbackSearch(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error)
}

// Registry holds the adapters available to the dispatcher. Adapters whose
// API keys are missing are never registered, so a registry only contains
// providers that can actually run.
type Registry struct {
	adapters []Adapter
	byName   map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Adapter)}
}

// Register adds an adapter. Later registrations with the same name replace
// earlier ones.
func (r *Registry) Register(a Adapter) {
	name := strings.ToLower(a.Name())
	if _, exists := r.byName[name]; !exists {
		r.adapters = append(r.adapters, a)
	}
	r.byName[name] = a
}

// RegisterKeyed registers the adapter only when its API key is present,
// logging the skip so disabled providers are visible in operations.
func (r *Registry) RegisterKeyed(a Adapter, apiKey string) {
	if apiKey == "" {
		slog.Info("source adapter disabled, API key not configured",
			slog.String("engine", a.Name()))
		return
	}
	r.Register(a)
}

// Get returns the adapter registered under name, or nil.
func (r *Registry) Get(name string) Adapter {
	return r.byName[strings.ToLower(name)]
}

// All returns every registered adapter in registration order.
func (r *Registry) All() []Adapter {
	return r.adapters
}

// Enabled returns the adapters selected by cfg.Sources, or all registered
// adapters when the config names none. Unknown source names are skipped with
// a warning rather than failing the job.
func (r *Registry) Enabled(cfg *entity.ScrapeConfig) []Adapter {
	if len(cfg.Sources) == 0 {
		return r.adapters
	}
	var enabled []Adapter
	for _, name := range cfg.Sources {
		a := r.Get(strings.TrimSpace(name))
		if a == nil {
			slog.Warn("configured source is not registered, skipping",
				slog.String("engine", name))
			continue
		}
		enabled = append(enabled, a)
	}
	return enabled
}

// FallbackAdapters returns the registered adapters that support permissive
// fallback searching.
func (r *Registry) FallbackAdapters() []FallbackSearcher {
	var out []FallbackSearcher
	for _, a := range r.adapters {
		if fs, ok := a.(FallbackSearcher); ok {
			out = append(out, fs)
		}
	}
	return out
}

// businessTerms is the generic relevance vocabulary shared by the RSS filter
// and the HTML-search relevance check.
var businessTerms = []string{
	"development", "construction", "project", "investment", "expansion",
	"opening", "announced", "plans", "breaks ground", "groundbreaking",
	"acquisition", "renovation", "contract", "deal", "funding",
}

// MatchesKeywords reports whether text contains any of the keywords or, when
// none match, any generic business term. Matching is case-insensitive.
func MatchesKeywords(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	for _, term := range businessTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// capHits truncates hits to maxResults.
func capHits(hits []entity.RawHit, maxResults int) []entity.RawHit {
	if maxResults > 0 && len(hits) > maxResults {
		return hits[:maxResults]
	}
	return hits
}
