package scrape

import (
	"net/url"
	"strings"

	"leadscout/internal/domain/entity"
	"leadscout/internal/pkg/text"
	"leadscout/internal/pkg/urlutil"
)

// titleSimilarityThreshold is the Jaccard score above which two hits from
// the same site are treated as the same story.
const titleSimilarityThreshold = 0.8

type seenHit struct {
	host   string
	path   string
	tokens []string
}

// Dedupe removes in-batch duplicates while preserving first-seen order.
// Hits without a usable URL get a synthetic fallback URL first, so two
// distinct URL-less stories never collapse into one another. Beyond exact
// (url, title) matches, near-identical titles from the same site are also
// dropped: syndicated copies on different sites survive.
func Dedupe(hits []entity.RawHit) []entity.RawHit {
	seen := make(map[string]struct{}, len(hits))
	var kept []seenHit
	out := make([]entity.RawHit, 0, len(hits))

	for _, hit := range hits {
		var synthesized bool
		hit.URL, synthesized = ensureURL(hit)
		if synthesized {
			hit.URLVerified = false
		}

		normURL := urlutil.Normalize(hit.URL)
		normTitle := strings.ToLower(strings.TrimSpace(hit.Title))
		key := normURL + "\x00" + normTitle
		if _, dup := seen[key]; dup {
			continue
		}

		host, path := splitHostPath(normURL)
		tokens := text.Tokens(hit.Title)
		if similarKept(kept, host, path, tokens) {
			seen[key] = struct{}{}
			continue
		}

		seen[key] = struct{}{}
		kept = append(kept, seenHit{host: host, path: path, tokens: tokens})
		out = append(out, hit)
	}
	return out
}

// ensureURL returns the hit's URL, synthesizing a stable fallback when the
// hit carries no parseable URL at all. The second result reports whether a
// fallback was substituted, which voids any upstream URL verification.
func ensureURL(hit entity.RawHit) (string, bool) {
	raw := strings.TrimSpace(hit.URL)
	if raw != "" {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return raw, false
		}
	}
	source := hit.Source
	if source == "" {
		source = hit.Engine
	}
	return urlutil.SynthesizeFallback(source, hit.Title), true
}

func splitHostPath(normURL string) (string, string) {
	u, err := url.Parse(normURL)
	if err != nil {
		return "", ""
	}
	return u.Host, u.Path
}

// similarKept reports whether an already-kept hit from the same site has a
// near-identical title. The same-site restriction keeps legitimate
// syndicated coverage on different outlets.
func similarKept(kept []seenHit, host, path string, tokens []string) bool {
	if host == "" || len(tokens) == 0 {
		return false
	}
	for _, k := range kept {
		if k.host != host {
			continue
		}
		if !samePathFamily(k.path, path) {
			continue
		}
		if text.JaccardTokens(k.tokens, tokens) >= titleSimilarityThreshold {
			return true
		}
	}
	return false
}

// samePathFamily is true when one path prefixes the other, which is how the
// same article shows up twice with tracking or pagination suffixes.
func samePathFamily(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
