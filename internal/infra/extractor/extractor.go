package extractor

import (
	"context"
	"log/slog"

	"leadscout/internal/domain/entity"
	"leadscout/internal/observability/metrics"
)

// llmThreshold is the pattern confidence below which smart mode escalates to
// the LLM pass.
const llmThreshold = 50

// Extractor runs the two-pass hybrid: pattern extraction always, LLM
// extraction when configured and warranted.
type Extractor struct {
	pattern    *PatternExtractor
	provider   Provider
	forceSmart bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSmartGate restricts the LLM pass to low-confidence pattern results
// process-wide, even for configurations that leave smart mode off. This is
// the SMART_EXTRACTION toggle.
func WithSmartGate(enabled bool) Option {
	return func(e *Extractor) {
		e.forceSmart = enabled
	}
}

// New creates an Extractor. provider may be nil, which disables the LLM pass
// regardless of configuration.
func New(provider Provider, opts ...Option) *Extractor {
	e := &Extractor{
		pattern:  NewPatternExtractor(),
		provider: provider,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract produces structured fields for one enriched hit. The LLM pass runs
// only when the config enables AI, a provider is wired, and either smart
// mode is off or the pattern pass came back below the confidence threshold.
// Any LLM failure falls back to the pattern result with AIUsed=false.
func (e *Extractor) Extract(ctx context.Context, hit entity.EnrichedHit, cfg *entity.ScrapeConfig, columns []entity.Column) entity.ExtractedData {
	data := e.pattern.Extract(hit.Title, hit.Text(), cfg.Keywords)

	if !e.shouldUseLLM(cfg, data.Confidence) {
		metrics.RecordExtraction("pattern", data.Confidence)
		return data
	}

	merged, ok := e.llmPass(ctx, hit, columns, data)
	if !ok {
		data.AIUsed = false
		metrics.RecordExtraction("pattern", data.Confidence)
		return data
	}
	metrics.RecordExtraction("ai", merged.Confidence)
	return merged
}

func (e *Extractor) shouldUseLLM(cfg *entity.ScrapeConfig, patternConfidence int) bool {
	if !cfg.UseAI || e.provider == nil {
		return false
	}
	if (cfg.SmartMode || e.forceSmart) && patternConfidence >= llmThreshold {
		return false
	}
	return true
}

// llmPass calls the provider and merges its fields over the pattern result.
func (e *Extractor) llmPass(ctx context.Context, hit entity.EnrichedHit, columns []entity.Column, base entity.ExtractedData) (entity.ExtractedData, bool) {
	prompt := BuildPrompt(hit.Title, hit.Text(), columns)

	raw, err := e.provider.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("llm extraction failed, keeping pattern result",
			slog.String("provider", e.provider.Name()),
			slog.String("url", hit.URL),
			slog.Any("error", err))
		return entity.ExtractedData{}, false
	}

	fields, err := parseLLMResponse(raw)
	if err != nil {
		slog.Warn("llm response was not strict JSON, keeping pattern result",
			slog.String("provider", e.provider.Name()),
			slog.Any("error", err))
		return entity.ExtractedData{}, false
	}

	merged := base
	mergeField(&merged.Company, fields.Company)
	mergeField(&merged.Location, fields.Location)
	mergeField(&merged.ProjectType, fields.ProjectType)
	mergeField(&merged.Budget, fields.Budget)

	if len(fields.Extra) > 0 {
		if merged.Custom == nil {
			merged.Custom = make(map[string]string, len(fields.Extra))
		}
		for k, v := range fields.Extra {
			if entity.Known(v) {
				merged.Custom[k] = v
			}
		}
	}

	if merged.ProjectType != base.ProjectType {
		merged.IndustryType = industryForProjectType(merged.ProjectType)
	}
	merged.AIUsed = true
	merged.Confidence = e.pattern.score(merged)
	return merged, true
}

// mergeField overwrites dst with the LLM value when that value carries real
// information.
func mergeField(dst *string, llmValue string) {
	if entity.Known(llmValue) {
		*dst = llmValue
	}
}
