package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/progress"
	"leadscout/internal/observability/metrics"
	"leadscout/internal/pkg/text"
	"leadscout/internal/pkg/urlutil"
	"leadscout/internal/repository"
)

const (
	// maxTagsPerLead bounds the tags attached from config and extracted keywords.
	maxTagsPerLead = 5
	// maxContactsPerLead bounds the contacts stored per lead.
	maxContactsPerLead = 3
	// dupTitlePrefixLen is how much of the title feeds the candidate lookup.
	dupTitlePrefixLen = 20
)

// ExtractedItem pairs an enriched hit with its extraction result, ready to
// be turned into a lead.
type ExtractedItem struct {
	Hit  entity.EnrichedHit
	Data entity.ExtractedData
}

// PersistResult summarizes one persistence pass.
type PersistResult struct {
	Saved      int
	Duplicates int
	LeadIDs    []int64
	Errors     []string
}

// Persister turns extracted items into stored leads with their sources,
// tags and contacts. Duplicate suppression happens here twice: an advisory
// check against existing rows, and the unique index on
// (user_id, normalized_url) as the authoritative backstop.
type Persister struct {
	leads    repository.LeadRepository
	contacts repository.ContactRepository
	tags     repository.TagRepository
	sources  repository.LeadSourceRepository
	bus      *progress.Bus

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPersister creates a Persister. contacts may be nil; the primary contact
// is always folded into the lead's contact_info payload regardless.
func NewPersister(
	leads repository.LeadRepository,
	contacts repository.ContactRepository,
	tags repository.TagRepository,
	sources repository.LeadSourceRepository,
	bus *progress.Bus,
) *Persister {
	return &Persister{
		leads:    leads,
		contacts: contacts,
		tags:     tags,
		sources:  sources,
		bus:      bus,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Persist saves each item as a lead, skipping duplicates silently and
// collecting per-item errors without aborting the batch.
func (p *Persister) Persist(ctx context.Context, jobID string, cfg *entity.ScrapeConfig, columns []entity.Column, items []ExtractedItem) *PersistResult {
	result := &PersistResult{}
	touchedSources := make(map[int64]bool)

	for i, item := range items {
		p.bus.Publish(jobID, progress.StageSaving, i+1, len(items),
			fmt.Sprintf("saving lead %d of %d", i+1, len(items)))

		if err := p.persistOne(ctx, cfg, columns, item, result, touchedSources); err != nil {
			if errors.Is(err, entity.ErrDuplicateLead) {
				result.Duplicates++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.Hit.Source, err))
			slog.Warn("failed to persist lead",
				slog.String("title", item.Hit.Title),
				slog.Any("error", err))
		}
	}

	for sourceID := range touchedSources {
		if err := p.sources.TouchScrapedAt(ctx, sourceID); err != nil {
			slog.Warn("failed to stamp source scrape time",
				slog.Int64("source_id", sourceID), slog.Any("error", err))
		}
	}
	return result
}

func (p *Persister) persistOne(ctx context.Context, cfg *entity.ScrapeConfig, columns []entity.Column, item ExtractedItem, result *PersistResult, touchedSources map[int64]bool) error {
	hit := item.Hit

	leadURL := hit.URL
	if !urlutil.IsArticleURL(leadURL) {
		leadURL = urlutil.SynthesizeFallback(sourceName(hit.RawHit), hit.Title)
	}
	normalizedURL := urlutil.Normalize(leadURL)

	// Serialize per (user, url) so concurrent jobs for the same user cannot
	// race the advisory duplicate check.
	unlock := p.lock(cfg.UserID, normalizedURL)
	defer unlock()

	src, err := p.sources.FindOrCreate(ctx, sourceName(hit.RawHit), sourceURL(leadURL))
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	touchedSources[src.ID] = true

	dup, err := p.isDuplicate(ctx, cfg.UserID, normalizedURL, hit.Title)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if dup {
		return entity.ErrDuplicateLead
	}

	lead := p.buildLead(cfg, columns, item, leadURL, src.ID)
	if err := lead.Validate(); err != nil {
		return fmt.Errorf("invalid lead: %w", err)
	}

	if err := p.leads.Create(ctx, lead, normalizedURL); err != nil {
		return err
	}
	result.Saved++
	result.LeadIDs = append(result.LeadIDs, lead.ID)
	metrics.RecordLeadsSaved(hit.Engine, 1)

	p.attachTags(ctx, lead, cfg, item.Data)
	p.attachContacts(ctx, lead, item.Data)
	return nil
}

// isDuplicate runs the advisory duplicate check: exact normalized URL first,
// then near-identical titles among the user's recent candidates.
func (p *Persister) isDuplicate(ctx context.Context, userID int64, normalizedURL, title string) (bool, error) {
	exists, err := p.leads.ExistsByNormalizedURL(ctx, userID, normalizedURL)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	prefix := text.Truncate(title, dupTitlePrefixLen)
	candidates, err := p.leads.ListCandidates(ctx, userID, prefix, urlPrefix(normalizedURL))
	if err != nil {
		return false, err
	}
	tokens := text.Tokens(title)
	for _, c := range candidates {
		if c.NormalizedURL == normalizedURL {
			return true, nil
		}
		if text.JaccardTokens(tokens, text.Tokens(c.Title)) >= titleSimilarityThreshold {
			return true, nil
		}
	}
	return false, nil
}

func (p *Persister) buildLead(cfg *entity.ScrapeConfig, columns []entity.Column, item ExtractedItem, leadURL string, sourceID int64) *entity.Lead {
	hit, data := item.Hit, item.Data

	method := entity.ExtractionMethodManual
	if data.AIUsed {
		method = entity.ExtractionMethodAI
	}

	lead := &entity.Lead{
		UserID:           cfg.UserID,
		SourceID:         sourceID,
		Title:            strings.TrimSpace(hit.Title),
		Description:      leadDescription(hit, data),
		URL:              leadURL,
		Company:          leadCompany(data, hit.Title),
		ProjectType:      data.ProjectType,
		Location:         data.Location,
		Budget:           data.Budget,
		Timeline:         data.Timeline,
		IndustryType:     leadIndustry(data, cfg),
		Keywords:         matchedKeywords(cfg.Keywords, hit),
		Status:           entity.MapStatus(data.Status),
		Priority:         entity.MapPriority(data.Priority),
		CustomFields:     coerceCustomFields(columns, data),
		Confidence:       data.Confidence,
		ExtractionMethod: method,
		Score:            data.Confidence,
		Qualification:    entity.QualificationForScore(data.Confidence),
		PublishedAt:      publishedAt(hit),
		ScrapedAt:        time.Now().UTC(),
	}
	if len(data.Contacts) > 0 && !data.Contacts[0].Empty() {
		primary := data.Contacts[0]
		lead.ContactInfo = &primary
	}
	return lead
}

func (p *Persister) attachTags(ctx context.Context, lead *entity.Lead, cfg *entity.ScrapeConfig, data entity.ExtractedData) {
	names := make([]string, 0, maxTagsPerLead)
	seen := make(map[string]bool)
	for _, kw := range append(append([]string{}, cfg.Keywords...), data.Keywords...) {
		name := entity.NormalizeTagName(kw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if len(names) == maxTagsPerLead {
			break
		}
	}

	for _, name := range names {
		tag, err := p.tags.FindOrCreateByName(ctx, name, entity.TagCategoryCustom)
		if err != nil {
			slog.Warn("failed to resolve tag", slog.String("tag", name), slog.Any("error", err))
			continue
		}
		if err := p.tags.AttachToLead(ctx, lead.ID, tag.ID); err != nil {
			slog.Warn("failed to attach tag", slog.String("tag", name), slog.Any("error", err))
		}
	}
}

func (p *Persister) attachContacts(ctx context.Context, lead *entity.Lead, data entity.ExtractedData) {
	if p.contacts == nil || len(data.Contacts) == 0 {
		return
	}
	contacts := make([]*entity.Contact, 0, maxContactsPerLead)
	for i, info := range data.Contacts {
		if i == maxContactsPerLead {
			break
		}
		if info.Empty() {
			continue
		}
		contactType := entity.ContactTypeSecondary
		if len(contacts) == 0 {
			contactType = entity.ContactTypePrimary
		}
		contacts = append(contacts, &entity.Contact{
			LeadID:      lead.ID,
			UserID:      lead.UserID,
			Name:        info.Name,
			Title:       info.Title,
			Email:       info.Email,
			Phone:       info.Phone,
			Company:     info.Company,
			ContactType: contactType,
		})
	}
	if len(contacts) == 0 {
		return
	}
	if err := p.contacts.BulkCreate(ctx, contacts); err != nil {
		slog.Warn("failed to store contacts",
			slog.Int64("lead_id", lead.ID), slog.Any("error", err))
	}
}

// lock returns an unlock func for the per-(user, url) critical section.
func (p *Persister) lock(userID int64, normalizedURL string) func() {
	key := fmt.Sprintf("%d|%s", userID, normalizedURL)
	p.mu.Lock()
	m, ok := p.locks[key]
	if !ok {
		m = &sync.Mutex{}
		p.locks[key] = m
	}
	p.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// titleCompanyRe captures a leading capitalized phrase before an
// announcement verb, e.g. "Marriott International plans ...".
var titleCompanyRe = regexp.MustCompile(`^([A-Z][\w&.'-]*(?:\s+(?:of|the|[A-Z][\w&.'-]*)){0,4})\s+(?:announces|announced|plans|opens|breaks|unveils|launches|acquires|expands|develops|proposes|completes|begins|starts|wins|secures|invests|to)\b`)

// leadCompany picks the extracted company, falls back to a company-looking
// title prefix, and finally to "Unknown" so the column is never empty.
func leadCompany(data entity.ExtractedData, title string) string {
	if entity.Known(data.Company) {
		return data.Company
	}
	if m := titleCompanyRe.FindStringSubmatch(strings.TrimSpace(title)); m != nil {
		return m[1]
	}
	return "Unknown"
}

func leadDescription(hit entity.EnrichedHit, data entity.ExtractedData) string {
	if entity.Known(data.Description) {
		return data.Description
	}
	if s := strings.TrimSpace(hit.Snippet); s != "" {
		return s
	}
	return text.Truncate(text.CollapseWhitespace(hit.ArticleText), 500)
}

func leadIndustry(data entity.ExtractedData, cfg *entity.ScrapeConfig) string {
	if entity.Known(data.IndustryType) {
		return data.IndustryType
	}
	return cfg.Industry
}

// matchedKeywords returns the configured keywords that actually appear in
// the hit's title or snippet, so the lead records why it matched.
func matchedKeywords(configured []string, hit entity.EnrichedHit) []string {
	haystack := strings.ToLower(hit.Title + " " + hit.Snippet + " " + hit.ArticleText)
	var matched []string
	for _, kw := range configured {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		matched = configured
	}
	return matched
}

// coerceCustomFields maps extracted custom values through each column's
// data type, dropping values that fail coercion or are placeholders.
func coerceCustomFields(columns []entity.Column, data entity.ExtractedData) map[string]any {
	if len(data.Custom) == 0 {
		return nil
	}
	fields := make(map[string]any, len(data.Custom))
	for _, col := range columns {
		raw, ok := data.Custom[col.FieldKey]
		if !ok {
			continue
		}
		if v, ok := col.Coerce(raw); ok {
			fields[col.FieldKey] = v
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func publishedAt(hit entity.EnrichedHit) time.Time {
	if !hit.PublishedDate.IsZero() {
		return hit.PublishedDate
	}
	return time.Now().UTC()
}

func sourceName(hit entity.RawHit) string {
	if hit.Source != "" {
		return hit.Source
	}
	return hit.Engine
}

// sourceURL reduces the lead URL to its site root for the source record.
func sourceURL(leadURL string) string {
	u, err := url.Parse(leadURL)
	if err != nil || u.Host == "" {
		return leadURL
	}
	return u.Scheme + "://" + u.Host
}

func urlPrefix(normalizedURL string) string {
	u, err := url.Parse(normalizedURL)
	if err != nil || u.Host == "" {
		return normalizedURL
	}
	return u.Scheme + "://" + u.Host
}
