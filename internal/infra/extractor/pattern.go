// Package extractor turns enriched hits into structured lead fields using a
// deterministic pattern pass and an optional LLM pass. The pattern pass is a
// pure function of its input text, so repeated runs over the same article
// produce identical results.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"leadscout/internal/domain/entity"
)

// Confidence weights per extracted field. The sum over all fields is 100.
const (
	weightCompany     = 25
	weightLocation    = 20
	weightProjectType = 15
	weightBudget      = 15
	weightTimeline    = 10
	weightContact     = 15
)

// companyStopWords are words that pattern matches sometimes capture but that
// are never company names on their own.
var companyStopWords = map[string]bool{
	"the": true, "new": true, "first": true, "major": true, "local": true,
	"this": true, "that": true, "city": true, "county": true, "state": true,
	"a": true, "an": true, "it": true, "they": true,
}

// hotelChains is the known-brand dictionary checked when no pattern matches.
var hotelChains = []string{
	"Marriott", "Hilton", "Hyatt", "IHG", "Wyndham", "Accor", "Four Seasons",
	"Ritz-Carlton", "Holiday Inn", "Best Western", "Radisson", "Sheraton",
	"Westin", "Fairmont", "Choice Hotels", "La Quinta", "Extended Stay",
}

// majorCities backs the location pass when no pattern matches.
var majorCities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia",
	"San Antonio", "San Diego", "Dallas", "Austin", "Miami", "Atlanta",
	"Seattle", "Denver", "Boston", "Nashville", "Las Vegas", "Orlando",
	"San Francisco", "Charlotte", "Tampa", "Portland",
}

// projectTypeTerms maps body keywords to canonical project types, checked in
// order so specific terms win over generic ones.
var projectTypeTerms = []struct {
	term        string
	projectType string
}{
	{"mixed-use", "mixed-use"},
	{"mixed use", "mixed-use"},
	{"resort", "resort"},
	{"hotel", "hotel"},
	{"apartment", "multifamily"},
	{"multifamily", "multifamily"},
	{"condominium", "multifamily"},
	{"office", "office"},
	{"retail", "retail"},
	{"shopping center", "retail"},
	{"warehouse", "industrial"},
	{"distribution center", "industrial"},
	{"industrial", "industrial"},
	{"restaurant", "restaurant"},
	{"hospital", "healthcare"},
	{"medical", "healthcare"},
	{"data center", "data center"},
}

// statusTerms maps project-stage phrases to the keyword fed to status
// mapping at persistence.
var statusTerms = []struct {
	phrase string
	status string
}{
	{"under construction", "under_construction"},
	{"broke ground", "in_progress"},
	{"breaks ground", "in_progress"},
	{"in progress", "in_progress"},
	{"completed", "completed"},
	{"now open", "completed"},
	{"cancelled", "cancelled"},
	{"canceled", "cancelled"},
	{"on hold", "on_hold"},
	{"proposed", "proposed"},
	{"planning", "planning"},
	{"planned", "planned"},
	{"announced", "announced"},
}

var (
	// "<Company> announces/plans/develops ..."
	companyBeforeVerbRe = regexp.MustCompile(`([A-Z][A-Za-z&'.\-]+(?: [A-Z][A-Za-z&'.\-]+){0,3}) (?:announces|announced|plans|planned|develops|developing|unveils|unveiled|proposes|proposed|launches|opens|opened|acquires|acquired|breaks ground)`)
	// "... developed/built/proposed by <Company>"
	companyAfterByRe = regexp.MustCompile(`(?:developed|built|proposed|planned|constructed|owned|acquired) by ([A-Z][A-Za-z&'.\-]+(?: [A-Z][A-Za-z&'.\-]+){0,3})`)

	locationPrepRe  = regexp.MustCompile(`(?:\bin|\bat|\bnear) ([A-Z][a-z]+(?: [A-Z][a-z]+)?)(?:[,.]|\s|$)`)
	locationStateRe = regexp.MustCompile(`([A-Z][a-z]+(?: [A-Z][a-z]+)?), ([A-Z]{2})\b`)

	budgetRe = regexp.MustCompile(`(?i)(?:\$|usd )\s?\d[\d,.]*\s*(?:billion|million|thousand|bn|mm|[kmb])?|\d[\d,.]*\s+(?:billion|million|thousand) dollars`)

	timelineQuarterRe   = regexp.MustCompile(`Q[1-4] 20\d{2}`)
	timelineMonthYearRe = regexp.MustCompile(`(?:January|February|March|April|May|June|July|August|September|October|November|December) 20\d{2}`)
	timelineYearRe      = regexp.MustCompile(`\b20\d{2}\b`)

	roomCountRe  = regexp.MustCompile(`(\d[\d,]*)[ \-](?:room|key|bed)s?\b`)
	sqftRe       = regexp.MustCompile(`(?i)(\d[\d,]*)\s*(?:square[ \-]feet|sq\.?\s?ft)`)
	employeesRe  = regexp.MustCompile(`(\d[\d,]*)\s*(?:employees|jobs|workers)`)
	emailRe      = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe      = regexp.MustCompile(`\+?\(?\d{3}\)?[\s.\-]\d{3}[\s.\-]\d{4}`)
	nameTitleRe  = regexp.MustCompile(`([A-Z][a-z]+ [A-Z][a-z]+), (?:the )?((?:CEO|CFO|COO|President|Vice President|VP|Director|Manager|Principal|Founder|Owner|Partner|Spokesperson)[A-Za-z ]{0,30})`)
	priorityRe   = regexp.MustCompile(`(?i)\b(urgent|fast.track|expedited|high.priority)\b`)
)

// PatternExtractor is the deterministic first pass.
type PatternExtractor struct{}

// NewPatternExtractor creates a PatternExtractor.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Extract applies the regex and dictionary rules to title + body text.
// keywords come from the scrape configuration; the intersection found in the
// text becomes the lead's keyword list.
func (p *PatternExtractor) Extract(title, body string, keywords []string) entity.ExtractedData {
	full := title + ". " + body
	data := entity.ExtractedData{
		Company:       p.extractCompany(full),
		Location:      p.extractLocation(full),
		Budget:        p.extractBudget(full),
		Timeline:      p.extractTimeline(full),
		ProjectType:   p.extractProjectType(full),
		RoomCount:     firstCardinal(roomCountRe, full),
		SquareFootage: firstCardinal(sqftRe, full),
		Employees:     firstCardinal(employeesRe, full),
		Status:        p.extractStatus(full),
		Keywords:      matchedKeywords(full, keywords),
		Contacts:      ExtractContacts(full, 3),
	}

	if data.ProjectType != "" {
		data.IndustryType = industryForProjectType(data.ProjectType)
	}
	if priorityRe.MatchString(full) {
		data.Priority = "high"
	}
	data.Confidence = p.score(data)
	return data
}

func (p *PatternExtractor) extractCompany(s string) string {
	for _, re := range []*regexp.Regexp{companyBeforeVerbRe, companyAfterByRe} {
		if m := re.FindStringSubmatch(s); m != nil {
			candidate := strings.TrimSpace(m[1])
			if !companyStopWords[strings.ToLower(candidate)] {
				return candidate
			}
		}
	}
	for _, chain := range hotelChains {
		if strings.Contains(s, chain) {
			return chain
		}
	}
	return ""
}

func (p *PatternExtractor) extractLocation(s string) string {
	if m := locationStateRe.FindStringSubmatch(s); m != nil {
		return m[1] + ", " + m[2]
	}
	if m := locationPrepRe.FindStringSubmatch(s); m != nil {
		candidate := strings.TrimSpace(m[1])
		if !companyStopWords[strings.ToLower(candidate)] {
			return candidate
		}
	}
	for _, city := range majorCities {
		if strings.Contains(s, city) {
			return city
		}
	}
	return ""
}

func (p *PatternExtractor) extractBudget(s string) string {
	m := budgetRe.FindString(s)
	if m == "" {
		return ""
	}
	// Canonical integer dollars when the amount parses.
	if amount, ok := entity.ParseCurrency(m); ok {
		return strconv.FormatInt(amount, 10)
	}
	return strings.TrimSpace(m)
}

func (p *PatternExtractor) extractTimeline(s string) string {
	if m := timelineQuarterRe.FindString(s); m != "" {
		return m
	}
	if m := timelineMonthYearRe.FindString(s); m != "" {
		return m
	}
	return timelineYearRe.FindString(s)
}

func (p *PatternExtractor) extractProjectType(s string) string {
	lower := strings.ToLower(s)
	for _, t := range projectTypeTerms {
		if strings.Contains(lower, t.term) {
			return t.projectType
		}
	}
	return ""
}

func (p *PatternExtractor) extractStatus(s string) string {
	lower := strings.ToLower(s)
	for _, t := range statusTerms {
		if strings.Contains(lower, t.phrase) {
			return t.status
		}
	}
	return ""
}

// score sums field weights for every populated field.
func (p *PatternExtractor) score(data entity.ExtractedData) int {
	score := 0
	if entity.Known(data.Company) {
		score += weightCompany
	}
	if entity.Known(data.Location) {
		score += weightLocation
	}
	if entity.Known(data.ProjectType) {
		score += weightProjectType
	}
	if entity.Known(data.Budget) {
		score += weightBudget
	}
	if entity.Known(data.Timeline) {
		score += weightTimeline
	}
	if len(data.Contacts) > 0 {
		score += weightContact
	}
	return score
}

// ExtractContacts pulls up to max distinct contacts from text: emails and
// phones paired with nearby "<Name>, <Role>" matches where available.
func ExtractContacts(s string, max int) []entity.ContactInfo {
	var contacts []entity.ContactInfo
	seen := make(map[string]bool)

	add := func(c entity.ContactInfo) {
		if len(contacts) >= max || c.Empty() {
			return
		}
		key := strings.ToLower(c.Email + "|" + c.Phone)
		if seen[key] {
			return
		}
		seen[key] = true
		contacts = append(contacts, c)
	}

	names := nameTitleRe.FindAllStringSubmatch(s, max)
	emails := emailRe.FindAllString(s, max)
	phones := phoneRe.FindAllString(s, max)

	// Pair the i-th name with the i-th email/phone; article contact blocks
	// usually list them in the same order.
	n := len(emails)
	if len(phones) > n {
		n = len(phones)
	}
	if len(names) > n {
		n = len(names)
	}
	for i := 0; i < n; i++ {
		var c entity.ContactInfo
		if i < len(names) {
			c.Name = names[i][1]
			c.Title = strings.TrimSpace(names[i][2])
		}
		if i < len(emails) {
			c.Email = strings.ToLower(emails[i])
		}
		if i < len(phones) {
			c.Phone = phones[i]
		}
		add(c)
	}
	return contacts
}

// firstCardinal returns the first captured number with separators stripped.
func firstCardinal(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// matchedKeywords returns the configured keywords present in the text.
func matchedKeywords(s string, keywords []string) []string {
	lower := strings.ToLower(s)
	var matched []string
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k != "" && strings.Contains(lower, k) {
			matched = append(matched, k)
		}
	}
	return matched
}

// industryForProjectType maps a project type to its industry bucket.
func industryForProjectType(projectType string) string {
	switch projectType {
	case "hotel", "resort":
		return "hospitality"
	case "multifamily":
		return "residential"
	case "office", "retail", "mixed-use":
		return "commercial real estate"
	case "industrial", "data center":
		return "industrial"
	case "restaurant":
		return "food service"
	case "healthcare":
		return "healthcare"
	}
	return ""
}
