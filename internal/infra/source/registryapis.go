package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/httpclient"
)

// Engine names for the business registry adapters.
const (
	EngineCrunchbase   = "crunchbase"
	EngineBusinessWire = "businesswire"
	EngineSECEdgar     = "sec_edgar"
	EngineYelp         = "yelp"
)

// CrunchbaseAdapter searches Crunchbase organizations via the v4 API.
// Authentication is the X-cb-user-key header.
type CrunchbaseAdapter struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
}

// NewCrunchbaseAdapter creates the adapter.
func NewCrunchbaseAdapter(client *httpclient.Client, apiKey string) *CrunchbaseAdapter {
	return &CrunchbaseAdapter{
		client:  client,
		apiKey:  apiKey,
		baseURL: "https://api.crunchbase.com/api/v4/autocompletes",
	}
}

// Name implements Adapter.
func (a *CrunchbaseAdapter) Name() string { return EngineCrunchbase }

type crunchbaseResponse struct {
	Entities []struct {
		Identifier struct {
			UUID      string `json:"uuid"`
			Value     string `json:"value"`
			Permalink string `json:"permalink"`
		} `json:"identifier"`
		ShortDescription string `json:"short_description"`
	} `json:"entities"`
}

// Search implements Adapter.
func (a *CrunchbaseAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	q := url.Values{}
	q.Set("query", strings.Join(keywords, " "))
	q.Set("collection_ids", "organizations")
	q.Set("limit", fmt.Sprintf("%d", min(maxResults, 25)))

	headers := map[string]string{"X-cb-user-key": a.apiKey}
	body, err := a.client.GetWithHeaders(ctx, EngineCrunchbase, a.baseURL+"?"+q.Encode(), headers)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}

	var resp crunchbaseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("Search: decode response: %w", err)
	}

	hits := make([]entity.RawHit, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		hit := entity.RawHit{
			Title:       e.Identifier.Value + " company profile",
			URL:         "https://www.crunchbase.com/organization/" + e.Identifier.Permalink,
			Snippet:     e.ShortDescription,
			Source:      "Crunchbase",
			Engine:      EngineCrunchbase,
			APISource:   "crunchbase.com",
			URLVerified: true,
		}
		if hit.Validate() == nil {
			hits = append(hits, hit)
		}
	}
	return capHits(hits, maxResults), nil
}

// BusinessWireAdapter searches Business Wire press releases through its
// keyed news API.
type BusinessWireAdapter struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
}

// NewBusinessWireAdapter creates the adapter.
func NewBusinessWireAdapter(client *httpclient.Client, apiKey string) *BusinessWireAdapter {
	return &BusinessWireAdapter{
		client:  client,
		apiKey:  apiKey,
		baseURL: "https://api.businesswire.com/v1/releases",
	}
}

// Name implements Adapter.
func (a *BusinessWireAdapter) Name() string { return EngineBusinessWire }

type businessWireResponse struct {
	Releases []struct {
		Headline    string `json:"headline"`
		Summary     string `json:"summary"`
		URL         string `json:"url"`
		Company     string `json:"company"`
		PublishedAt string `json:"published_at"`
	} `json:"releases"`
}

// Search implements Adapter.
func (a *BusinessWireAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	q := url.Values{}
	q.Set("q", strings.Join(keywords, " "))
	q.Set("limit", fmt.Sprintf("%d", min(maxResults, 50)))
	q.Set("api_key", a.apiKey)

	body, err := a.client.Get(ctx, EngineBusinessWire, a.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}

	var resp businessWireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("Search: decode response: %w", err)
	}

	hits := make([]entity.RawHit, 0, len(resp.Releases))
	for _, rel := range resp.Releases {
		published, _ := time.Parse(time.RFC3339, rel.PublishedAt)
		hit := entity.RawHit{
			Title:         rel.Headline,
			URL:           rel.URL,
			Snippet:       rel.Summary,
			Source:        "Business Wire",
			Engine:        EngineBusinessWire,
			APISource:     "businesswire.com",
			PublishedDate: published,
			URLVerified:   true,
		}
		if hit.Validate() == nil {
			hits = append(hits, hit)
		}
	}
	return capHits(hits, maxResults), nil
}

// SECEdgarAdapter runs the SEC EDGAR full-text search over recent filings.
// EDGAR is unauthenticated but requires a descriptive User-Agent, which the
// shared client already sends.
type SECEdgarAdapter struct {
	client  *httpclient.Client
	baseURL string
}

// NewSECEdgarAdapter creates the adapter.
func NewSECEdgarAdapter(client *httpclient.Client) *SECEdgarAdapter {
	return &SECEdgarAdapter{
		client:  client,
		baseURL: "https://efts.sec.gov/LATEST/search-index",
	}
}

// Name implements Adapter.
func (a *SECEdgarAdapter) Name() string { return EngineSECEdgar }

type edgarResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				DisplayNames []string `json:"display_names"`
				FileDate     string   `json:"file_date"`
				FileType     string   `json:"file_type"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search implements Adapter.
func (a *SECEdgarAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	q := url.Values{}
	q.Set("q", `"`+strings.Join(keywords, " ")+`"`)
	q.Set("dateRange", "custom")
	q.Set("startdt", time.Now().AddDate(0, -3, 0).Format("2006-01-02"))
	q.Set("enddt", time.Now().Format("2006-01-02"))

	body, err := a.client.Get(ctx, EngineSECEdgar, a.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}

	var resp edgarResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("Search: decode response: %w", err)
	}

	hits := make([]entity.RawHit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		company := ""
		if len(h.Source.DisplayNames) > 0 {
			company = h.Source.DisplayNames[0]
		}
		published, _ := time.Parse("2006-01-02", h.Source.FileDate)
		// _id is "accession:document"; the filing index page is stable.
		accession := strings.SplitN(h.ID, ":", 2)[0]
		hit := entity.RawHit{
			Title:         company + " " + h.Source.FileType + " filing",
			URL:           "https://www.sec.gov/Archives/edgar/data/" + accession,
			Snippet:       company + " filed a " + h.Source.FileType + " with the SEC",
			Source:        "SEC EDGAR",
			Engine:        EngineSECEdgar,
			APISource:     "sec.gov",
			PublishedDate: published,
			URLVerified:   true,
		}
		if hit.Validate() == nil {
			hits = append(hits, hit)
		}
	}
	return capHits(hits, maxResults), nil
}

// YelpAdapter searches Yelp Fusion business listings. Authentication is a
// bearer token.
type YelpAdapter struct {
	client   *httpclient.Client
	apiKey   string
	location string
	baseURL  string
}

// NewYelpAdapter creates the adapter. location scopes the business search
// and falls back to a national query when empty.
func NewYelpAdapter(client *httpclient.Client, apiKey, location string) *YelpAdapter {
	if location == "" {
		location = "United States"
	}
	return &YelpAdapter{
		client:   client,
		apiKey:   apiKey,
		location: location,
		baseURL:  "https://api.yelp.com/v3/businesses/search",
	}
}

// Name implements Adapter.
func (a *YelpAdapter) Name() string { return EngineYelp }

type yelpResponse struct {
	Businesses []struct {
		Name     string `json:"name"`
		URL      string `json:"url"`
		ImageURL string `json:"image_url"`
		Phone    string `json:"phone"`
		Location struct {
			City  string `json:"city"`
			State string `json:"state"`
		} `json:"location"`
		Categories []struct {
			Title string `json:"title"`
		} `json:"categories"`
	} `json:"businesses"`
}

// Search implements Adapter.
func (a *YelpAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	q := url.Values{}
	q.Set("term", strings.Join(keywords, " "))
	q.Set("location", a.location)
	q.Set("limit", fmt.Sprintf("%d", min(maxResults, 50)))

	headers := map[string]string{"Authorization": "Bearer " + a.apiKey}
	body, err := a.client.GetWithHeaders(ctx, EngineYelp, a.baseURL+"?"+q.Encode(), headers)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}

	var resp yelpResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("Search: decode response: %w", err)
	}

	hits := make([]entity.RawHit, 0, len(resp.Businesses))
	for _, biz := range resp.Businesses {
		var categories []string
		for _, c := range biz.Categories {
			categories = append(categories, c.Title)
		}
		snippet := biz.Name + " is a " + strings.Join(categories, ", ") + " business in " +
			biz.Location.City + ", " + biz.Location.State
		if biz.Phone != "" {
			snippet += ". Phone: " + biz.Phone
		}
		hit := entity.RawHit{
			Title:       biz.Name + " business listing",
			URL:         biz.URL,
			Snippet:     snippet,
			Source:      "Yelp",
			Engine:      EngineYelp,
			ImageURL:    biz.ImageURL,
			APISource:   "yelp.com",
			URLVerified: true,
		}
		if hit.Validate() == nil {
			hits = append(hits, hit)
		}
	}
	return capHits(hits, maxResults), nil
}
