package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"leadscout/internal/domain/entity"
	"leadscout/internal/infra/httpclient"
)

// EngineGoogleCSE is the engine name for the Google Custom Search adapter.
const EngineGoogleCSE = "google_cse"

// GoogleCSEAdapter queries the Google Custom Search JSON API. It needs both
// an API key and a search engine ID (cx); the adapter is disabled when
// either is missing.
type GoogleCSEAdapter struct {
	client   *httpclient.Client
	apiKey   string
	engineID string
	baseURL  string
}

// NewGoogleCSEAdapter creates the adapter.
func NewGoogleCSEAdapter(client *httpclient.Client, apiKey, engineID string) *GoogleCSEAdapter {
	return &GoogleCSEAdapter{
		client:   client,
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  "https://www.googleapis.com/customsearch/v1",
	}
}

// Name implements Adapter.
func (a *GoogleCSEAdapter) Name() string { return EngineGoogleCSE }

type googleCSEResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
		PageMap     struct {
			CSEImage []struct {
				Src string `json:"src"`
			} `json:"cse_image"`
		} `json:"pagemap"`
	} `json:"items"`
}

// Search implements Adapter. The CSE API caps results at 10 per request;
// larger quotas page through start offsets.
func (a *GoogleCSEAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	var hits []entity.RawHit
	query := strings.Join(keywords, " ")

	for start := 1; len(hits) < maxResults && start <= 91; start += 10 {
		q := url.Values{}
		q.Set("key", a.apiKey)
		q.Set("cx", a.engineID)
		q.Set("q", query)
		q.Set("num", "10")
		q.Set("start", fmt.Sprintf("%d", start))

		body, err := a.client.Get(ctx, EngineGoogleCSE, a.baseURL+"?"+q.Encode())
		if err != nil {
			if len(hits) > 0 {
				break
			}
			return nil, fmt.Errorf("Search: %w", err)
		}

		var resp googleCSEResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("Search: decode response: %w", err)
		}
		if len(resp.Items) == 0 {
			break
		}

		for _, item := range resp.Items {
			image := ""
			if len(item.PageMap.CSEImage) > 0 {
				image = item.PageMap.CSEImage[0].Src
			}
			hit := entity.RawHit{
				Title:       item.Title,
				URL:         item.Link,
				Snippet:     item.Snippet,
				Source:      item.DisplayLink,
				Engine:      EngineGoogleCSE,
				ImageURL:    image,
				APISource:   "googleapis.com",
				URLVerified: true,
			}
			if hit.Validate() == nil {
				hits = append(hits, hit)
			}
		}
	}
	return capHits(hits, maxResults), nil
}
