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

// EngineBingNews is the engine name for the Bing News Search adapter.
const EngineBingNews = "bing_news"

// BingNewsAdapter queries the Bing News Search v7 API. Authentication is a
// subscription key header rather than a query parameter.
type BingNewsAdapter struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
}

// NewBingNewsAdapter creates the adapter.
func NewBingNewsAdapter(client *httpclient.Client, apiKey string) *BingNewsAdapter {
	return &BingNewsAdapter{
		client:  client,
		apiKey:  apiKey,
		baseURL: "https://api.bing.microsoft.com/v7.0/news/search",
	}
}

// Name implements Adapter.
func (a *BingNewsAdapter) Name() string { return EngineBingNews }

type bingNewsResponse struct {
	Value []struct {
		Name        string `json:"name"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Provider    []struct {
			Name string `json:"name"`
		} `json:"provider"`
		Image struct {
			Thumbnail struct {
				ContentURL string `json:"contentUrl"`
			} `json:"thumbnail"`
		} `json:"image"`
		DatePublished string `json:"datePublished"`
	} `json:"value"`
}

// Search implements Adapter.
func (a *BingNewsAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	q := url.Values{}
	q.Set("q", strings.Join(keywords, " "))
	q.Set("count", fmt.Sprintf("%d", min(maxResults, 100)))
	q.Set("mkt", "en-US")
	q.Set("freshness", "Month")

	headers := map[string]string{"Ocp-Apim-Subscription-Key": a.apiKey}
	body, err := a.client.GetWithHeaders(ctx, EngineBingNews, a.baseURL+"?"+q.Encode(), headers)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}

	var resp bingNewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("Search: decode response: %w", err)
	}

	hits := make([]entity.RawHit, 0, len(resp.Value))
	for _, item := range resp.Value {
		source := ""
		if len(item.Provider) > 0 {
			source = item.Provider[0].Name
		}
		published, _ := time.Parse(time.RFC3339, item.DatePublished)
		hit := entity.RawHit{
			Title:         item.Name,
			URL:           item.URL,
			Snippet:       item.Description,
			Source:        source,
			Engine:        EngineBingNews,
			ImageURL:      item.Image.Thumbnail.ContentURL,
			APISource:     "bing.microsoft.com",
			PublishedDate: published,
			URLVerified:   true,
		}
		if hit.Validate() == nil {
			hits = append(hits, hit)
		}
	}
	return capHits(hits, maxResults), nil
}
