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

// EngineNewsAPI is the engine name for the NewsAPI.org adapter.
const EngineNewsAPI = "newsapi"

// NewsAPIAdapter queries the NewsAPI.org "everything" endpoint.
type NewsAPIAdapter struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
}

// NewNewsAPIAdapter creates the adapter. The dispatcher only registers it
// when apiKey is non-empty.
func NewNewsAPIAdapter(client *httpclient.Client, apiKey string) *NewsAPIAdapter {
	return &NewsAPIAdapter{
		client:  client,
		apiKey:  apiKey,
		baseURL: "https://newsapi.org/v2/everything",
	}
}

// Name implements Adapter.
func (a *NewsAPIAdapter) Name() string { return EngineNewsAPI }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Search implements Adapter.
func (a *NewsAPIAdapter) Search(ctx context.Context, keywords []string, maxResults int) ([]entity.RawHit, error) {
	q := url.Values{}
	q.Set("q", strings.Join(keywords, " OR "))
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", fmt.Sprintf("%d", min(maxResults, 100)))
	q.Set("apiKey", a.apiKey)

	body, err := a.client.Get(ctx, EngineNewsAPI, a.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("Search: decode response: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("Search: provider error: %s", resp.Message)
	}

	hits := make([]entity.RawHit, 0, len(resp.Articles))
	for _, art := range resp.Articles {
		published, _ := time.Parse(time.RFC3339, art.PublishedAt)
		hit := entity.RawHit{
			Title:         art.Title,
			URL:           art.URL,
			Snippet:       art.Description,
			Source:        art.Source.Name,
			Engine:        EngineNewsAPI,
			Author:        art.Author,
			ImageURL:      art.URLToImage,
			APISource:     "newsapi.org",
			PublishedDate: published,
			URLVerified:   true,
		}
		if hit.Validate() == nil {
			hits = append(hits, hit)
		}
	}
	return capHits(hits, maxResults), nil
}
