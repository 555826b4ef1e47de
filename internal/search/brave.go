package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	braveDefaultEndpoint = "https://api.search.brave.com/res/v1/web/search"
	braveDefaultTimeout  = 12 * time.Second
	braveMaxResults      = 8
	braveMaxBodyBytes    = 1 << 20
)

// BraveClient queries the Brave web search API.
type BraveClient struct {
	apiKey     string
	endpoint   string
	client     *http.Client
	maxResults int
}

// BraveOptions configures HTTP behaviour for BraveClient.
type BraveOptions struct {
	HTTPClient *http.Client
	Endpoint   string
	MaxResults int
}

func NewBrave(apiKey string, opts *BraveOptions) *BraveClient {
	cfg := BraveOptions{}
	if opts != nil {
		cfg = *opts
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: braveDefaultTimeout}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = braveDefaultEndpoint
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = braveMaxResults
	}
	return &BraveClient{
		apiKey:     strings.TrimSpace(apiKey),
		endpoint:   endpoint,
		client:     client,
		maxResults: maxResults,
	}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (b *BraveClient) Search(ctx context.Context, query string) ([]Result, error) {
	if b.apiKey == "" {
		return nil, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}

	reqURL := fmt.Sprintf("%s?q=%s&count=%d", b.endpoint, url.QueryEscape(query), b.maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, braveMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	var parsed braveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Web.Results))
	for i, hit := range parsed.Web.Results {
		if i >= b.maxResults {
			break
		}
		// Rank-derived relevance: first hit 100, stepping down to a floor.
		score := 100 - float64(i)*10
		if score < 10 {
			score = 10
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(hit.Title),
			Content: strings.TrimSpace(hit.Description),
			URL:     strings.TrimSpace(hit.URL),
			Score:   score,
		})
	}
	return results, nil
}
