package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// TavilyClient is a minimal client for the Tavily search API. A client
// without an API key reports itself unavailable and the service layer falls
// back to static recommendations.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type tavilySearchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
}

type TavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type TavilyResponse struct {
	Query   string         `json:"query"`
	Results []TavilyResult `json:"results"`
}

func NewTavilyClient(apiKey string, timeout time.Duration, logger *slog.Logger) *TavilyClient {
	if apiKey == "" {
		logger.Warn("Tavily API key not set, web search will use fallback data")
	}
	return &TavilyClient{
		apiKey:  apiKey,
		baseURL: defaultTavilyBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *TavilyClient) Available() bool {
	return c.apiKey != ""
}

// Search runs one query against the Tavily search endpoint.
func (c *TavilyClient) Search(ctx context.Context, query, searchDepth string, maxResults int) (*TavilyResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tavily client not configured")
	}

	payload, err := json.Marshal(tavilySearchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: searchDepth,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search request returned status %d: %s", resp.StatusCode, string(body))
	}

	var result TavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return &result, nil
}
