package newsapi

import (
	"context"
	"fmt"
	"time"

	"Sully/internal/domain/repository"
	xhttp "Sully/pkg/http"
)

const pageSize = 5

// Client implements NewsSource against newsapi.org. Without an API key it
// reports unconfigured and the aggregator falls through to the sports
// source.
type Client struct {
	apiKey  string
	baseURL string
	client  *xhttp.Client
}

// New creates a news search client.
func New(apiKey, baseURL string, timeout time.Duration) repository.NewsSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

type everythingResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title  string `json:"title"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Search returns up to five recent headlines for the query, newest first.
func (c *Client) Search(ctx context.Context, query string) ([]repository.Headline, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("news api key not configured")
	}

	var resp everythingResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/everything",
		QueryParams: map[string][]string{
			"q":        {query},
			"apiKey":   {c.apiKey},
			"language": {"en"},
			"sortBy":   {"publishedAt"},
			"pageSize": {fmt.Sprintf("%d", pageSize)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}

	headlines := make([]repository.Headline, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" {
			continue
		}
		headlines = append(headlines, repository.Headline{Title: a.Title, Source: a.Source.Name})
		if len(headlines) == pageSize {
			break
		}
	}
	return headlines, nil
}
