package yahoo

import (
	"context"
	"fmt"
	"time"

	"Sully/internal/domain/repository"
	xhttp "Sully/pkg/http"
)

// Client implements QuoteProvider against the Yahoo Finance chart
// endpoint. One request per symbol, daily interval, five day range.
type Client struct {
	baseURL string
	client  *xhttp.Client
}

// New creates a Yahoo quote provider.
func New(baseURL string, timeout time.Duration) repository.QuoteProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				PreviousClose       float64 `json:"previousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote fetches one symbol's current quote and trailing daily closes.
func (c *Client) Quote(ctx context.Context, symbol string) (repository.RawQuote, error) {
	var resp chartResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, symbol),
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"range":    {"5d"},
		},
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
	}, &resp)
	if err != nil {
		return repository.RawQuote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return repository.RawQuote{}, fmt.Errorf("quote %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return repository.RawQuote{}, fmt.Errorf("quote %s: empty result", symbol)
	}

	r := resp.Chart.Result[0]
	raw := repository.RawQuote{
		Price:         r.Meta.RegularMarketPrice,
		PreviousClose: r.Meta.PreviousClose,
		Volume:        r.Meta.RegularMarketVolume,
	}
	if len(r.Indicators.Quote) > 0 {
		for _, close := range r.Indicators.Quote[0].Close {
			if close != nil {
				raw.History = append(raw.History, *close)
			}
		}
	}
	return raw, nil
}
