package espn

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Sully/internal/domain/repository"
	xhttp "Sully/pkg/http"
)

// Team paths on the public ESPN site API.
var teamPaths = map[string]string{
	"new england patriots": "football/nfl/teams/ne",
	"boston celtics":       "basketball/nba/teams/bos",
}

// Client implements SportsSource against the public ESPN site API. Only
// the two tracked New England teams are recognized.
type Client struct {
	baseURL string
	client  *xhttp.Client
}

// New creates a sports record client.
func New(baseURL string, timeout time.Duration) repository.SportsSource {
	if baseURL == "" {
		baseURL = "https://site.api.espn.com/apis/site/v2/sports"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type teamResponse struct {
	Team struct {
		DisplayName string `json:"displayName"`
		Record      struct {
			Items []struct {
				Summary string `json:"summary"`
			} `json:"items"`
		} `json:"record"`
	} `json:"team"`
}

// TeamRecord returns "<name>: <w-l>" for a recognized team.
func (c *Client) TeamRecord(ctx context.Context, team string) (string, error) {
	path, ok := teamPaths[strings.ToLower(team)]
	if !ok {
		return "", fmt.Errorf("unrecognized team %q", team)
	}

	var resp teamResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/" + path,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("team record: %w", err)
	}

	record := "N/A"
	if len(resp.Team.Record.Items) > 0 && resp.Team.Record.Items[0].Summary != "" {
		record = resp.Team.Record.Items[0].Summary
	}
	name := resp.Team.DisplayName
	if name == "" {
		name = team
	}
	return fmt.Sprintf("%s record: %s", name, record), nil
}
