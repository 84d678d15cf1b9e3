package news

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"newsdesk/internal/fetch"
)

// Endpoint is a path under the API base URL.
type Endpoint string

const (
	EndpointTopHeadlines Endpoint = "top-headlines"
	EndpointEverything   Endpoint = "everything"
)

// maxResponseBytes caps how much of an upstream body we are willing to read.
const maxResponseBytes = 8 << 20

// Upstream is the news API as the service sees it.
type Upstream interface {
	// Enabled reports whether a credential is configured. When it is false
	// the service never calls Fetch.
	Enabled() bool
	Fetch(ctx context.Context, endpoint Endpoint, params url.Values) ([]Article, error)
}

// Client talks to a NewsAPI-compatible HTTP API.
type Client struct {
	http    *fetch.Client
	baseURL string
	apiKey  string
}

// NewClient creates a Client for baseURL (e.g. https://newsapi.org/v2).
func NewClient(hc *fetch.Client, baseURL, apiKey string) *Client {
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Fetch performs one GET against endpoint and returns the article list of a
// successful envelope. Any other outcome is an *UpstreamError.
func (c *Client) Fetch(ctx context.Context, endpoint Endpoint, params url.Values) ([]Article, error) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("apiKey", c.apiKey)

	reqURL := c.baseURL + "/" + string(endpoint) + "?" + q.Encode()
	resp, err := c.http.Get(ctx, reqURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, Cause: ErrCauseNetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, Cause: ErrCauseNetworkFailure, Err: err}
	}

	var env response
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{
			Endpoint:   endpoint,
			Cause:      ErrCauseBadStatus,
			StatusCode: resp.StatusCode,
			Message:    env.Message,
		}
	}
	if decodeErr != nil {
		return nil, &UpstreamError{Endpoint: endpoint, Cause: ErrCauseDecode, Err: decodeErr}
	}
	if env.Status != "ok" {
		return nil, &UpstreamError{Endpoint: endpoint, Cause: ErrCauseAPI, Message: env.Message}
	}

	if env.Articles == nil {
		return []Article{}, nil
	}
	return env.Articles, nil
}
