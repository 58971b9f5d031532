package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL    = "https://deliver.kontent.ai"
	DefaultPreviewURL = "https://preview-deliver.kontent.ai"
)

// Querier is the content delivery collaborator consumed by the loader and
// the live update applier.
type Querier interface {
	// Query returns the items matching q. A request the API answers with
	// "not found" returns an error wrapping ErrNotFound; zero matching items
	// is an empty slice and no error.
	Query(ctx context.Context, q Query) ([]*Item, error)

	// FetchByCodenames returns the items with the given codenames in a
	// single request, using the mode and language of base.
	FetchByCodenames(ctx context.Context, base Query, codenames []string) ([]*Item, error)
}

// Options configures a Client.
type Options struct {
	EnvironmentID string
	APIKey        string // secure access key for the live API, optional
	PreviewAPIKey string // required for preview queries
	BaseURL       string
	PreviewURL    string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Client is an HTTP client for the Delivery API bound to one environment.
// It is safe for concurrent use and its configuration never changes.
type Client struct {
	opts   Options
	client *http.Client
}

// NewClient creates a Client. EnvironmentID is required.
func NewClient(opts Options) (*Client, error) {
	if opts.EnvironmentID == "" {
		return nil, fmt.Errorf("delivery: environment id is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PreviewURL == "" {
		opts.PreviewURL = DefaultPreviewURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	opts.PreviewURL = strings.TrimRight(opts.PreviewURL, "/")
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{opts: opts, client: hc}, nil
}

// EnvironmentID returns the environment the client is bound to.
func (c *Client) EnvironmentID() string { return c.opts.EnvironmentID }

// Query implements Querier.
func (c *Client) Query(ctx context.Context, q Query) ([]*Item, error) {
	if q.Preview && c.opts.PreviewAPIKey == "" {
		return nil, &TransportError{Err: errors.New("preview requested but no preview API key is configured")}
	}

	base, key := c.opts.BaseURL, c.opts.APIKey
	if q.Preview {
		base, key = c.opts.PreviewURL, c.opts.PreviewAPIKey
	}
	endpoint := fmt.Sprintf("%s/%s/items", base, c.opts.EnvironmentID)
	if enc := q.Values().Encode(); enc != "" {
		endpoint += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	if q.Preview {
		req.Header.Set("X-KC-Wait-For-Loading-New-Content", "true")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		_ = json.Unmarshal(body, &ae)
		if resp.StatusCode == http.StatusNotFound {
			if ae.Message != "" {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, ae.Message)
			}
			return nil, ErrNotFound
		}
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    ae.Message,
			RequestID:  ae.RequestID,
			ErrorCode:  ae.ErrorCode,
		}
	}

	var listing ListingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding listing: %w", err)}
	}
	for codename, it := range listing.ModularContent {
		if it == nil {
			delete(listing.ModularContent, codename)
		}
	}
	Hydrate(listing.Items, listing.ModularContent)
	return listing.Items, nil
}

// FetchByCodenames implements Querier.
func (c *Client) FetchByCodenames(ctx context.Context, base Query, codenames []string) ([]*Item, error) {
	if len(codenames) == 0 {
		return nil, nil
	}
	return c.Query(ctx, base.ByCodenames(codenames))
}
