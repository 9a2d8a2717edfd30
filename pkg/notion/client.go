package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Default client settings.
const (
	DefaultBaseURL   = "https://api.notion.com"
	DefaultVersion   = "2022-06-28"
	DefaultRateLimit = 3.0 // Notion's published integration limit
	DefaultTimeout   = 30 * time.Second
)

// ClientConfig configures the HTTP source.
type ClientConfig struct {
	// APIKey is the integration token (required).
	APIKey string

	// BaseURL overrides the API endpoint. Used in tests.
	BaseURL string

	// Version is the Notion-Version header value.
	Version string

	// RateLimit is the maximum requests per second. Zero uses the
	// default; negative disables limiting.
	RateLimit float64

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Logger receives request-level debug logs.
	Logger *zap.Logger
}

// Client is the HTTP implementation of Source against the Notion API.
//
// All calls wait on a shared rate limiter before issuing a request, so a
// single client bounds total upstream call volume across concurrent
// crawl subtrees.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	version    string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

var _ Source = (*Client)(nil)

// NewClient creates a Client from the given configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		version:    cfg.Version,
		limiter:    limiter,
		logger:     cfg.Logger,
	}, nil
}

// RetrievePage fetches a page by id.
func (c *Client) RetrievePage(ctx context.Context, id string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+id, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// RetrieveDatabase fetches a database by id.
func (c *Client) RetrieveDatabase(ctx context.Context, id string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+id, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// RetrieveBlock fetches a block by id.
func (c *Client) RetrieveBlock(ctx context.Context, id string) (*Block, error) {
	var block Block
	if err := c.do(ctx, http.MethodGet, "/v1/blocks/"+id, nil, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// ListChildren returns one page of a block's children.
func (c *Client) ListChildren(ctx context.Context, id, cursor string) (*BlockList, error) {
	path := "/v1/blocks/" + id + "/children"
	if cursor != "" {
		path += "?start_cursor=" + url.QueryEscape(cursor)
	}
	var list BlockList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// QueryDatabase returns one page of a database's rows.
func (c *Client) QueryDatabase(ctx context.Context, id, cursor string) (*BlockList, error) {
	body := map[string]any{}
	if cursor != "" {
		body["start_cursor"] = cursor
	}
	var list BlockList
	if err := c.do(ctx, http.MethodPost, "/v1/databases/"+id+"/query", body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// do issues one rate-limited request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("notion request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(method+" "+path, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError builds an APIError from an upstream error response body.
func (c *Client) apiError(op string, resp *http.Response) error {
	apiErr := &APIError{Op: op, Status: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}

	c.logger.Debug("notion error response",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("code", apiErr.Code))
	return apiErr
}
