package maimemo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akhdanfadh/momosync/internal/logger"
)

const (
	// DefaultBaseURL is the Maimemo open API root.
	DefaultBaseURL = "https://open.maimemo.com/open/api/v1"
	defaultTimeout = 10 * time.Second
)

// Client is a Maimemo notepad API client bound to one notepad title.
type Client struct {
	baseURL    string
	title      string
	header     http.Header // shared by every request, cloned per call
	httpClient *http.Client
	readPolicy ReadFailurePolicy
	logger     logger.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// NewClient creates a new Maimemo API client for the notepad with the given title.
// The token is sent as a bearer credential on every request.
func NewClient(token, title string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		title:   title,
		header: http.Header{
			"Accept":        []string{"application/json"},
			"Authorization": []string{"Bearer " + token},
		},
		httpClient: &http.Client{Timeout: defaultTimeout},
		readPolicy: TreatAsEmpty,
		logger:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL sets a custom API base URL (useful for testing).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/") // ensure no trailing slash
	}
}

// WithHTTPClient sets a custom HTTP client. A nil client is ignored.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout. It works on a copy of the HTTP client,
// so a client passed through WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithReadFailurePolicy sets how ListWords reacts to a failed read.
func WithReadFailurePolicy(p ReadFailurePolicy) ClientOption {
	return func(c *Client) {
		c.readPolicy = p
	}
}

// WithLogger sets the logger for request and fallback visibility.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// Title returns the notepad title the client is bound to.
func (c *Client) Title() string {
	return c.title
}

// doRequest performs a single HTTP request against the API.
//
// Non-2xx responses are turned into errors before handleResp sees the body,
// so handleResp only has to decode a successful response.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body []byte, handleResp func(*http.Response) error) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // close error not actionable after body is read

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readHTTPError(resp)
	}

	return handleResp(resp)
}
