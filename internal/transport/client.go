package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"

	"github.com/agentstation/assetsync/pkg/constants"
	"github.com/agentstation/assetsync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http      *http.Client
	auth      Authenticator
	service   string
	baseURL   string
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBaseURL sets the URL request paths are resolved against.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithService names the remote system in errors.
func WithService(service string) Option {
	return func(c *Client) {
		c.service = service
	}
}

// WithInsecureSkipVerify disables TLS certificate verification, for Casper
// servers running on a self-signed certificate.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}
		c.http.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in per feed
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		auth:      auth,
		service:   "unknown",
		userAgent: constants.AppName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name used in errors.
func (c *Client) Service() string {
	return c.service
}

// DoWithContext performs an HTTP request with authentication applied and context support.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	if err := c.auth.Apply(req); err != nil {
		return nil, err
	}

	// Set common headers
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.APIError{
			Service:  c.service,
			Message:  err.Error(),
			Endpoint: req.URL.Path,
			Err:      err,
		}
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Send(ctx, http.MethodGet, path, nil)
}

// Send performs a request with an optional JSON body.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapParse("json", "request body", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.URL(path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+url, err)
	}
	return c.DoWithContext(ctx, req)
}

// GetJSON performs a GET request and decodes the JSON response into target.
func (c *Client) GetJSON(ctx context.Context, path string, target any) error {
	return c.SendJSON(ctx, http.MethodGet, path, nil, target)
}

// SendJSON performs a request with a JSON body and decodes the JSON response into target.
// A nil target discards the response body.
func (c *Client) SendJSON(ctx context.Context, method, path string, body, target any) error {
	resp, err := c.Send(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.decode(resp, target)
}

// SendRaw performs a request with a JSON body and returns the raw response
// body, for endpoints that do not answer with JSON.
func (c *Client) SendRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	resp, err := c.Send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	data, err := ReadBody(resp)
	return data, c.tag(err)
}

func (c *Client) decode(resp *http.Response, target any) error {
	return c.tag(DecodeResponse(resp, target))
}

// tag fills in the service name on API errors raised while reading a response.
func (c *Client) tag(err error) error {
	var apiErr *errors.APIError
	if errors.As(err, &apiErr) && apiErr.Service == "" {
		apiErr.Service = c.service
	}
	return err
}
