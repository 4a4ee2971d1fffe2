package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps resty for HTTP calls to external APIs.
type Client struct {
	r *resty.Client
}

// Response carries the status code alongside the body so callers can treat
// non-2xx replies as upstream errors.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// New creates a new HTTP client with sensible defaults.
func New() *Client {
	r := resty.New().SetTimeout(30 * time.Second)
	return &Client{r: r}
}

// WithTimeout sets a custom timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithHeader sets a custom header.
func (c *Client) WithHeader(key, value string) *Client {
	c.r.SetHeader(key, value)
	return c
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	resp, err := c.r.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, url string, body interface{}) (*Response, error) {
	req := c.r.R().SetContext(ctx).SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(url)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}
