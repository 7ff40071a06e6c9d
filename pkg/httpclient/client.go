package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is the HTTP surface used by the gateway and the HTTP publisher.
// Transport failures come back as errors; any received response, whatever
// its status, is returned for the caller to judge.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error)
	Post(ctx context.Context, url string, body any, headers map[string]string) (*resty.Response, error)
	Put(ctx context.Context, url string, query map[string]string, headers map[string]string) (*resty.Response, error)
	Delete(ctx context.Context, url string, query map[string]string, headers map[string]string) (*resty.Response, error)
	Do(ctx context.Context, method, url string, body any, headers map[string]string) (*resty.Response, error)
}

type restyClient struct {
	client *resty.Client
}

// NewRestyClient builds a Client with the given per-request timeout.
func NewRestyClient(timeout time.Duration) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &restyClient{client: c}
}

// Wrap adapts an existing resty client, mainly so tests can point it at an
// httptest server with custom transport settings.
func Wrap(c *resty.Client) Client {
	return &restyClient{client: c}
}

func (r *restyClient) request(ctx context.Context, headers map[string]string) *resty.Request {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	return req
}

func (r *restyClient) Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error) {
	return r.request(ctx, headers).Get(url)
}

func (r *restyClient) Post(ctx context.Context, url string, body any, headers map[string]string) (*resty.Response, error) {
	return r.request(ctx, headers).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
}

func (r *restyClient) Put(ctx context.Context, url string, query map[string]string, headers map[string]string) (*resty.Response, error) {
	return r.request(ctx, headers).
		SetHeader("Content-Type", "application/json").
		SetQueryParams(query).
		Put(url)
}

func (r *restyClient) Delete(ctx context.Context, url string, query map[string]string, headers map[string]string) (*resty.Response, error) {
	return r.request(ctx, headers).
		SetQueryParams(query).
		Delete(url)
}

func (r *restyClient) Do(ctx context.Context, method, url string, body any, headers map[string]string) (*resty.Response, error) {
	req := r.request(ctx, headers)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return req.Execute(method, url)
}
