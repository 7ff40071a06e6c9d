// Package newsapi talks to the remote News resource. Items are addressed by
// title for update and delete; the server-assigned id is informational.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/internal/logger"
	"github.com/Adda-Baaj/newsdesk/pkg/httpclient"
)

// DefaultBaseURL is where the admin backend serves the collection locally.
const DefaultBaseURL = "http://127.0.0.1:8000/News/"

// Client implements the four collection operations over HTTP.
type Client struct {
	baseURL string
	http    httpclient.Client
	headers map[string]string
	log     logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHeaders adds headers sent on every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a Client for baseURL. A nil http client gets the default resty
// client with a 15 second timeout.
func New(baseURL string, http httpclient.Client, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if http == nil {
		http = httpclient.NewRestyClient(15 * time.Second)
	}
	c := &Client{
		baseURL: baseURL,
		http:    http,
		headers: map[string]string{},
		log:     logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL reports the collection URL the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// ListAll fetches the whole collection in server order.
func (c *Client) ListAll(ctx context.Context) ([]domain.NewsItem, error) {
	resp, err := c.http.Get(ctx, c.baseURL, c.headers)
	if err != nil {
		return nil, c.fail(domain.OpFetch, 0, nil, err)
	}
	if !resp.IsSuccess() {
		// A refusal only counts as rejected when it still carries JSON.
		var decodeErr error
		if !json.Valid(resp.Body()) {
			decodeErr = ErrNotJSON
		}
		return nil, c.fail(domain.OpFetch, resp.StatusCode(), resp.Body(), decodeErr)
	}

	var wire []wireItem
	if err := json.Unmarshal(resp.Body(), &wire); err != nil {
		return nil, c.fail(domain.OpFetch, resp.StatusCode(), resp.Body(), fmt.Errorf("decode collection: %w", err))
	}

	items := make([]domain.NewsItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, w.toDomain())
	}
	return items, nil
}

// Create posts a new item and returns the stored copy the server echoes back.
func (c *Client) Create(ctx context.Context, draft domain.DraftCreate) (domain.NewsItem, error) {
	body := createRequest{
		Title:        draft.Title,
		NewsContent:  draft.Content,
		NewsImageURL: draft.ImageURL,
	}
	resp, err := c.http.Post(ctx, c.baseURL, body, c.headers)
	if err != nil {
		return domain.NewsItem{}, c.fail(domain.OpCreate, 0, nil, err)
	}
	if !resp.IsSuccess() {
		return domain.NewsItem{}, c.fail(domain.OpCreate, resp.StatusCode(), resp.Body(), nil)
	}

	var w wireItem
	if err := json.Unmarshal(resp.Body(), &w); err != nil {
		return domain.NewsItem{}, c.fail(domain.OpCreate, resp.StatusCode(), resp.Body(), fmt.Errorf("decode created item: %w", err))
	}
	return w.toDomain(), nil
}

// Update replaces the content of the item stored under originalTitle. The
// server only receives the title and the new content; any response body is
// ignored.
func (c *Client) Update(ctx context.Context, originalTitle string, item domain.NewsItem) error {
	query := map[string]string{
		"title":        originalTitle,
		"news_content": item.Content,
	}
	resp, err := c.http.Put(ctx, c.baseURL, query, c.headers)
	if err != nil {
		return c.fail(domain.OpUpdate, 0, nil, err)
	}
	if !resp.IsSuccess() {
		return c.fail(domain.OpUpdate, resp.StatusCode(), resp.Body(), nil)
	}
	return nil
}

// Delete removes the item stored under title.
func (c *Client) Delete(ctx context.Context, title string) error {
	resp, err := c.http.Delete(ctx, c.baseURL, map[string]string{"title": title}, c.headers)
	if err != nil {
		return c.fail(domain.OpDelete, 0, nil, err)
	}
	if !resp.IsSuccess() {
		return c.fail(domain.OpDelete, resp.StatusCode(), resp.Body(), nil)
	}
	return nil
}

func (c *Client) fail(op domain.Operation, status int, body []byte, err error) error {
	reqErr := &RequestError{Op: op, StatusCode: status, Err: err}
	if status != 0 {
		reqErr.Body = responseSnippet(body)
	}

	fields := map[string]any{
		"operation": string(op),
		"url":       c.baseURL,
	}
	if status != 0 {
		fields["status"] = status
		fields["body"] = reqErr.Body
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	c.log.WarnObj("news api request failed", "news_api_failure", fields)

	return reqErr
}
