package publishers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/newsdesk/pkg/httpclient"
)

type httpPublisher struct {
	id      string
	url     string
	method  string
	headers map[string]string
	client  httpclient.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil || cfg.HTTP.URL == "" {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	return &httpPublisher{
		id:      cfg.ID,
		url:     cfg.HTTP.URL,
		method:  cfg.HTTP.Method,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyClient(cfg.HTTP.timeout()),
		log:     ensureLogger(log),
	}, nil
}

func (p *httpPublisher) ID() string   { return p.id }
func (p *httpPublisher) Type() string { return TypeHTTP }

// Publish sends the event as JSON. Any non-2xx answer is an error.
func (p *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := p.client.Do(ctx, p.method, p.url, evt, p.headers)
	if err != nil {
		return fmt.Errorf("http publisher %q: %w", p.id, err)
	}
	if !resp.IsSuccess() {
		body := strings.TrimSpace(string(resp.Body()))
		if len(body) > 256 {
			body = body[:256] + "..."
		}
		p.log.WarnObj("http publisher rejected event", "publisher_http_rejected", map[string]any{
			"publisher_id": p.id,
			"event_id":     evt.ID,
			"status":       resp.StatusCode(),
			"body":         body,
		})
		return fmt.Errorf("http publisher %q: unexpected status %d", p.id, resp.StatusCode())
	}
	p.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": p.id,
		"event_id":     evt.ID,
		"status":       resp.StatusCode(),
	})
	return nil
}
