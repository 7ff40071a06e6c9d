package render

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/internal/logger"
	"github.com/Adda-Baaj/newsdesk/pkg/httpclient"
)

const (
	DefaultImage     = "./rgukt_logo.png"
	PlaceholderImage = "https://via.placeholder.com/150"

	maxProbeWorkers = 8
)

// Images is the card image fallback chain: the item's own image, then
// Default, then Placeholder when the chosen source cannot be loaded.
type Images struct {
	Default     string
	Placeholder string
}

// Primary is the source a card tries first.
func (im Images) Primary(item domain.NewsItem) string {
	if src := strings.TrimSpace(item.ImageURL); src != "" {
		return src
	}
	return im.Default
}

// Resolve returns Primary, or Placeholder when loadable rejects it. A nil
// loadable accepts everything.
func (im Images) Resolve(item domain.NewsItem, loadable func(string) bool) string {
	src := im.Primary(item)
	if src == "" || (loadable != nil && !loadable(src)) {
		return im.Placeholder
	}
	return src
}

// Prober checks whether image sources can be loaded: local paths must exist
// under BaseDir, remote URLs must answer 2xx.
type Prober struct {
	client  httpclient.Client
	log     logger.Logger
	baseDir string
}

// NewProber builds a Prober. Relative local paths resolve against baseDir.
func NewProber(client httpclient.Client, log logger.Logger, baseDir string) *Prober {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Prober{client: client, log: log, baseDir: baseDir}
}

// Loadable reports whether src can be fetched.
func (p *Prober) Loadable(ctx context.Context, src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}

	switch u.Scheme {
	case "http", "https":
		if p.client == nil {
			return false
		}
		resp, err := p.client.Do(ctx, http.MethodHead, src, nil, nil)
		if err == nil && resp.StatusCode() == http.StatusMethodNotAllowed {
			resp, err = p.client.Get(ctx, src, nil)
		}
		if err != nil {
			p.log.DebugObj("image probe failed", "image_probe", map[string]any{"src": src, "error": err.Error()})
			return false
		}
		return resp.IsSuccess()
	case "", "file":
		path := u.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.baseDir, path)
		}
		info, err := os.Stat(path)
		return err == nil && !info.IsDir()
	default:
		return false
	}
}

// ResolveAll returns the image source for each item, in order. Distinct
// sources are probed once each by a bounded pool of workers. When ctx is
// cancelled the sources not yet probed keep their primary value.
func (p *Prober) ResolveAll(ctx context.Context, im Images, items []domain.NewsItem) []string {
	out := make([]string, len(items))
	var unique []string
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		src := im.Primary(it)
		out[i] = src
		if src != "" && !seen[src] {
			seen[src] = true
			unique = append(unique, src)
		}
	}
	if len(unique) == 0 {
		for i := range out {
			out[i] = im.Resolve(items[i], nil)
		}
		return out
	}

	loadable := make(map[string]bool, len(unique))
	var mu sync.Mutex
	jobs := make(chan string)
	var wg sync.WaitGroup

	for range min(len(unique), maxProbeWorkers) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				if ctx.Err() != nil {
					continue
				}
				ok := p.Loadable(ctx, src)
				mu.Lock()
				loadable[src] = ok
				mu.Unlock()
			}
		}()
	}

	for _, src := range unique {
		if ctx.Err() != nil {
			break
		}
		jobs <- src
	}
	close(jobs)
	wg.Wait()

	for i, it := range items {
		out[i] = im.Resolve(it, func(src string) bool {
			ok, probed := loadable[src]
			return !probed || ok
		})
	}
	return out
}
