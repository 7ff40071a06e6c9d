package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/pkg/httpclient"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  Inter-college   finals\nthis week ", want: "Inter-college finals this week"},
		{name: "paragraphs", in: "<p>Team won</p><p>Next match Friday</p>", want: "Team won Next match Friday"},
		{name: "inline", in: "Score <b>3</b>-<i>1</i>", want: "Score 3-1"},
		{name: "entities", in: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "script dropped", in: "<div>ok</div><script>alert(1)</script>", want: "ok"},
		{name: "line breaks", in: "one<br>two<br/>three", want: "one two three"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 10))
	assert.Equal(t, "anything", Excerpt("anything", 0))
	assert.Equal(t, "…", Excerpt("abc", 1))

	got := Excerpt("The annual athletics meet begins on Monday morning", 24)
	assert.Equal(t, "The annual athletics…", got)
	assert.LessOrEqual(t, len([]rune(got)), 24)

	got = Excerpt("Supercalifragilistic", 8)
	assert.Equal(t, "Superca…", got)

	got = Excerpt("खेल समाचार आज", 6)
	assert.Equal(t, "खेल…", got)
}

func TestImagesResolve(t *testing.T) {
	im := Images{Default: DefaultImage, Placeholder: PlaceholderImage}

	withImage := domain.NewsItem{ImageURL: "http://img/x.png"}
	assert.Equal(t, "http://img/x.png", im.Primary(withImage))
	assert.Equal(t, DefaultImage, im.Primary(domain.NewsItem{ImageURL: "  "}))

	assert.Equal(t, "http://img/x.png", im.Resolve(withImage, nil))
	assert.Equal(t, PlaceholderImage, im.Resolve(withImage, func(string) bool { return false }))
	assert.Equal(t, PlaceholderImage, Images{Placeholder: PlaceholderImage}.Resolve(domain.NewsItem{}, nil))
}

func TestProberLocalFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rgukt_logo.png"), []byte("png"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder"), 0o755))
	p := NewProber(nil, nil, dir)

	ctx := context.Background()
	assert.True(t, p.Loadable(ctx, "./rgukt_logo.png"))
	assert.True(t, p.Loadable(ctx, filepath.Join(dir, "rgukt_logo.png")))
	assert.False(t, p.Loadable(ctx, "./missing.png"))
	assert.False(t, p.Loadable(ctx, "./folder"))
	assert.False(t, p.Loadable(ctx, "ftp://host/x.png"))
	assert.False(t, p.Loadable(ctx, "http://host/x.png"), "no client means no remote probing")
}

func TestProberResolveAll(t *testing.T) {
	lock := make(chan struct{}, 1)
	hits := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock <- struct{}{}
		hits[r.URL.Path]++
		<-lock
		switch {
		case strings.HasSuffix(r.URL.Path, "ok.png"):
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "get-only.png"):
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rgukt_logo.png"), []byte("png"), 0o600))

	p := NewProber(httpclient.NewRestyClient(5*time.Second), nil, dir)
	im := Images{Default: DefaultImage, Placeholder: PlaceholderImage}
	items := []domain.NewsItem{
		{Title: "a", ImageURL: srv.URL + "/ok.png"},
		{Title: "b", ImageURL: srv.URL + "/gone.png"},
		{Title: "c"},
		{Title: "d", ImageURL: srv.URL + "/ok.png"},
		{Title: "e", ImageURL: srv.URL + "/get-only.png"},
	}

	got := p.ResolveAll(context.Background(), im, items)
	assert.Equal(t, []string{
		srv.URL + "/ok.png",
		PlaceholderImage,
		DefaultImage,
		srv.URL + "/ok.png",
		srv.URL + "/get-only.png",
	}, got)
	assert.Equal(t, 1, hits["/ok.png"], "each source is probed once")
}

func TestProberResolveAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProber(httpclient.NewRestyClient(time.Second), nil, t.TempDir())
	im := Images{Default: DefaultImage, Placeholder: PlaceholderImage}
	got := p.ResolveAll(ctx, im, []domain.NewsItem{{ImageURL: "http://127.0.0.1:1/x.png"}})
	assert.Equal(t, []string{"http://127.0.0.1:1/x.png"}, got)
}
