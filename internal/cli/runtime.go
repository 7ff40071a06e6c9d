package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adda-Baaj/newsdesk/internal/admin"
	"github.com/Adda-Baaj/newsdesk/internal/config"
	"github.com/Adda-Baaj/newsdesk/internal/journal"
	"github.com/Adda-Baaj/newsdesk/internal/logger"
	"github.com/Adda-Baaj/newsdesk/internal/notify"
	"github.com/Adda-Baaj/newsdesk/internal/render"
	"github.com/Adda-Baaj/newsdesk/pkg/httpclient"
	"github.com/Adda-Baaj/newsdesk/pkg/newsapi"
	"github.com/Adda-Baaj/newsdesk/pkg/publishers"
)

const publisherQueueSize = 64

type namedSink struct {
	name string
	sink notify.Sink
}

type runtimeOptions struct {
	interactive bool
	sinks       []namedSink
	panelOpts   []admin.Option
}

// runtime is everything a command needs, built from config.
type runtime struct {
	cfg     *config.Config
	log     logger.Logger
	http    httpclient.Client
	api     *newsapi.Client
	panel   *admin.Panel
	journal *journal.Store
	closers []func() error
}

func newRuntime(ctx context.Context, configPath string, opts runtimeOptions) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.LoggerOptions(opts.interactive))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	rt := &runtime{cfg: cfg, log: log}
	rt.http = httpclient.NewRestyClient(cfg.API.Timeout)
	rt.api = newsapi.New(cfg.API.BaseURL, rt.http,
		newsapi.WithHeaders(cfg.API.Headers),
		newsapi.WithLogger(log),
	)

	fan := notify.NewFanout().Add("log", notify.NewLogSink(log))

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			rt.close()
			return nil, err
		}
		rt.journal = j
		rt.closers = append(rt.closers, j.Close)
		fan.Add("journal", j)
	}

	if cfg.Publishers.File != "" {
		sink, err := buildPublisherSink(ctx, cfg.Publishers.File, log)
		if err != nil {
			rt.close()
			return nil, err
		}
		async := notify.NewAsync(sink, publisherQueueSize, log)
		// Drain the queue before the publisher clients go away.
		rt.closers = append(rt.closers, sink.Close, async.Close)
		fan.Add("publishers", async)
	}

	for _, s := range opts.sinks {
		fan.Add(s.name, s.sink)
	}

	panelOpts := []admin.Option{
		admin.WithNotifier(fan),
		admin.WithLogger(log),
		admin.WithReverseDelay(cfg.Panel.ReverseDelay),
	}
	rt.panel = admin.New(rt.api, append(panelOpts, opts.panelOpts...)...)

	log.DebugObj("runtime ready", "runtime", map[string]any{
		"base_url": rt.api.BaseURL(),
		"sinks":    fan.Len(),
		"journal":  cfg.Journal.Enabled,
	})
	return rt, nil
}

func buildPublisherSink(ctx context.Context, path string, log logger.Logger) (*notify.PublisherSink, error) {
	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("loading publishers: %w", err)
	}
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), log)
	if err != nil {
		return nil, fmt.Errorf("building publishers: %w", err)
	}
	return notify.NewPublisherSink(pubs), nil
}

func (rt *runtime) images() render.Images {
	return render.Images{
		Default:     rt.cfg.Panel.DefaultImage,
		Placeholder: rt.cfg.Panel.PlaceholderImage,
	}
}

func (rt *runtime) prober() *render.Prober {
	return render.NewProber(rt.http, rt.log, ".")
}

// close tears everything down in reverse order of construction.
func (rt *runtime) close() error {
	if rt.panel != nil {
		rt.panel.Close()
	}
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	// Sync on stderr/stdout fails on some platforms; it is best effort.
	_ = rt.log.Sync()
	return errors.Join(errs...)
}
