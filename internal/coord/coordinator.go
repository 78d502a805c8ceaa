// Package coord runs the background side of minifeed: it loads the feed
// catalog, drives the poll ticker, and performs the fetches the session
// asks for.
package coord

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/minifeed/internal/logging"
	"github.com/abelbrown/minifeed/internal/model"
	"github.com/abelbrown/minifeed/internal/otel"
	"github.com/abelbrown/minifeed/internal/session"
	"github.com/abelbrown/minifeed/internal/ui"
)

// DefaultPollInterval is the time between poll ticks.
const DefaultPollInterval = 5 * time.Second

// DefaultRequestTimeout bounds each individual fetch.
const DefaultRequestTimeout = 30 * time.Second

const comp = "coord"

// fetcher is the remote item source (satisfied by *fetch.Client).
type fetcher interface {
	Groups(ctx context.Context) ([]string, error)
	Feeds(ctx context.Context) ([]model.Feed, error)
	Items(ctx context.Context, q model.Query) ([]model.Item, error)
}

// sender delivers messages to the UI (satisfied by *tea.Program).
type sender interface {
	Send(msg tea.Msg)
}

// Options configures a Coordinator. Zero values take the defaults.
type Options struct {
	PollInterval   time.Duration
	RequestTimeout time.Duration
	Events         *otel.Logger
}

// Coordinator owns the poll ticker and runs fetches off the UI goroutine.
// Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	fetcher  fetcher
	interval time.Duration
	timeout  time.Duration
	events   *otel.Logger
	wg       sync.WaitGroup
}

// New creates a Coordinator around f.
func New(f fetcher, opts Options) *Coordinator {
	c := &Coordinator{
		fetcher:  f,
		interval: opts.PollInterval,
		timeout:  opts.RequestTimeout,
		events:   opts.Events,
	}
	if c.interval <= 0 {
		c.interval = DefaultPollInterval
	}
	if c.timeout <= 0 {
		c.timeout = DefaultRequestTimeout
	}
	return c
}

// Start loads the catalog, retrying every interval until it succeeds, then
// sends a ui.PollTick every interval. Call with a cancellable context.
func (c *Coordinator) Start(ctx context.Context, s sender) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		loaded := false
		for {
			if !loaded {
				loaded = c.sendCatalog(ctx, s)
			}
			select {
			case <-ctx.Done():
				return
			case at := <-ticker.C:
				if loaded && s != nil {
					s.Send(ui.PollTick{At: at})
				}
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) sendCatalog(ctx context.Context, s sender) bool {
	cat, err := c.LoadCatalog(ctx)
	if ctx.Err() != nil {
		return false
	}
	if s == nil {
		return err == nil
	}
	if err != nil {
		s.Send(ui.CatalogFailed{Err: err})
		return false
	}
	s.Send(ui.CatalogLoaded{Catalog: cat})
	return true
}

// LoadCatalog fetches groups and feeds concurrently. Both must succeed.
func (c *Coordinator) LoadCatalog(ctx context.Context) (*model.Catalog, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		groups []string
		feeds  []model.Feed
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = c.fetcher.Groups(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		feeds, err = c.fetcher.Feeds(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		err = fmt.Errorf("load catalog: %w", err)
		c.events.Emit(otel.Event{
			Level: otel.LevelError,
			Kind:  otel.KindCatalogError,
			Comp:  comp,
			Dur:   time.Since(start),
			Err:   err.Error(),
		})
		logging.Warn("catalog load failed", "err", err)
		return nil, err
	}

	cat := model.NewCatalog(groups, feeds)
	c.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindCatalogLoaded,
		Comp:  comp,
		Dur:   time.Since(start),
		Count: len(cat.Feeds),
		Extra: map[string]any{"groups": len(cat.Groups)},
	})
	logging.Info("catalog loaded", "groups", len(cat.Groups), "feeds", len(cat.Feeds))
	return cat, nil
}

// Fetch runs one session request with the request timeout.
func (c *Coordinator) Fetch(ctx context.Context, req session.Request) session.Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	items, err := c.fetcher.Items(ctx, req.Query())
	return session.Result{
		Request: req,
		Items:   items,
		Err:     err,
		Dur:     time.Since(start),
	}
}

// FetchCmd wraps Fetch as a Bubble Tea command reporting ui.ItemsFetched.
func (c *Coordinator) FetchCmd(ctx context.Context, req session.Request) tea.Cmd {
	return func() tea.Msg {
		return ui.ItemsFetched{Result: c.Fetch(ctx, req)}
	}
}
