// Package coordinator ties the dashboards of a session together: it
// validates them, runs one scheduler per dashboard, moves the carousel and
// turns live widget state into render instructions for the current view.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/engine"
	"github.com/tonhe/promenade/internal/logging"
	"github.com/tonhe/promenade/internal/theme"
)

// SourceFactory builds the metrics source for one dashboard.
type SourceFactory func(dash *dashboard.Dashboard) (engine.Source, error)

// Options configures a Coordinator.
type Options struct {
	Theme *theme.Theme
	// PauseInactive stops polling dashboards that are not on screen. The
	// default keeps every dashboard polling in the background.
	PauseInactive bool
	// Timeout is the poll timeout for widgets that do not set their own.
	Timeout time.Duration
	Logger  *log.Logger
}

// Coordinator owns the carousel of dashboards, their schedulers and the
// active theme.
type Coordinator struct {
	boards  []*Board
	factory SourceFactory
	opts    Options
	log     *log.Logger

	manager *engine.Manager
	theme   atomic.Pointer[theme.Theme]
	updates chan struct{}

	mu       sync.Mutex
	carousel *Carousel
	started  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New validates every dashboard against the active theme and returns a
// coordinator ready to Start. Nothing is polled until then.
func New(dashboards []*dashboard.Dashboard, factory SourceFactory, opts Options) (*Coordinator, error) {
	if opts.Theme == nil {
		opts.Theme = theme.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if factory == nil {
		return nil, errors.New("coordinator: no source factory")
	}
	carousel, err := NewCarousel(len(dashboards))
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		factory:  factory,
		opts:     opts,
		log:      opts.Logger,
		manager:  engine.NewManager(opts.Logger),
		updates:  make(chan struct{}, 1),
		carousel: carousel,
	}
	c.theme.Store(opts.Theme)

	for i, d := range dashboards {
		b, err := Prepare(d, opts.Theme)
		if err != nil {
			return nil, err
		}
		b.Key = fmt.Sprintf("%03d", i)
		c.boards = append(c.boards, b)
	}
	return c, nil
}

// Start launches a scheduler for every dashboard. With PauseInactive, all
// but the current dashboard are paused after their first poll.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("coordinator already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	for i, b := range c.boards {
		src, err := c.factory(b.Dash)
		if err != nil {
			cancel()
			c.manager.StopAll()
			return fmt.Errorf("dashboard %q: source: %w", b.Name, err)
		}
		err = c.manager.Start(ctx, b.Key, b.Dash, src, engine.Options{Timeout: c.opts.Timeout})
		if err != nil {
			cancel()
			c.manager.StopAll()
			return fmt.Errorf("dashboard %q: %w", b.Name, err)
		}
		events, _ := c.manager.Subscribe(b.Key)
		c.wg.Add(1)
		go c.forward(ctx, events)

		if c.opts.PauseInactive && i != c.carousel.Index() {
			_ = c.manager.Pause(b.Key)
		}
	}
	c.started = true
	c.cancel = cancel
	c.notify()
	c.log.Info("dashboards started", "count", len(c.boards), "pause_inactive", c.opts.PauseInactive)
	return nil
}

// forward collapses scheduler events into the single updates channel.
func (c *Coordinator) forward(ctx context.Context, events <-chan engine.EngineEvent) {
	defer c.wg.Done()
	for {
		select {
		case <-events:
			c.notify()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Coordinator) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// Updates signals that something on screen may have changed. Signals are
// coalesced; receivers should redraw from Frame.
func (c *Coordinator) Updates() <-chan struct{} { return c.updates }

// Stop halts every scheduler and releases the sources.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}
	c.manager.StopAll()
	c.cancel()
	c.wg.Wait()
	c.started = false
	c.log.Info("dashboards stopped")
}

// Next shows the following dashboard, wrapping after the last.
func (c *Coordinator) Next() int {
	return c.move(func() int { return c.carousel.Next() })
}

// Previous shows the preceding dashboard, wrapping before the first.
func (c *Coordinator) Previous() int {
	return c.move(func() int { return c.carousel.Previous() })
}

// Show jumps to the dashboard at idx.
func (c *Coordinator) Show(idx int) error {
	var err error
	c.move(func() int {
		if err = c.carousel.Set(idx); err != nil {
			return c.carousel.Index()
		}
		return idx
	})
	return err
}

// move runs step under the lock. Timers of the dashboard being left keep
// running unless PauseInactive is set.
func (c *Coordinator) move(step func() int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	from := c.carousel.Index()
	to := step()
	if to != from && c.started && c.opts.PauseInactive {
		_ = c.manager.Pause(c.boards[from].Key)
		_ = c.manager.Resume(c.boards[to].Key)
	}
	c.log.Debug("carousel moved", "from", from, "to", to)
	c.notify()
	return to
}

// Current returns the visible dashboard and its index.
func (c *Coordinator) Current() (*Board, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.carousel.Index()
	return c.boards[idx], idx
}

// Len returns the number of dashboards in the carousel.
func (c *Coordinator) Len() int { return len(c.boards) }

// Boards returns every prepared dashboard in carousel order.
func (c *Coordinator) Boards() []*Board { return c.boards }

// RefreshNow polls every widget of the visible dashboard immediately.
func (c *Coordinator) RefreshNow() error {
	b, _ := c.Current()
	return c.manager.RefreshNow(b.Key)
}

// Info returns scheduler state for the visible dashboard.
func (c *Coordinator) Info() engine.EngineInfo {
	_, idx := c.Current()
	return c.Infos()[idx]
}

// Infos returns scheduler state for every dashboard in carousel order.
func (c *Coordinator) Infos() []engine.EngineInfo {
	running := make(map[string]engine.EngineInfo)
	for _, info := range c.manager.List() {
		running[info.Key] = info
	}
	out := make([]engine.EngineInfo, len(c.boards))
	for i, b := range c.boards {
		info, ok := running[b.Key]
		if !ok {
			info = engine.EngineInfo{Key: b.Key, Title: b.Dash.Title, State: engine.EngineStopped}
		}
		out[i] = info
	}
	return out
}

// Theme returns the active theme.
func (c *Coordinator) Theme() *theme.Theme { return c.theme.Load() }

// SetTheme swaps the active theme. Every theme defines the same palette
// names, so rules validated against one resolve against all.
func (c *Coordinator) SetTheme(t *theme.Theme) {
	if t == nil {
		return
	}
	c.theme.Store(t)
	c.log.Info("theme changed", "theme", t.Slug)
	c.notify()
}

// CycleTheme switches to the next registered theme and returns it.
func (c *Coordinator) CycleTheme() *theme.Theme {
	t := theme.Next(c.Theme().Slug)
	c.SetTheme(t)
	return t
}

// snapshot returns the live state of b, or an all-pending snapshot before
// Start.
func (c *Coordinator) snapshot(b *Board) *engine.DashboardSnapshot {
	if snap, err := c.manager.Snapshot(b.Key); err == nil {
		return snap
	}
	return &engine.DashboardSnapshot{
		Key:     b.Key,
		Title:   b.Dash.Title,
		Widgets: make([]engine.WidgetState, len(b.Dash.Widgets)),
	}
}
