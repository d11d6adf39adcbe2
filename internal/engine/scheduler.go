package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/format"
	"github.com/tonhe/promenade/internal/logging"
)

// DefaultTimeout bounds a poll when neither the widget nor Options set one.
const DefaultTimeout = 10 * time.Second

// Options configures a Scheduler.
type Options struct {
	// Key identifies the dashboard in snapshots, events and logs.
	Key string
	// Timeout is the per-poll timeout for widgets that set none.
	Timeout time.Duration
	Logger  *log.Logger
}

type control int

const (
	ctlRefresh control = iota
	ctlPause
	ctlResume
)

// allWidgets is the tick index used by the shared dashboard timer.
const allWidgets = -1

type pollResult struct {
	idx    int
	sample Sample
	err    error
	at     time.Time
}

// ticker is the part of time.Ticker the widget timers use.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type clockTicker struct{ *time.Ticker }

func (t clockTicker) C() <-chan time.Time { return t.Ticker.C }

func newClockTicker(d time.Duration) ticker { return clockTicker{time.NewTicker(d)} }

type widgetSlot struct {
	cfg      *dashboard.Widget
	tpl      *format.Template
	interval time.Duration
	timeout  time.Duration
	state    WidgetState
	history  *RingBuffer[float64]
}

// Scheduler polls every widget of one dashboard on its own cadence. A
// single loop goroutine owns all widget state: timer ticks, poll results
// and control requests reach it over channels, and readers only ever see
// published snapshots.
type Scheduler struct {
	key  string
	dash *dashboard.Dashboard
	src  Source
	log  *log.Logger

	// Owned by the loop goroutine.
	slots      []*widgetSlot
	paused     bool
	pollCount  int
	errorCount int
	lastPoll   time.Time

	newTicker func(time.Duration) ticker

	ticks   chan int
	results chan pollResult
	control chan control
	stopCh  chan struct{}
	done    chan struct{}
	stop    sync.Once
	running atomic.Bool

	snap        atomic.Pointer[DashboardSnapshot]
	subMu       sync.Mutex
	subscribers []chan EngineEvent
}

// NewScheduler prepares a scheduler for dash. It fails if a widget's
// format string does not compile.
func NewScheduler(dash *dashboard.Dashboard, src Source, opts Options) (*Scheduler, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Key == "" {
		opts.Key = dash.Title
	}

	s := &Scheduler{
		key:     opts.Key,
		dash:    dash,
		src:     src,
		log:       opts.Logger.With("dashboard", opts.Key),
		newTicker: newClockTicker,
		ticks:     make(chan int),
		results:   make(chan pollResult, len(dash.Widgets)),
		control:   make(chan control, 8),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}

	for i := range dash.Widgets {
		w := &dash.Widgets[i]
		tpl, err := format.Compile(w.FormatString)
		if err != nil {
			return nil, fmt.Errorf("widget %d (%s): %w", i, w.Name(), err)
		}
		slot := &widgetSlot{
			cfg:      w,
			tpl:      tpl,
			interval: w.Interval.Duration,
			timeout:  w.Timeout.Duration,
		}
		if slot.interval <= 0 {
			slot.interval = dash.RefreshInterval.Duration
		}
		if slot.interval <= 0 {
			slot.interval = dashboard.DefaultRefreshInterval
		}
		if slot.timeout <= 0 {
			slot.timeout = opts.Timeout
		}
		if n := w.HistorySize(); n > 0 {
			slot.history = NewRingBuffer[float64](n)
		}
		s.slots = append(s.slots, slot)
	}
	s.publish()
	return s, nil
}

// Run starts the timers, fires the first poll of every widget and then
// processes events until Stop is called or ctx is cancelled. Polls still in
// flight when Run returns are left to finish; their results are dropped.
func (s *Scheduler) Run(ctx context.Context) {
	s.running.Store(true)
	defer close(s.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.startTimers(ctx)
	s.log.Info("scheduler started", "widgets", len(s.slots), "timer_mode", s.dash.TimerMode)
	s.handleTick(ctx, allWidgets)

	for {
		select {
		case idx := <-s.ticks:
			if !s.paused {
				s.handleTick(ctx, idx)
			}
		case res := <-s.results:
			s.handleResult(res)
		case c := <-s.control:
			s.handleControl(ctx, c)
		case <-s.stopCh:
			s.log.Info("scheduler stopped")
			return
		case <-ctx.Done():
			s.log.Info("scheduler cancelled")
			return
		}
	}
}

func (s *Scheduler) startTimers(ctx context.Context) {
	if s.dash.TimerMode == dashboard.TimerShared {
		go s.runTimer(ctx, allWidgets, s.dash.RefreshInterval.Duration)
		return
	}
	for i, slot := range s.slots {
		go s.runTimer(ctx, i, slot.interval)
	}
}

func (s *Scheduler) runTimer(ctx context.Context, idx int, every time.Duration) {
	if every <= 0 {
		every = dashboard.DefaultRefreshInterval
	}
	t := s.newTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C():
			select {
			case s.ticks <- idx:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleTick polls the widget at idx, or every widget for allWidgets.
func (s *Scheduler) handleTick(ctx context.Context, idx int) {
	if idx == allWidgets {
		for i := range s.slots {
			s.startPoll(ctx, i)
		}
	} else {
		s.startPoll(ctx, idx)
	}
	s.publish()
}

// startPoll launches a poll unless one is already in flight for the
// widget, in which case the tick is skipped rather than queued.
func (s *Scheduler) startPoll(ctx context.Context, idx int) {
	slot := s.slots[idx]
	if slot.state.InFlight {
		slot.state.Skipped++
		s.log.Debug("tick skipped, poll in flight", "widget", slot.cfg.Name())
		return
	}
	slot.state.InFlight = true

	// The poll outlives cancellation of the loop so it can finish on its
	// own timeout; the send below drops the result once the loop is gone.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), slot.timeout)
	go func() {
		defer cancel()
		sample, err := s.src.Query(pctx, slot.cfg.Query)
		res := pollResult{idx: idx, sample: sample, err: err, at: time.Now()}
		select {
		case s.results <- res:
		case <-s.done:
		}
	}()
}

// handleResult applies a finished poll to the widget's state.
func (s *Scheduler) handleResult(res pollResult) {
	slot := s.slots[res.idx]
	st := &slot.state
	st.InFlight = false
	st.LastPoll = res.at
	st.Polls++
	s.pollCount++
	s.lastPoll = res.at

	if res.err != nil {
		st.LastError = Classify(res.err)
		st.ErrorDetail = res.err.Error()
		st.Failures++
		s.errorCount++
		s.log.Warn("poll failed", "widget", slot.cfg.Name(), "kind", st.LastError, "err", res.err)
		s.publish()
		return
	}

	v := res.sample.Value
	st.LastValue = &v
	st.LastSampleTime = res.sample.Timestamp
	if st.LastSampleTime.IsZero() {
		st.LastSampleTime = res.at
	}
	st.LastError = NoError
	st.ErrorDetail = ""
	st.DisplayText = slot.tpl.Format(v)
	if slot.history != nil {
		slot.history.Add(v)
	}
	s.log.Debug("poll ok", "widget", slot.cfg.Name(), "value", v)
	s.publish()
}

func (s *Scheduler) handleControl(ctx context.Context, c control) {
	switch c {
	case ctlRefresh:
		s.log.Debug("manual refresh")
		s.handleTick(ctx, allWidgets)
	case ctlPause:
		s.paused = true
		s.publish()
	case ctlResume:
		wasPaused := s.paused
		s.paused = false
		if wasPaused {
			s.handleTick(ctx, allWidgets)
		} else {
			s.publish()
		}
	}
}

func (s *Scheduler) send(c control) {
	select {
	case s.control <- c:
	case <-s.done:
	}
}

// RefreshNow polls every idle widget immediately. Widget timers are not
// reset, so the next scheduled tick still fires on time.
func (s *Scheduler) RefreshNow() { s.send(ctlRefresh) }

// Pause makes the scheduler ignore timer ticks until Resume.
func (s *Scheduler) Pause() { s.send(ctlPause) }

// Resume re-enables timer ticks and refreshes once straight away.
func (s *Scheduler) Resume() { s.send(ctlResume) }

// Stop ends the loop. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stop.Do(func() { close(s.stopCh) })
}

// Done is closed once Run has returned.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Snapshot returns the most recently published snapshot. It never blocks
// and is safe to call from any goroutine.
func (s *Scheduler) Snapshot() *DashboardSnapshot {
	return s.snap.Load()
}

// Subscribe returns a channel that receives an event after each state change.
func (s *Scheduler) Subscribe() <-chan EngineEvent {
	ch := make(chan EngineEvent, 1)
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Info returns summary information about this scheduler.
func (s *Scheduler) Info() EngineInfo {
	snap := s.Snapshot()
	state := EngineStopped
	select {
	case <-s.done:
	default:
		if s.running.Load() {
			state = EngineRunning
			if snap.Paused {
				state = EnginePaused
			}
		}
	}
	return EngineInfo{
		Key:        s.key,
		Title:      s.dash.Title,
		State:      state,
		LastPoll:   snap.LastPoll,
		PollCount:  snap.PollCount,
		ErrorCount: snap.ErrorCount,
	}
}

// publish stores a fresh snapshot and notifies subscribers (non-blocking).
// Must only be called from the loop goroutine or before Run.
func (s *Scheduler) publish() {
	snap := &DashboardSnapshot{
		Key:        s.key,
		Title:      s.dash.Title,
		Widgets:    make([]WidgetState, len(s.slots)),
		Paused:     s.paused,
		LastPoll:   s.lastPoll,
		PollCount:  s.pollCount,
		ErrorCount: s.errorCount,
	}
	for i, slot := range s.slots {
		st := slot.state
		if st.LastValue != nil {
			v := *st.LastValue
			st.LastValue = &v
		}
		if slot.history != nil {
			st.History = slot.history.All()
		}
		snap.Widgets[i] = st
	}
	s.snap.Store(snap)

	event := EngineEvent{Key: s.key, Snapshot: snap}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
