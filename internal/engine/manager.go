package engine

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/logging"
)

// Manager coordinates multiple Schedulers, one per dashboard.
type Manager struct {
	mu      sync.RWMutex
	engines map[string]*managed
	log     *log.Logger
}

type managed struct {
	sched  *Scheduler
	src    Source
	cancel context.CancelFunc
}

// NewManager creates an empty Manager.
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		engines: make(map[string]*managed),
		log:     logger,
	}
}

// Start creates and launches a Scheduler for dash under key.
func (m *Manager) Start(ctx context.Context, key string, dash *dashboard.Dashboard, src Source, opts Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.engines[key]; exists {
		return fmt.Errorf("engine %q already running", key)
	}

	opts.Key = key
	if opts.Logger == nil {
		opts.Logger = m.log
	}
	s, err := NewScheduler(dash, src, opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	m.engines[key] = &managed{sched: s, src: src, cancel: cancel}
	go s.Run(ctx)
	return nil
}

// Stop halts the Scheduler for key, closes its source and removes it.
func (m *Manager) Stop(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.engines[key]
	if !ok {
		return fmt.Errorf("engine %q not found", key)
	}
	m.shutdown(key, e)
	delete(m.engines, key)
	return nil
}

// StopAll halts and removes all running engines.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.engines {
		m.shutdown(key, e)
		delete(m.engines, key)
	}
}

func (m *Manager) shutdown(key string, e *managed) {
	e.sched.Stop()
	e.cancel()
	<-e.sched.Done()
	if c, ok := e.src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			m.log.Warn("closing source", "dashboard", key, "err", err)
		}
	}
}

func (m *Manager) get(key string) (*Scheduler, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.engines[key]
	if !ok {
		return nil, fmt.Errorf("engine %q not found", key)
	}
	return e.sched, nil
}

// Snapshot returns a point-in-time snapshot for key.
func (m *Manager) Snapshot(key string) (*DashboardSnapshot, error) {
	s, err := m.get(key)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Subscribe returns a channel that receives events for key.
func (m *Manager) Subscribe(key string) (<-chan EngineEvent, error) {
	s, err := m.get(key)
	if err != nil {
		return nil, err
	}
	return s.Subscribe(), nil
}

// RefreshNow triggers an immediate poll of every widget of key.
func (m *Manager) RefreshNow(key string) error {
	s, err := m.get(key)
	if err != nil {
		return err
	}
	s.RefreshNow()
	return nil
}

// Pause stops key from polling on its timers.
func (m *Manager) Pause(key string) error {
	s, err := m.get(key)
	if err != nil {
		return err
	}
	s.Pause()
	return nil
}

// Resume restarts timer polling for key.
func (m *Manager) Resume(key string) error {
	s, err := m.get(key)
	if err != nil {
		return err
	}
	s.Resume()
	return nil
}

// List returns summary info for all running engines, sorted by key.
func (m *Manager) List() []EngineInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]EngineInfo, 0, len(m.engines))
	for _, e := range m.engines {
		infos = append(infos, e.sched.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}
