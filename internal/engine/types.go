package engine

import (
	"context"
	"errors"
	"net"
	"time"
)

// Sample is one labelled reading returned by a Source.
type Sample struct {
	Labels    map[string]string
	Value     float64
	Timestamp time.Time
}

// Source answers a query with exactly one sample. Implementations return
// ErrEmptyResult or ErrMultipleResults when the query does not resolve to
// a single series, and should respect ctx's deadline.
type Source interface {
	Query(ctx context.Context, expr string) (Sample, error)
}

var (
	ErrEmptyResult     = errors.New("query returned no series")
	ErrMultipleResults = errors.New("query returned more than one series")
)

// ErrorKind classifies the outcome of a poll.
type ErrorKind int

const (
	NoError ErrorKind = iota
	PollTimeout
	PollTransportError
	PollEmptyResult
	PollMultipleResults
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "ok"
	case PollTimeout:
		return "timeout"
	case PollTransportError:
		return "transport error"
	case PollEmptyResult:
		return "no data"
	case PollMultipleResults:
		return "multiple series"
	}
	return "unknown"
}

// Classify maps a Source error onto an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return NoError
	}
	switch {
	case errors.Is(err, ErrEmptyResult):
		return PollEmptyResult
	case errors.Is(err, ErrMultipleResults):
		return PollMultipleResults
	case errors.Is(err, context.DeadlineExceeded):
		return PollTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return PollTimeout
	}
	return PollTransportError
}

// WidgetState is the live state of one widget. The scheduler loop is its
// only writer; everyone else sees copies inside a DashboardSnapshot.
type WidgetState struct {
	LastValue      *float64
	LastSampleTime time.Time
	LastPoll       time.Time
	LastError      ErrorKind
	ErrorDetail    string
	DisplayText    string
	History        []float64
	InFlight       bool
	Polls          int
	Failures       int
	Skipped        int
}

// HasValue reports whether at least one poll has succeeded.
func (w WidgetState) HasValue() bool { return w.LastValue != nil }

// DashboardSnapshot is a point-in-time view of every widget in a dashboard.
// Snapshots are immutable once published.
type DashboardSnapshot struct {
	Key        string
	Title      string
	Widgets    []WidgetState
	Paused     bool
	LastPoll   time.Time
	PollCount  int
	ErrorCount int
}

// EngineState represents the lifecycle state of a scheduler.
type EngineState int

const (
	EngineStopped EngineState = iota
	EngineRunning
	EnginePaused
)

func (s EngineState) String() string {
	switch s {
	case EngineRunning:
		return "running"
	case EnginePaused:
		return "paused"
	}
	return "stopped"
}

// EngineInfo provides summary information about a running scheduler.
type EngineInfo struct {
	Key        string
	Title      string
	State      EngineState
	LastPoll   time.Time
	PollCount  int
	ErrorCount int
}

// EngineEvent is emitted to subscribers after each state change.
type EngineEvent struct {
	Key      string
	Snapshot *DashboardSnapshot
}
