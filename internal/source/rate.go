package source

import (
	"errors"
	"time"
)

// ErrCounterWrap indicates that an SNMP counter went backwards, either by
// wrapping or because the agent restarted.
var ErrCounterWrap = errors.New("counter wrap detected")

// counterSample holds a raw counter value at a point in time.
type counterSample struct {
	value uint64
	at    time.Time
}

// counterRate computes the per-second increase between two counter samples.
// Returns ErrCounterWrap if the counter has decreased.
func counterRate(prev, curr counterSample) (float64, error) {
	elapsed := curr.at.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return 0, errors.New("zero or negative elapsed time")
	}
	if curr.value < prev.value {
		return 0, ErrCounterWrap
	}
	return float64(curr.value-prev.value) / elapsed, nil
}
