package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonhe/promenade/internal/dashboard"
)

type closingSource struct {
	*fakeSource
	closed atomic.Bool
}

func (c *closingSource) Close() error {
	c.closed.Store(true)
	return nil
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()
	src := &closingSource{fakeSource: newFakeSource(constant(1))}

	require.NoError(t, m.Start(ctx, "b", testDashboard(dashboard.Widget{Query: "x"}), src, Options{}))
	require.NoError(t, m.Start(ctx, "a", testDashboard(dashboard.Widget{Query: "y"}), newFakeSource(constant(2)), Options{}))
	assert.Error(t, m.Start(ctx, "a", testDashboard(dashboard.Widget{Query: "y"}), newFakeSource(constant(2)), Options{}))

	require.Eventually(t, func() bool {
		snap, err := m.Snapshot("a")
		return err == nil && snap.Widgets[0].HasValue()
	}, time.Second, 5*time.Millisecond)

	infos := m.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Key)
	assert.Equal(t, "b", infos[1].Key)

	require.NoError(t, m.Stop("b"))
	assert.True(t, src.closed.Load())
	assert.Error(t, m.Stop("b"))
	_, err := m.Snapshot("b")
	assert.Error(t, err)

	m.StopAll()
	assert.Empty(t, m.List())
}

func TestManagerControls(t *testing.T) {
	m := NewManager(nil)
	defer m.StopAll()
	src := newFakeSource(constant(1))
	require.NoError(t, m.Start(context.Background(), "d", testDashboard(dashboard.Widget{Query: "q"}), src, Options{}))

	events, err := m.Subscribe("d")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return src.count("q") == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.RefreshNow("d"))
	require.Eventually(t, func() bool { return src.count("q") == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Pause("d"))
	require.Eventually(t, func() bool {
		snap, _ := m.Snapshot("d")
		return snap.Paused
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Resume("d"))
	assert.NotNil(t, events)

	assert.Error(t, m.RefreshNow("missing"))
	assert.Error(t, m.Pause("missing"))
	assert.Error(t, m.Resume("missing"))
	_, err = m.Subscribe("missing")
	assert.Error(t, err)
}
