package wake

import (
	"testing"

	"github.com/saraasara/wakes/internal/core/event"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	settings := NewSettings(Resolution16, ExponentialDecay{BaseRate: 0.5, Cutoff: 0.1})
	return NewManager(WorldBounds{Name: "test", MinY: -64, MaxY: 320}, settings, opts...)
}

// everything is a frustum that sees the whole world.
var everything = boxFrustum(
	Vec3{X: -WorldHalfExtent, Y: -1000, Z: -WorldHalfExtent},
	Vec3{X: WorldHalfExtent, Y: 1000, Z: WorldHalfExtent},
)

func nodeAt(m *Manager, x, y, z float64) *Node {
	return NewNode(Vec3{X: x, Y: y, Z: z}, m.Now())
}

func TestManagerLayerMapping(t *testing.T) {
	m := newTestManager(t)
	require.Equal(t, 320-(-64)+1, m.LayerCount())

	bottom := nodeAt(m, 0, -64, 0)
	top := nodeAt(m, 0, 320, 0)
	below := nodeAt(m, 0, -65, 0)
	above := nodeAt(m, 0, 321, 0)
	for _, n := range []*Node{bottom, top, below, above} {
		m.Insert(n)
	}
	m.Tick()

	require.Equal(t, []*Node{bottom}, m.GetNearby(0, -64, 0))
	require.Equal(t, []*Node{top}, m.GetNearby(0, 320, 0))
	require.Empty(t, m.GetNearby(0, -65, 0))
	require.Empty(t, m.GetNearby(0, 321, 0))
	require.NotNil(t, m.layers[0].index)
	require.NotNil(t, m.layers[len(m.layers)-1].index)

	stats := m.Stats()
	require.Equal(t, 2, stats.ActiveLayers)
	require.Equal(t, 2, stats.LiveNodes)
}

func TestManagerInsertIsDeferredUntilTick(t *testing.T) {
	m := newTestManager(t)
	n := nodeAt(m, 4, 62.5, 4)

	m.Insert(n)
	require.Empty(t, m.GetVisible(everything))
	require.Empty(t, m.GetNearby(4, 62, 4))
	require.Equal(t, 1, m.Stats().PendingNodes)

	m.Tick()
	require.Equal(t, []*Node{n}, m.GetVisible(everything))
	require.Equal(t, []*Node{n}, m.GetNearby(4, 62, 4))
	require.Equal(t, 0, m.Stats().PendingNodes)
}

func TestManagerInsertDeduplicatesByIdentity(t *testing.T) {
	m := newTestManager(t)
	n := nodeAt(m, 0, 10, 0)
	twin := nodeAt(m, 0, 10, 0)

	m.Insert(n)
	m.Insert(n)
	m.Insert(twin)
	require.Equal(t, 2, m.Stats().PendingNodes)

	m.Tick()
	require.ElementsMatch(t, []*Node{n, twin}, m.GetNearby(0, 10, 0))
}

func TestManagerDrainKeepsNodesQueuedDuringDrain(t *testing.T) {
	m := newTestManager(t)

	var first, late []*Node
	for i := 0; i < 5; i++ {
		first = append(first, nodeAt(m, float64(i), 5, 0))
	}
	for _, n := range first {
		m.Insert(n)
	}

	var flushed []*Node
	m.SetFlushHook(func(n *Node) {
		flushed = append(flushed, n)
		if len(late) < 3 {
			child := NewNode(Vec3{X: n.X(), Y: 5, Z: 1}, m.Now())
			late = append(late, child)
			m.Insert(child)
			// already merged, ignored
			m.Insert(n)
		}
	})

	m.Tick()
	require.ElementsMatch(t, first, flushed)
	// last-to-first order
	require.Equal(t, first[len(first)-1], flushed[0])
	require.ElementsMatch(t, first, m.GetNearby(0, 5, 0))
	require.Equal(t, 3, m.Stats().PendingNodes)

	m.SetFlushHook(nil)
	m.Tick()
	require.ElementsMatch(t, append(first, late...), m.GetNearby(0, 5, 0))
	require.Equal(t, 0, m.Stats().PendingNodes)
	require.Equal(t, 8, m.Stats().LiveNodes)
}

func TestManagerExpiredNodesStayGone(t *testing.T) {
	m := newTestManager(t)
	horizon := m.Settings().Decay.Horizon
	require.Greater(t, horizon, uint64(0))

	n := nodeAt(m, 1, 70, 1)
	m.Insert(n)
	m.Tick()
	require.Len(t, m.GetNearby(1, 70, 1), 1)

	for m.Now() <= n.CreatedAt()+horizon {
		m.Tick()
	}
	require.Empty(t, m.GetNearby(1, 70, 1))
	require.Empty(t, m.GetVisible(everything))

	for i := 0; i < 10; i++ {
		m.Tick()
		require.Empty(t, m.GetVisible(everything))
	}
}

func TestManagerResolutionReset(t *testing.T) {
	bus := event.NewBus()
	var changes []event.ResolutionChanged
	event.Subscribe(bus, func(ev event.ResolutionChanged) { changes = append(changes, ev) })

	m := newTestManager(t, WithEventBus(bus))
	m.Insert(nodeAt(m, 0, 0, 0))
	m.Insert(nodeAt(m, 8, 100, 8))
	m.Tick()
	require.Len(t, m.GetVisible(everything), 2)

	h := m.Handles()
	h.WakeTexture, h.WakeImage, h.FoamTexture, h.FoamImage = 3, 0x1000, 4, 0x2000
	require.True(t, h.Allocated())

	pending := nodeAt(m, 0, 0, 1)
	m.Insert(pending)

	m.ScheduleResolutionChange(Resolution32)
	require.True(t, m.ResetPending())
	require.Equal(t, Resolution16, m.Settings().Resolution, "nothing changes before the tick")
	require.Len(t, m.GetVisible(everything), 2)

	dropped := nodeAt(m, 0, 0, 2)
	m.Insert(dropped)

	m.Tick()
	require.False(t, m.ResetPending())
	require.Equal(t, Resolution32, m.Settings().Resolution)
	require.Equal(t, ExponentialDecay{BaseRate: 0.5, Cutoff: 0.1}.DecayFor(Resolution32), m.Settings().Decay)
	require.Empty(t, m.GetVisible(everything))
	require.Equal(t, RenderHandles{
		WakeTexture: Unallocated,
		WakeImage:   Unallocated,
		FoamTexture: Unallocated,
		FoamImage:   Unallocated,
	}, *h)

	stats := m.Stats()
	require.Equal(t, 0, stats.LiveNodes)
	require.Equal(t, 0, stats.PendingNodes)

	// neither the queued nor the dropped node shows up later
	m.Tick()
	m.Tick()
	require.Empty(t, m.GetVisible(everything))

	bus.SwapBuffers()
	bus.DispatchAll()
	require.Len(t, changes, 1)
	require.Equal(t, 16, changes[0].From)
	require.Equal(t, 32, changes[0].To)
	require.Equal(t, m.SessionID(), changes[0].SessionID)

	// inserts work again after the reset
	n := nodeAt(m, 0, 0, 0)
	m.Insert(n)
	m.Tick()
	require.Equal(t, []*Node{n}, m.GetVisible(everything))
}

func TestManagerGetNearbyIsIntraLayer(t *testing.T) {
	m := newTestManager(t)

	here := nodeAt(m, 0, 63, 0)
	rim := nodeAt(m, 10, 63, 0)
	beyond := nodeAt(m, 10.5, 63, 0)
	above := nodeAt(m, 0, 64, 0)
	below := nodeAt(m, 1, 62, 1)
	for _, n := range []*Node{here, rim, beyond, above, below} {
		m.Insert(n)
	}
	m.Tick()

	require.ElementsMatch(t, []*Node{here, rim}, m.GetNearby(0, 63.7, 0))
	require.Empty(t, m.GetNearby(0, 0, 0), "layer never received a node")
	require.Empty(t, m.GetNearby(0, 1000, 0))
}

func TestManagerGetVisibleUsesLayerHeight(t *testing.T) {
	m := newTestManager(t)

	low := nodeAt(m, 0, 10.9, 0)
	high := nodeAt(m, 0, 80, 0)
	m.Insert(low)
	m.Insert(high)
	m.Tick()

	// the node's own y is 10.9 but it is drawn at its layer height 10
	f := boxFrustum(Vec3{X: -5, Y: 0, Z: -5}, Vec3{X: 5, Y: 10, Z: 5})
	require.Equal(t, []*Node{low}, m.GetVisible(f))
}

func TestManagerDropsOutOfBoundsNodes(t *testing.T) {
	settings := NewSettings(Resolution16, nil)
	m := NewManager(WorldBounds{MinY: 0, MaxY: 10, Horizontal: SquareAround(0, 0, 50)}, settings)

	m.Insert(NewNode(Vec3{X: 51, Y: 5}, 0))
	require.Equal(t, 0, m.Stats().ActiveLayers)
	require.Equal(t, 0, m.Stats().PendingNodes)
}

func TestManagerQueryRangeOption(t *testing.T) {
	m := newTestManager(t, WithQueryRange(2))
	near := nodeAt(m, 2, 0, 0)
	m.Insert(near)
	m.Insert(nodeAt(m, 3, 0, 0))
	m.Tick()

	require.Equal(t, []*Node{near}, m.GetNearby(0, 0, 0))
}
