package wake

import (
	"math"

	"github.com/google/uuid"
	"github.com/saraasara/wakes/internal/core/event"
	"go.uber.org/zap"
)

// MaxQueryRange is the default radius of GetNearby.
const MaxQueryRange = 10

// WorldBounds describes the world a manager indexes. MinY and MaxY are both
// valid layer heights. A zero Horizontal rect means WorldBoundsRect.
type WorldBounds struct {
	Name       string
	MinY       int
	MaxY       int
	Horizontal Rect
}

// layer is one vertical slot. index is nil until the first insertion into
// the layer; pending always exists.
type layer struct {
	index   *QuadIndex
	pending pendingQueue
}

// Stats is a point-in-time summary of a manager.
type Stats struct {
	Tick         uint64
	ActiveLayers int
	LiveNodes    int
	PendingNodes int
	ResetPending bool
}

// Manager owns one QuadIndex per layer of a world session. Insertions are
// buffered per layer and merged by Tick; queries only see merged nodes.
//
// Insert, Tick and ScheduleResolutionChange are called from the simulation
// goroutine. GetVisible and GetNearby are read-only and must not overlap a
// Tick. No locks are taken.
type Manager struct {
	id       uuid.UUID
	world    WorldBounds
	settings *Settings
	layers   []layer
	now      uint64

	resetPending  bool
	newResolution Resolution

	handles RenderHandles

	queryRange float64
	indexOpts  IndexOptions
	flushHook  func(*Node)
	bus        *event.Bus
	log        *zap.Logger
}

type Option func(*Manager)

func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

func WithIndexOptions(opts IndexOptions) Option {
	return func(m *Manager) { m.indexOpts = opts }
}

func WithQueryRange(r float64) Option {
	return func(m *Manager) {
		if r > 0 {
			m.queryRange = r
		}
	}
}

func WithEventBus(bus *event.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

func WithSessionID(id uuid.UUID) Option {
	return func(m *Manager) { m.id = id }
}

func NewManager(world WorldBounds, settings *Settings, opts ...Option) *Manager {
	if world.Horizontal == (Rect{}) {
		world.Horizontal = WorldBoundsRect
	}
	if world.MaxY < world.MinY {
		world.MaxY = world.MinY
	}
	m := &Manager{
		id:         uuid.New(),
		world:      world,
		settings:   settings,
		handles:    newRenderHandles(),
		queryRange: MaxQueryRange,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(zap.Stringer("session", m.id), zap.String("world", world.Name))

	m.layers = make([]layer, world.MaxY-world.MinY+1)
	for i := range m.layers {
		m.layers[i].pending = newPendingQueue()
	}
	return m
}

func (m *Manager) SessionID() uuid.UUID    { return m.id }
func (m *Manager) World() WorldBounds      { return m.world }
func (m *Manager) Settings() *Settings     { return m.settings }
func (m *Manager) Handles() *RenderHandles { return &m.handles }
func (m *Manager) LayerCount() int         { return len(m.layers) }
func (m *Manager) ResetPending() bool      { return m.resetPending }

// Now is the manager clock: the number of completed ticks. Producers stamp
// new nodes with it.
func (m *Manager) Now() uint64 { return m.now }

// SetFlushHook registers fn to be called for every node merged into a live
// index during Tick. fn may call Insert; such nodes wait for the next Tick.
func (m *Manager) SetFlushHook(fn func(*Node)) {
	m.flushHook = fn
}

func (m *Manager) layerIndex(height int) (int, bool) {
	if height < m.world.MinY || height > m.world.MaxY {
		return -1, false
	}
	return height - m.world.MinY, true
}

// Insert queues n for the next Tick. Nodes outside the vertical range or
// the horizontal bounds, and all nodes while a reset is pending, are dropped.
// A node that has already been merged into an index is ignored.
func (m *Manager) Insert(n *Node) {
	if n.merged {
		return
	}
	if m.resetPending {
		instrumentDropped(reasonResetPending)
		return
	}
	i, ok := m.layerIndex(n.Layer())
	if !ok {
		instrumentDropped(reasonOutOfRange)
		return
	}
	if !m.world.Horizontal.Contains(n.X(), n.Z()) {
		instrumentDropped(reasonOutOfBounds)
		return
	}

	l := &m.layers[i]
	if l.index == nil {
		l.index = NewQuadIndex(m.world.Horizontal, m.indexOpts)
		m.log.Debug("wake layer activated", zap.Int("height", m.world.MinY+i))
	}
	l.pending.add(n)
}

// Tick advances the clock, prunes expired nodes and merges pending nodes
// into every live layer. A pending reset discards the queues instead and is
// committed once all layers have been visited.
func (m *Manager) Tick() {
	m.now++

	inserted, pruned, discarded := 0, 0, 0
	for i := range m.layers {
		l := &m.layers[i]
		if m.resetPending {
			discarded += l.pending.reset()
			continue
		}
		if l.index == nil {
			continue
		}
		pruned += l.index.Tick(m.now, m.settings.Decay)
		inserted += m.drain(l)
	}
	instrumentTick(inserted, pruned)
	instrumentDroppedN(reasonResetDiscarded, discarded)

	if m.resetPending {
		m.changeResolution()
	}
}

// drain merges the nodes queued before the drain started, last to first.
// Nodes queued while draining go to a fresh buffer and stay pending.
func (m *Manager) drain(l *layer) int {
	batch := l.pending.take()
	inserted := 0
	for j := len(batch) - 1; j >= 0; j-- {
		n := batch[j]
		l.pending.release(n)
		if !l.index.Insert(n) {
			instrumentDropped(reasonOutOfBounds)
			continue
		}
		n.merged = true
		inserted++
		if m.flushHook != nil {
			m.flushHook(n)
		}
	}
	l.pending.recycle(batch)
	return inserted
}

// GetVisible returns every live node whose footprint intersects f, across
// all layers.
func (m *Manager) GetVisible(f *Frustum) []*Node {
	found := make([]*Node, 0, 64)
	for i := range m.layers {
		idx := m.layers[i].index
		if idx == nil {
			continue
		}
		found = idx.QueryFrustum(f, float64(m.world.MinY+i), found)
	}
	return found
}

// GetNearby returns the live nodes of the layer at y whose horizontal
// distance from (x, z) is at most the query range.
func (m *Manager) GetNearby(x, y, z float64) []*Node {
	found := make([]*Node, 0)
	i, ok := m.layerIndex(int(math.Floor(y)))
	if !ok {
		return found
	}
	idx := m.layers[i].index
	if idx == nil {
		return found
	}
	return idx.QueryCircle(Circle{X: x, Z: z, Radius: m.queryRange}, found)
}

// ScheduleResolutionChange defers a resolution change to the end of the
// next Tick. Until then Insert drops everything.
func (m *Manager) ScheduleResolutionChange(res Resolution) {
	m.resetPending = true
	m.newResolution = res
	m.log.Info("wake resolution change scheduled",
		zap.Int("from", int(m.settings.Resolution)),
		zap.Int("to", int(res)))
}

func (m *Manager) changeResolution() {
	for i := range m.layers {
		if idx := m.layers[i].index; idx != nil {
			idx.Prune()
		}
	}
	m.handles.Reset()

	from := m.settings.Resolution
	m.settings.Apply(m.newResolution)
	m.resetPending = false
	m.newResolution = 0

	instrumentReset()
	event.Emit(m.bus, event.ResolutionChanged{
		SessionID: m.id,
		World:     m.world.Name,
		From:      int(from),
		To:        int(m.settings.Resolution),
		Tick:      m.now,
	})
	m.log.Info("wake resolution changed",
		zap.Int("from", int(from)),
		zap.Int("to", int(m.settings.Resolution)),
		zap.Float64("decay_rate", m.settings.Decay.Rate),
		zap.Uint64("decay_horizon", m.settings.Decay.Horizon),
		zap.Uint64("tick", m.now))
}

func (m *Manager) Stats() Stats {
	s := Stats{Tick: m.now, ResetPending: m.resetPending}
	for i := range m.layers {
		l := &m.layers[i]
		s.PendingNodes += l.pending.len()
		if l.index != nil {
			s.ActiveLayers++
			s.LiveNodes += l.index.Len()
		}
	}
	return s
}

// pendingQueue is an insertion-ordered set of nodes keyed by identity.
// take hands out the current buffer and installs a fresh one, so appends
// during a drain never touch the batch being drained.
type pendingQueue struct {
	items []*Node
	spare []*Node
	set   map[*Node]struct{}
}

func newPendingQueue() pendingQueue {
	return pendingQueue{set: make(map[*Node]struct{})}
}

func (q *pendingQueue) add(n *Node) bool {
	if _, ok := q.set[n]; ok {
		return false
	}
	q.set[n] = struct{}{}
	q.items = append(q.items, n)
	return true
}

func (q *pendingQueue) len() int { return len(q.items) }

// take returns the queued nodes. They stay members of the set until
// released, so re-adding one mid-drain is a no-op.
func (q *pendingQueue) take() []*Node {
	batch := q.items
	q.items = q.spare[:0]
	q.spare = nil
	return batch
}

func (q *pendingQueue) release(n *Node) {
	delete(q.set, n)
}

func (q *pendingQueue) recycle(batch []*Node) {
	clear(batch)
	q.spare = batch[:0]
}

// reset drops every queued node and returns how many there were.
func (q *pendingQueue) reset() int {
	n := len(q.items)
	clear(q.items)
	q.items = q.items[:0]
	clear(q.set)
	return n
}
