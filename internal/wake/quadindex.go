package wake

// WorldHalfExtent is the horizontal half-size of the default index region,
// matching the world border.
const WorldHalfExtent = 30_000_000

const (
	defaultBucketCapacity = 16
	defaultMaxDepth       = 32

	// nodeHalfSize is half the side of the square a node covers when tested
	// against a frustum.
	nodeHalfSize = 0.5
)

// WorldBoundsRect is the default index region.
var WorldBoundsRect = SquareAround(0, 0, WorldHalfExtent)

// IndexOptions tunes the quadtree split policy.
type IndexOptions struct {
	BucketCapacity int // leaf size that triggers a split
	MaxDepth       int // leaves at this depth grow without splitting
}

func (o IndexOptions) withDefaults() IndexOptions {
	if o.BucketCapacity <= 0 {
		o.BucketCapacity = defaultBucketCapacity
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}
	return o
}

// QuadIndex is the spatial index of one layer: a point quadtree over a
// fixed square of the horizontal plane. Nodes are stored in leaves only.
// Not safe for concurrent use; queries must not overlap Insert/Tick/Prune.
type QuadIndex struct {
	bounds Rect
	opts   IndexOptions
	root   *quad
	count  int
	now    uint64
}

type quad struct {
	bounds Rect
	depth  int
	nodes  []*Node
	child  [4]*quad // nil for leaves
}

func NewQuadIndex(bounds Rect, opts IndexOptions) *QuadIndex {
	opts = opts.withDefaults()
	return &QuadIndex{
		bounds: bounds,
		opts:   opts,
		root:   &quad{bounds: bounds},
	}
}

func (q *QuadIndex) Bounds() Rect { return q.bounds }
func (q *QuadIndex) Len() int     { return q.count }

// Now returns the tick passed to the last Tick call.
func (q *QuadIndex) Now() uint64 { return q.now }

// Insert stores n. Nodes whose (x, z) lies outside the index bounds are
// rejected and Insert returns false.
func (q *QuadIndex) Insert(n *Node) bool {
	if !q.bounds.Contains(n.X(), n.Z()) {
		return false
	}
	q.root.insert(n, q.opts)
	q.count++
	return true
}

func (t *quad) leaf() bool { return t.child[0] == nil }

func (t *quad) insert(n *Node, opts IndexOptions) {
	for !t.leaf() {
		t = t.child[t.quadrant(n.X(), n.Z())]
	}
	t.nodes = append(t.nodes, n)
	if len(t.nodes) > opts.BucketCapacity && t.depth < opts.MaxDepth {
		t.split(opts)
	}
}

// quadrant picks the child for (x, z). Points on a midline go to the
// lower-coordinate side, so every point has exactly one home.
func (t *quad) quadrant(x, z float64) int {
	mx, mz := t.bounds.center()
	i := 0
	if x > mx {
		i |= 1
	}
	if z > mz {
		i |= 2
	}
	return i
}

func (t *quad) split(opts IndexOptions) {
	mx, mz := t.bounds.center()
	b := t.bounds
	t.child[0] = &quad{bounds: Rect{MinX: b.MinX, MinZ: b.MinZ, MaxX: mx, MaxZ: mz}, depth: t.depth + 1}
	t.child[1] = &quad{bounds: Rect{MinX: mx, MinZ: b.MinZ, MaxX: b.MaxX, MaxZ: mz}, depth: t.depth + 1}
	t.child[2] = &quad{bounds: Rect{MinX: b.MinX, MinZ: mz, MaxX: mx, MaxZ: b.MaxZ}, depth: t.depth + 1}
	t.child[3] = &quad{bounds: Rect{MinX: mx, MinZ: mz, MaxX: b.MaxX, MaxZ: b.MaxZ}, depth: t.depth + 1}

	nodes := t.nodes
	t.nodes = nil
	for _, n := range nodes {
		t.child[t.quadrant(n.X(), n.Z())].insert(n, opts)
	}
}

// Tick records now as the index time and removes every node past the
// decay horizon. Returns the number of nodes removed.
func (q *QuadIndex) Tick(now uint64, d Decay) int {
	q.now = now
	pruned := q.root.prune(now, d)
	q.count -= pruned
	return pruned
}

// prune drops expired nodes below t and folds children back into t when
// they no longer hold anything.
func (t *quad) prune(now uint64, d Decay) int {
	if t.leaf() {
		kept := t.nodes[:0]
		for _, n := range t.nodes {
			if !n.Expired(now, d) {
				kept = append(kept, n)
			}
		}
		pruned := len(t.nodes) - len(kept)
		clear(t.nodes[len(kept):])
		t.nodes = kept
		return pruned
	}

	pruned := 0
	empty := true
	for _, c := range t.child {
		pruned += c.prune(now, d)
		if !c.leaf() || len(c.nodes) > 0 {
			empty = false
		}
	}
	if empty {
		t.child = [4]*quad{}
	}
	return pruned
}

// Prune empties the index.
func (q *QuadIndex) Prune() {
	q.root = &quad{bounds: q.bounds}
	q.count = 0
}

// QueryFrustum appends to out every node whose footprint at layerHeight
// intersects f.
func (q *QuadIndex) QueryFrustum(f *Frustum, layerHeight float64, out []*Node) []*Node {
	if q.count == 0 {
		return out
	}
	return q.root.queryFrustum(f, layerHeight, out)
}

func (t *quad) queryFrustum(f *Frustum, h float64, out []*Node) []*Node {
	lo := Vec3{t.bounds.MinX - nodeHalfSize, h, t.bounds.MinZ - nodeHalfSize}
	hi := Vec3{t.bounds.MaxX + nodeHalfSize, h, t.bounds.MaxZ + nodeHalfSize}
	if !f.IntersectsBox(lo, hi) {
		return out
	}
	if t.leaf() {
		for _, n := range t.nodes {
			if f.IntersectsBox(
				Vec3{n.X() - nodeHalfSize, h, n.Z() - nodeHalfSize},
				Vec3{n.X() + nodeHalfSize, h, n.Z() + nodeHalfSize},
			) {
				out = append(out, n)
			}
		}
		return out
	}
	for _, c := range t.child {
		out = c.queryFrustum(f, h, out)
	}
	return out
}

// QueryCircle appends to out every node within c.
func (q *QuadIndex) QueryCircle(c Circle, out []*Node) []*Node {
	if q.count == 0 {
		return out
	}
	return q.root.queryCircle(c, out)
}

func (t *quad) queryCircle(c Circle, out []*Node) []*Node {
	if !t.bounds.intersectsCircle(c) {
		return out
	}
	if t.leaf() {
		for _, n := range t.nodes {
			if c.Contains(n.X(), n.Z()) {
				out = append(out, n)
			}
		}
		return out
	}
	for _, ch := range t.child {
		out = ch.queryCircle(c, out)
	}
	return out
}
