package wake

import "math"

// Node is a single wake marker. Position and creation tick never change
// after NewNode; only the derived alpha moves with time. Identity is the
// pointer, so the same position may be inserted twice as two nodes.
type Node struct {
	pos       Vec3
	createdAt uint64

	// set by the manager once the node has been merged into a layer index
	merged bool
}

func NewNode(pos Vec3, createdAt uint64) *Node {
	return &Node{pos: pos, createdAt: createdAt}
}

func (n *Node) Pos() Vec3         { return n.pos }
func (n *Node) X() float64        { return n.pos.X }
func (n *Node) Y() float64        { return n.pos.Y }
func (n *Node) Z() float64        { return n.pos.Z }
func (n *Node) CreatedAt() uint64 { return n.createdAt }

// Layer is the discretized vertical coordinate used to pick the index.
func (n *Node) Layer() int {
	return int(math.Floor(n.pos.Y))
}

// Age returns the number of ticks since creation, 0 for nodes stamped in the future.
func (n *Node) Age(now uint64) uint64 {
	if now < n.createdAt {
		return 0
	}
	return now - n.createdAt
}

func (n *Node) Expired(now uint64, d Decay) bool {
	return n.Age(now) > d.Horizon
}

// Alpha is the visibility of the node at tick now: 1 at birth, falling
// exponentially with age, 0 once past the decay horizon.
func (n *Node) Alpha(now uint64, d Decay) float64 {
	if n.Expired(now, d) {
		return 0
	}
	return math.Exp(-d.Rate * float64(n.Age(now)))
}
