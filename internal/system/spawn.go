package system

import (
	"time"

	coresys "github.com/saraasara/wakes/internal/core/system"
	"github.com/saraasara/wakes/internal/scripting"
	"github.com/saraasara/wakes/internal/session"
	"github.com/saraasara/wakes/internal/wake"
)

// WakeProducer yields the wake positions spawned during one tick.
type WakeProducer interface {
	EmitWakes(ctx scripting.EmitContext) []wake.Vec3
}

// SpawnSystem asks the producer for new wakes and queues them on the
// active manager, stamped with the manager's clock. Phase 0 (Input).
type SpawnSystem struct {
	host     *session.Host
	producer WakeProducer
	spawned  int
}

func NewSpawnSystem(host *session.Host, producer WakeProducer) *SpawnSystem {
	return &SpawnSystem{host: host, producer: producer}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *SpawnSystem) Update(_ time.Duration) {
	m, ok := s.host.Manager()
	if !ok {
		return
	}
	now := m.Now()
	positions := s.producer.EmitWakes(scripting.EmitContext{
		Tick:       now,
		Resolution: int(m.Settings().Resolution),
		LiveNodes:  m.Stats().LiveNodes,
	})
	for _, p := range positions {
		m.Insert(wake.NewNode(p, now))
	}
	s.spawned += len(positions)
}

// Spawned returns the number of nodes handed to managers so far.
func (s *SpawnSystem) Spawned() int { return s.spawned }
