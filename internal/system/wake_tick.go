package system

import (
	"time"

	coresys "github.com/saraasara/wakes/internal/core/system"
	"github.com/saraasara/wakes/internal/session"
	"github.com/saraasara/wakes/internal/wake"
)

// WakeSystem advances the active wake manager by one tick: expired nodes
// are pruned, pending nodes merged and a scheduled reset committed.
// Phase 2 (Update).
type WakeSystem struct {
	host *session.Host

	hooked     *wake.Manager
	merged     int
	lastMerged int
}

func NewWakeSystem(host *session.Host) *WakeSystem {
	return &WakeSystem{host: host}
}

func (s *WakeSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *WakeSystem) Update(_ time.Duration) {
	m, ok := s.host.Manager()
	if !ok {
		s.hooked = nil
		s.lastMerged = 0
		return
	}
	if m != s.hooked {
		m.SetFlushHook(func(*wake.Node) { s.merged++ })
		s.hooked = m
	}
	s.merged = 0
	m.Tick()
	s.lastMerged = s.merged
}

// LastMerged returns how many pending nodes the last tick merged.
func (s *WakeSystem) LastMerged() int { return s.lastMerged }
