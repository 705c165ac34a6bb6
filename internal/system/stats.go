package system

import (
	"time"

	coresys "github.com/saraasara/wakes/internal/core/system"
	"github.com/saraasara/wakes/internal/session"
	"github.com/saraasara/wakes/internal/wake"
	"go.uber.org/zap"
)

// StatsSystem publishes the active manager's gauges every tick and logs a
// summary line every interval ticks. Phase 3 (PostUpdate).
type StatsSystem struct {
	host      *session.Host
	log       *zap.Logger
	interval  int
	tickCount int
	last      wake.Stats
}

func NewStatsSystem(host *session.Host, log *zap.Logger, intervalTicks int) *StatsSystem {
	return &StatsSystem{host: host, log: log, interval: intervalTicks}
}

func (s *StatsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *StatsSystem) Update(_ time.Duration) {
	m, ok := s.host.Manager()
	if !ok {
		s.last = wake.Stats{}
		wake.InstrumentStats(s.last)
		return
	}
	s.last = m.Stats()
	wake.InstrumentStats(s.last)

	s.tickCount++
	if s.interval <= 0 || s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.log.Info("wake stats",
		zap.Stringer("session", m.SessionID()),
		zap.Uint64("tick", s.last.Tick),
		zap.Int("resolution", int(m.Settings().Resolution)),
		zap.Int("active_layers", s.last.ActiveLayers),
		zap.Int("live_nodes", s.last.LiveNodes),
		zap.Int("pending_nodes", s.last.PendingNodes),
		zap.Bool("reset_pending", s.last.ResetPending))
}

// Last returns the stats captured on the last update.
func (s *StatsSystem) Last() wake.Stats { return s.last }
