package system

import (
	"context"
	"time"

	"github.com/saraasara/wakes/internal/core/event"
	coresys "github.com/saraasara/wakes/internal/core/system"
	"github.com/saraasara/wakes/internal/persist"
	"go.uber.org/zap"
)

// ResolutionSaver stores committed resolution changes.
type ResolutionSaver interface {
	SaveResolution(ctx context.Context, c persist.ResolutionChange) error
}

// SettingsPersistSystem writes committed resolution changes to the
// database. Changes arrive through the event bus and are flushed in
// Phase 5 (Persist). A failed write is retried on the next tick.
type SettingsPersistSystem struct {
	repo    ResolutionSaver
	log     *zap.Logger
	timeout time.Duration
	queue   []persist.ResolutionChange
}

func NewSettingsPersistSystem(bus *event.Bus, repo ResolutionSaver, log *zap.Logger) *SettingsPersistSystem {
	s := &SettingsPersistSystem{repo: repo, log: log, timeout: 5 * time.Second}
	event.Subscribe(bus, func(ev event.ResolutionChanged) {
		s.queue = append(s.queue, persist.ResolutionChange{
			SessionID: ev.SessionID,
			World:     ev.World,
			From:      ev.From,
			To:        ev.To,
			Tick:      ev.Tick,
		})
	})
	return s
}

func (s *SettingsPersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *SettingsPersistSystem) Update(_ time.Duration) {
	s.Flush(context.Background())
}

// Flush writes every queued change in order and stops at the first error.
func (s *SettingsPersistSystem) Flush(ctx context.Context) {
	for len(s.queue) > 0 {
		c := s.queue[0]
		wctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.repo.SaveResolution(wctx, c)
		cancel()
		if err != nil {
			s.log.Error("save wake resolution failed",
				zap.String("world", c.World),
				zap.Int("resolution", c.To),
				zap.Error(err))
			return
		}
		s.log.Info("wake resolution saved",
			zap.String("world", c.World),
			zap.Int("from", c.From),
			zap.Int("to", c.To),
			zap.Uint64("tick", c.Tick))
		s.queue = s.queue[1:]
	}
}

// Queued returns the number of changes waiting to be written.
func (s *SettingsPersistSystem) Queued() int { return len(s.queue) }
