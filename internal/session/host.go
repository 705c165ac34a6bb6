package session

import (
	"github.com/google/uuid"
	"github.com/saraasara/wakes/internal/core/event"
	"github.com/saraasara/wakes/internal/wake"
	"go.uber.org/zap"
)

// Options configures the managers a Host creates.
type Options struct {
	Log        *zap.Logger
	Bus        *event.Bus
	Index      wake.IndexOptions
	QueryRange float64
}

// Host is the access point to the wake manager of the active world
// session. It replaces a process-wide instance: the manager lives exactly
// as long as the loaded world and is created on first access.
// Single-goroutine access only (game loop).
type Host struct {
	settings *wake.Settings
	opts     Options
	log      *zap.Logger

	world   *wake.WorldBounds // nil while no world is loaded
	id      uuid.UUID
	manager *wake.Manager
}

func NewHost(settings *wake.Settings, opts Options) *Host {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Host{settings: settings, opts: opts, log: opts.Log}
}

// Settings returns the wake configuration shared by every session.
func (h *Host) Settings() *wake.Settings { return h.settings }

// SessionID returns the id of the loaded world session, or uuid.Nil.
func (h *Host) SessionID() uuid.UUID { return h.id }

// WorldLoaded reports whether a world session is active.
func (h *Host) WorldLoaded() bool { return h.world != nil }

// LoadWorld starts a new session for w, dropping any previous one.
func (h *Host) LoadWorld(w wake.WorldBounds) {
	if h.world != nil {
		h.UnloadWorld()
	}
	h.world = &w
	h.id = uuid.New()
	event.Emit(h.opts.Bus, event.WorldLoaded{SessionID: h.id, World: w.Name, MinY: w.MinY, MaxY: w.MaxY})
	h.log.Info("world loaded",
		zap.Stringer("session", h.id),
		zap.String("world", w.Name),
		zap.Int("min_y", w.MinY),
		zap.Int("max_y", w.MaxY))
}

// UnloadWorld ends the session and releases its manager with every index
// and pending node it holds.
func (h *Host) UnloadWorld() {
	if h.world == nil {
		return
	}
	var tick uint64
	if h.manager != nil {
		tick = h.manager.Now()
	}
	event.Emit(h.opts.Bus, event.WorldUnloaded{SessionID: h.id, World: h.world.Name, Tick: tick})
	h.log.Info("world unloaded", zap.Stringer("session", h.id), zap.Uint64("tick", tick))

	h.world = nil
	h.manager = nil
	h.id = uuid.Nil
}

// Manager returns the session's manager, creating it on first access.
// With no world loaded it returns false and creates nothing.
func (h *Host) Manager() (*wake.Manager, bool) {
	if h.manager != nil {
		return h.manager, true
	}
	if h.world == nil {
		return nil, false
	}
	h.manager = wake.NewManager(*h.world, h.settings,
		wake.WithLogger(h.log),
		wake.WithEventBus(h.opts.Bus),
		wake.WithIndexOptions(h.opts.Index),
		wake.WithQueryRange(h.opts.QueryRange),
		wake.WithSessionID(h.id),
	)
	return h.manager, true
}

// ScheduleResolutionChange routes a resolution change from the
// configuration side. With an active session the change is deferred to the
// manager's next tick; otherwise it is applied to the settings at once.
func (h *Host) ScheduleResolutionChange(res wake.Resolution) {
	m, ok := h.Manager()
	if !ok {
		h.settings.Apply(res)
		h.log.Info("wake resolution applied without session",
			zap.Int("resolution", int(res)),
			zap.Uint64("decay_horizon", h.settings.Decay.Horizon))
		return
	}
	m.ScheduleResolutionChange(res)
}
