package main

import (
	"github.com/saraasara/wakes/internal/config"
	"github.com/saraasara/wakes/internal/session"
	"github.com/saraasara/wakes/internal/system"
	"github.com/saraasara/wakes/internal/wake"
	"go.uber.org/zap"
)

// applyStoredResolution lets the resolution saved for the world override the
// configured one. Non-positive values are ignored. Reports whether cfg changed.
func applyStoredResolution(cfg *config.Config, stored int, log *zap.Logger) bool {
	if stored <= 0 {
		log.Warn("ignoring invalid stored wake resolution",
			zap.String("world", cfg.World.Name),
			zap.Int("stored", stored))
		return false
	}
	if stored == cfg.Wakes.Resolution {
		return false
	}
	log.Info("using stored wake resolution",
		zap.String("world", cfg.World.Name),
		zap.Int("stored", stored),
		zap.Int("configured", cfg.Wakes.Resolution))
	cfg.Wakes.Resolution = stored
	return true
}

// configReloader re-reads the config file on SIGHUP. Changes are detected
// against the previous file contents, not the effective settings, so a
// stored resolution survives reloads that leave wakes.resolution alone.
// A changed wakes.resolution is scheduled on the session; viewer changes
// apply on the next frame. Other sections need a restart.
type configReloader struct {
	path   string
	file   *config.Config
	host   *session.Host
	viewer *system.ViewerSystem
	log    *zap.Logger
}

func (r *configReloader) reload() {
	next, err := config.Load(r.path)
	if err != nil {
		r.log.Error("config reload failed", zap.String("path", r.path), zap.Error(err))
		return
	}
	r.apply(next)
	r.log.Info("config reloaded", zap.String("path", r.path))
}

func (r *configReloader) apply(next *config.Config) {
	prev := r.file
	r.file = next
	if next.Wakes.Resolution != prev.Wakes.Resolution {
		r.host.ScheduleResolutionChange(wake.Resolution(next.Wakes.Resolution))
	}
	if next.Viewer != prev.Viewer {
		r.viewer.SetCamera(next.Viewer)
	}
}
