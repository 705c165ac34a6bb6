package system

import (
	"math"
	"time"

	"github.com/saraasara/wakes/internal/config"
	coresys "github.com/saraasara/wakes/internal/core/system"
	"github.com/saraasara/wakes/internal/session"
	"github.com/saraasara/wakes/internal/wake"
	"go.uber.org/zap"
)

// ViewFrame is what the probe camera saw on its last update.
type ViewFrame struct {
	Tick     uint64
	Visible  int
	Nearby   int
	MaxAlpha float64 // strongest visible wake, 0 when nothing is visible
}

// ViewerSystem runs the render-side queries against the active manager:
// frustum culling from the configured camera and the neighbor lookup at the
// camera position. Phase 4 (Output), also driven per frame.
type ViewerSystem struct {
	host    *session.Host
	camera  wake.Camera
	frustum *wake.Frustum
	log     *zap.Logger
	frame   ViewFrame
}

func NewViewerSystem(host *session.Host, cfg config.ViewerConfig, log *zap.Logger) *ViewerSystem {
	s := &ViewerSystem{host: host, log: log}
	s.SetCamera(cfg)
	return s
}

func (s *ViewerSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

// SetCamera replaces the probe camera. Angles in cfg are in degrees.
func (s *ViewerSystem) SetCamera(cfg config.ViewerConfig) {
	s.camera = CameraFromConfig(cfg)
	s.frustum = wake.PerspectiveFrustum(s.camera)
}

// CameraFromConfig converts a viewer section to a camera in radians.
func CameraFromConfig(cfg config.ViewerConfig) wake.Camera {
	return wake.Camera{
		Eye:    wake.Vec3{X: cfg.X, Y: cfg.Y, Z: cfg.Z},
		Yaw:    cfg.Yaw * math.Pi / 180,
		Pitch:  cfg.Pitch * math.Pi / 180,
		FovY:   cfg.FovY * math.Pi / 180,
		Aspect: cfg.Aspect,
		Near:   cfg.Near,
		Far:    cfg.Far,
	}
}

func (s *ViewerSystem) Update(_ time.Duration) {
	m, ok := s.host.Manager()
	if !ok {
		s.frame = ViewFrame{}
		return
	}
	now := m.Now()
	decay := m.Settings().Decay

	visible := m.GetVisible(s.frustum)
	maxAlpha := 0.0
	for _, n := range visible {
		if a := n.Alpha(now, decay); a > maxAlpha {
			maxAlpha = a
		}
	}
	eye := s.camera.Eye
	nearby := m.GetNearby(eye.X, eye.Y, eye.Z)

	s.frame = ViewFrame{
		Tick:     now,
		Visible:  len(visible),
		Nearby:   len(nearby),
		MaxAlpha: maxAlpha,
	}
	if ce := s.log.Check(zap.DebugLevel, "viewer frame"); ce != nil {
		ce.Write(
			zap.Uint64("tick", now),
			zap.Int("visible", s.frame.Visible),
			zap.Int("nearby", s.frame.Nearby),
			zap.Float64("max_alpha", maxAlpha))
	}
}

// Frame returns the result of the last update.
func (s *ViewerSystem) Frame() ViewFrame { return s.frame }

// Camera returns the probe camera in radians.
func (s *ViewerSystem) Camera() wake.Camera { return s.camera }
