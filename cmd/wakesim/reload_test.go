package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/saraasara/wakes/internal/config"
	"github.com/saraasara/wakes/internal/session"
	"github.com/saraasara/wakes/internal/system"
	"github.com/saraasara/wakes/internal/wake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const baseConfig = `
[world]
name = "overworld"

[wakes]
resolution = 16

[viewer]
yaw = 0.0
`

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// startReloader boots a session the way run does: the file says 16 and the
// database holds 32.
func startReloader(t *testing.T) (*configReloader, *session.Host, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wakesim.toml")
	writeConfig(t, path, baseConfig)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	fileCfg := *cfg
	require.True(t, applyStoredResolution(cfg, 32, zap.NewNop()))

	host := session.NewHost(wake.NewSettings(wake.Resolution(cfg.Wakes.Resolution), nil), session.Options{})
	host.LoadWorld(worldBounds(cfg.World))
	viewer := system.NewViewerSystem(host, cfg.Viewer, zap.NewNop())

	r := &configReloader{path: path, file: &fileCfg, host: host, viewer: viewer, log: zap.NewNop()}
	return r, host, path
}

func TestReloadCameraOnlyKeepsStoredResolution(t *testing.T) {
	r, host, path := startReloader(t)
	m, ok := host.Manager()
	require.True(t, ok)
	m.Insert(wake.NewNode(wake.Vec3{Y: 62}, m.Now()))
	m.Tick()

	writeConfig(t, path, `
[world]
name = "overworld"

[wakes]
resolution = 16

[viewer]
yaw = 90.0
`)
	r.reload()

	require.False(t, m.ResetPending())
	m.Tick()
	require.Equal(t, wake.Resolution32, host.Settings().Resolution)
	require.Equal(t, 1, m.Stats().LiveNodes)
	require.InDelta(t, math.Pi/2, r.viewer.Camera().Yaw, 1e-9)
}

func TestReloadChangedResolutionSchedulesReset(t *testing.T) {
	r, host, path := startReloader(t)
	m, _ := host.Manager()

	writeConfig(t, path, `
[world]
name = "overworld"

[wakes]
resolution = 64
`)
	r.reload()
	require.True(t, m.ResetPending())
	m.Tick()
	require.Equal(t, wake.Resolution64, host.Settings().Resolution)

	// reloading the same file again changes nothing
	r.reload()
	require.False(t, m.ResetPending())
}

func TestReloadKeepsStateOnBadFile(t *testing.T) {
	r, host, path := startReloader(t)
	m, _ := host.Manager()

	writeConfig(t, path, "[wakes\n")
	r.reload()
	require.False(t, m.ResetPending())
	require.Equal(t, 16, r.file.Wakes.Resolution)
}

func TestApplyStoredResolution(t *testing.T) {
	tests := []struct {
		name    string
		stored  int
		changed bool
		want    int
	}{
		{name: "override", stored: 64, changed: true, want: 64},
		{name: "same", stored: 16, changed: false, want: 16},
		{name: "zero", stored: 0, changed: false, want: 16},
		{name: "negative", stored: -8, changed: false, want: 16},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Wakes.Resolution = 16
			require.Equal(t, test.changed, applyStoredResolution(cfg, test.stored, zap.NewNop()))
			require.Equal(t, test.want, cfg.Wakes.Resolution)
		})
	}
}
