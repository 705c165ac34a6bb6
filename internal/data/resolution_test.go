package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/saraasara/wakes/internal/wake"
	"github.com/stretchr/testify/require"
)

func TestLoadResolutionTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolution_list.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- resolution: 8
  decay_rate: 0.2
  alpha_cutoff: 0.05
- resolution: 16
  decay_rate: 0.1
  alpha_cutoff: 0.05
  note: default
`), 0o644))

	table, err := LoadResolutionTable(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Count())
	require.Equal(t, "default", table.Get(16).Note)
	require.Nil(t, table.Get(32))

	d := table.DecayFor(wake.Resolution8)
	require.Equal(t, wake.DecayFromCutoff(0.2, 0.05), d)
	require.Equal(t, uint64(15), d.Horizon)

	require.Equal(t, wake.DefaultDecayModel.DecayFor(wake.Resolution32), table.DecayFor(wake.Resolution32),
		"unlisted resolutions use the built-in model")
}

func TestNewResolutionTableValidates(t *testing.T) {
	tests := []struct {
		name    string
		entries []ResolutionProfile
	}{
		{name: "zero resolution", entries: []ResolutionProfile{{Resolution: 0, DecayRate: 1, AlphaCutoff: 0.5}}},
		{name: "zero rate", entries: []ResolutionProfile{{Resolution: 8, DecayRate: 0, AlphaCutoff: 0.5}}},
		{name: "cutoff of one", entries: []ResolutionProfile{{Resolution: 8, DecayRate: 1, AlphaCutoff: 1}}},
		{name: "duplicate", entries: []ResolutionProfile{
			{Resolution: 8, DecayRate: 1, AlphaCutoff: 0.5},
			{Resolution: 8, DecayRate: 2, AlphaCutoff: 0.5},
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewResolutionTable(test.entries)
			require.Error(t, err)
		})
	}
}

func TestResolutionTableDrivesSettings(t *testing.T) {
	table, err := NewResolutionTable([]ResolutionProfile{
		{Resolution: 64, DecayRate: 0.01, AlphaCutoff: 0.1},
	})
	require.NoError(t, err)

	s := wake.NewSettings(wake.Resolution64, table)
	require.Equal(t, 0.01, s.Decay.Rate)
	require.Equal(t, uint64(231), s.Decay.Horizon)
}
