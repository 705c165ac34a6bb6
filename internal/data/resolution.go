package data

import (
	"fmt"
	"os"

	"github.com/saraasara/wakes/internal/wake"
	"gopkg.in/yaml.v3"
)

// ResolutionProfile defines how fast wakes fade at one texture resolution.
type ResolutionProfile struct {
	Resolution  int     `yaml:"resolution"`
	DecayRate   float64 `yaml:"decay_rate"`   // alpha exponent per tick
	AlphaCutoff float64 `yaml:"alpha_cutoff"` // alpha below which a node is pruned
	Note        string  `yaml:"note"`
}

// ResolutionTable maps resolutions to decay profiles. It implements
// wake.DecayModel; resolutions missing from the table use the fallback.
type ResolutionTable struct {
	profiles map[int]*ResolutionProfile
	fallback wake.DecayModel
}

// LoadResolutionTable loads resolution_list.yaml.
func LoadResolutionTable(path string) (*ResolutionTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resolution list: %w", err)
	}
	var entries []ResolutionProfile
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse resolution list: %w", err)
	}
	return NewResolutionTable(entries)
}

func NewResolutionTable(entries []ResolutionProfile) (*ResolutionTable, error) {
	t := &ResolutionTable{
		profiles: make(map[int]*ResolutionProfile, len(entries)),
		fallback: wake.DefaultDecayModel,
	}
	for i := range entries {
		e := &entries[i]
		if e.Resolution <= 0 {
			return nil, fmt.Errorf("resolution entry %d: resolution must be positive", i)
		}
		if e.DecayRate <= 0 {
			return nil, fmt.Errorf("resolution %d: decay_rate must be positive", e.Resolution)
		}
		if e.AlphaCutoff <= 0 || e.AlphaCutoff >= 1 {
			return nil, fmt.Errorf("resolution %d: alpha_cutoff must be in (0, 1)", e.Resolution)
		}
		if _, dup := t.profiles[e.Resolution]; dup {
			return nil, fmt.Errorf("resolution %d listed twice", e.Resolution)
		}
		t.profiles[e.Resolution] = e
	}
	return t, nil
}

// Get returns the profile for res, or nil if none.
func (t *ResolutionTable) Get(res int) *ResolutionProfile {
	return t.profiles[res]
}

// Count returns the total number of profiles loaded.
func (t *ResolutionTable) Count() int {
	return len(t.profiles)
}

func (t *ResolutionTable) DecayFor(res wake.Resolution) wake.Decay {
	p := t.profiles[int(res)]
	if p == nil {
		return t.fallback.DecayFor(res)
	}
	return wake.DecayFromCutoff(p.DecayRate, p.AlphaCutoff)
}
