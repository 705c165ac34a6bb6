package wake

import "math"

// Resolution is the wake texture precision in texels per block.
type Resolution int

const (
	Resolution8  Resolution = 8
	Resolution16 Resolution = 16
	Resolution32 Resolution = 32
	Resolution64 Resolution = 64
)

// Decay is the shared decay parameter read by every node.
// Rate is the exponent per tick; Horizon is the last tick of age a node
// survives before the next prune removes it.
type Decay struct {
	Rate    float64
	Horizon uint64
}

// DecayModel derives the decay parameter from a resolution.
type DecayModel interface {
	DecayFor(res Resolution) Decay
}

// ExponentialDecay is the built-in model. Finer resolutions fade slower:
// the rate scales with 16/res, and the horizon is the age at which alpha
// drops below Cutoff.
type ExponentialDecay struct {
	BaseRate float64
	Cutoff   float64
}

// DefaultDecayModel fades a 16-texel wake below 2% in about 40 ticks.
var DefaultDecayModel = ExponentialDecay{BaseRate: 0.1, Cutoff: 0.02}

func (m ExponentialDecay) DecayFor(res Resolution) Decay {
	if res <= 0 {
		res = Resolution16
	}
	rate := m.BaseRate * 16 / float64(res)
	return DecayFromCutoff(rate, m.Cutoff)
}

// DecayFromCutoff returns the decay whose horizon is the first age at which
// exp(-rate*age) would fall below cutoff.
func DecayFromCutoff(rate, cutoff float64) Decay {
	if rate <= 0 || cutoff <= 0 || cutoff >= 1 {
		return Decay{Rate: rate}
	}
	return Decay{
		Rate:    rate,
		Horizon: uint64(math.Ceil(math.Log(1/cutoff) / rate)),
	}
}

// Settings is the active wake configuration value: the resolution and the
// decay parameter derived from it. Decay only changes through Apply.
type Settings struct {
	Resolution Resolution
	Decay      Decay

	model DecayModel
}

func NewSettings(res Resolution, model DecayModel) *Settings {
	if model == nil {
		model = DefaultDecayModel
	}
	s := &Settings{model: model}
	s.Apply(res)
	return s
}

// Apply commits res and recomputes the decay parameter.
func (s *Settings) Apply(res Resolution) {
	s.Resolution = res
	s.Decay = s.model.DecayFor(res)
}
