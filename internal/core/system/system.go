package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: producers queue new wake nodes
	PhasePreUpdate               // 1: process last tick's events
	PhaseUpdate                  // 2: advance wake managers (decay, drain, reset)
	PhasePostUpdate              // 3: stats and gauges
	PhaseOutput                  // 4: viewer queries, runs per frame as well
	PhasePersist                 // 5: settings writes
	PhaseCleanup                 // 6: end-of-tick housekeeping
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
