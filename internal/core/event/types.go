package event

import "github.com/google/uuid"

// ResolutionChanged is emitted once a deferred resolution change has been
// committed at the end of a tick.
type ResolutionChanged struct {
	SessionID uuid.UUID
	World     string
	From      int
	To        int
	Tick      uint64
}

type WorldLoaded struct {
	SessionID uuid.UUID
	World     string
	MinY      int
	MaxY      int
}

type WorldUnloaded struct {
	SessionID uuid.UUID
	World     string
	Tick      uint64
}
