package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseDispatch Phase = iota // 0: deliver last tick's events
	PhaseUpdate                // 1: host world logic
	PhasePersist               // 2: periodic saves
	PhaseUnload                // 3: drain the unload queue
	PhaseAudit                 // 4: leak audit
)

func (p Phase) String() string {
	switch p {
	case PhaseDispatch:
		return "dispatch"
	case PhaseUpdate:
		return "update"
	case PhasePersist:
		return "persist"
	case PhaseUnload:
		return "unload"
	case PhaseAudit:
		return "audit"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
