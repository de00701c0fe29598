package event

import (
	"github.com/l1jgo/dimension/internal/core/handle"
	"github.com/l1jgo/dimension/internal/world"
)

type WorldLoaded struct {
	ID   int32
	Name string
}

type WorldUnloaded struct {
	ID   int32
	Name string
}

// WorldLeakSuspected is emitted each time the leak auditor warns about a world.
type WorldLeakSuspected struct {
	Token handle.Token
	Name  string
	Count int
}

// BusNotifier announces unloads on the bus. It satisfies dimension.Notifier.
type BusNotifier struct {
	Bus *Bus
}

func (n BusNotifier) WorldUnloaded(w *world.World) {
	Emit(n.Bus, WorldUnloaded{ID: w.ID, Name: w.Name})
}
