package dimension

import (
	"context"

	"github.com/l1jgo/dimension/internal/world"
)

//go:generate mockgen -destination mock_dimension_test.go -package dimension -source collaborators.go

// Saver writes every pending change of a world to storage. Called synchronously
// from UnloadWorlds before the world leaves the table.
type Saver interface {
	SaveAll(ctx context.Context, w *world.World) error
}

// Notifier announces that a world is about to be dropped. Fire-and-forget.
type Notifier interface {
	WorldUnloaded(w *world.World)
}

type nopNotifier struct{}

func (nopNotifier) WorldUnloaded(*world.World) {}
