package event

import (
	"sync"
	"testing"

	"github.com/l1jgo/dimension/internal/world"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversNextTick(t *testing.T) {
	bus := NewBus()
	var got []WorldUnloaded
	Subscribe(bus, func(ev WorldUnloaded) { got = append(got, ev) })

	Emit(bus, WorldUnloaded{ID: 1, Name: "Overworld"})
	require.Equal(t, 1, bus.Pending())

	bus.DispatchAll()
	require.Empty(t, got, "nothing is delivered before the swap")

	bus.SwapBuffers()
	bus.DispatchAll()
	require.Equal(t, []WorldUnloaded{{ID: 1, Name: "Overworld"}}, got)
	require.Zero(t, bus.Pending())

	bus.SwapBuffers()
	bus.DispatchAll()
	require.Len(t, got, 1, "events are delivered once")
}

func TestBus_RoutesByType(t *testing.T) {
	bus := NewBus()
	var loaded, unloaded int
	Subscribe(bus, func(WorldLoaded) { loaded++ })
	Subscribe(bus, func(WorldUnloaded) { unloaded++ })
	Subscribe(bus, func(WorldUnloaded) { unloaded++ })

	Emit(bus, WorldLoaded{ID: 1})
	Emit(bus, WorldUnloaded{ID: 2})
	bus.SwapBuffers()
	bus.DispatchAll()

	require.Equal(t, 1, loaded)
	require.Equal(t, 2, unloaded)
}

func TestBusNotifier(t *testing.T) {
	bus := NewBus()
	var got []WorldUnloaded
	Subscribe(bus, func(ev WorldUnloaded) { got = append(got, ev) })

	BusNotifier{Bus: bus}.WorldUnloaded(world.New(-1, "Nether"))
	bus.SwapBuffers()
	bus.DispatchAll()

	require.Equal(t, []WorldUnloaded{{ID: -1, Name: "Nether"}}, got)
}

func TestBus_EmitFromOtherGoroutines(t *testing.T) {
	bus := NewBus()
	var got int
	Subscribe(bus, func(WorldUnloaded) { got++ })

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(id int32) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				Emit(bus, WorldUnloaded{ID: id})
			}
		}(int32(g))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		bus.SwapBuffers()
		bus.DispatchAll()
	}
	bus.SwapBuffers()
	bus.DispatchAll()

	require.Equal(t, 400, got)
	require.Zero(t, bus.Pending())
}
