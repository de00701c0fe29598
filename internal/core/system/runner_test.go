package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s recordingSystem) Phase() Phase { return s.phase }

func (s recordingSystem) Update(time.Duration) { *s.log = append(*s.log, s.name) }

func TestRunner_PhaseOrder(t *testing.T) {
	var calls []string
	r := NewRunner()
	r.Register(recordingSystem{"audit", PhaseAudit, &calls})
	r.Register(recordingSystem{"unload", PhaseUnload, &calls})
	r.Register(recordingSystem{"dispatch", PhaseDispatch, &calls})
	r.Register(recordingSystem{"save-a", PhasePersist, &calls})
	r.Register(recordingSystem{"save-b", PhasePersist, &calls})

	r.Tick(50 * time.Millisecond)
	require.Equal(t, []string{"dispatch", "save-a", "save-b", "unload", "audit"}, calls)
	require.Equal(t, 5, r.Len())
}

func TestRunner_TickPhase(t *testing.T) {
	var calls []string
	r := NewRunner()
	r.Register(recordingSystem{"audit", PhaseAudit, &calls})
	r.Register(recordingSystem{"unload", PhaseUnload, &calls})

	r.TickPhase(PhaseUnload, 0)
	require.Equal(t, []string{"unload"}, calls)
}

func TestPhase_String(t *testing.T) {
	require.Equal(t, "unload", PhaseUnload.String())
	require.Equal(t, "unknown", Phase(42).String())
}
