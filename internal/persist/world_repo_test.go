package persist

import (
	"testing"

	"github.com/l1jgo/dimension/internal/world"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChunksFromRows(t *testing.T) {
	rows := []ChunkRow{
		{X: 0, Z: 0, Data: []byte("stone"), Checksum: chunkChecksum([]byte("stone"))},
		{X: -3, Z: 8, Data: []byte{}, Checksum: chunkChecksum(nil)},
	}

	chunks, err := chunksFromRows(1, rows)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	require.Equal(t, []byte("stone"), chunks[world.ChunkPos{X: 0, Z: 0}])
	require.Contains(t, chunks, world.ChunkPos{X: -3, Z: 8})
}

func TestChunksFromRows_Corrupt(t *testing.T) {
	rows := []ChunkRow{
		{X: 1, Z: 2, Data: []byte("dirt"), Checksum: chunkChecksum([]byte("grass"))},
	}

	_, err := chunksFromRows(4, rows)
	require.ErrorIs(t, err, ErrChunkCorrupt)
	require.ErrorContains(t, err, "world 4 chunk (1,2)")
}

func TestChunkChecksum(t *testing.T) {
	a := chunkChecksum([]byte("a"))
	require.Len(t, a, 32)
	require.Equal(t, a, chunkChecksum([]byte("a")))
	require.NotEqual(t, a, chunkChecksum([]byte("b")))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.Equal(t, "00001_worlds.sql", entries[0].Name())
}

func TestGooseLogger_FatalfLogsWithoutExiting(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := gooseLogger{log: zap.New(core).Sugar()}

	l.Printf("OK   %s\n", "00001_worlds.sql")
	l.Fatalf("failed to apply %s\n", "00002_bad.sql")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, "OK   00001_worlds.sql", entries[0].Message)
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	require.Equal(t, "failed to apply 00002_bad.sql", entries[1].Message)
}
