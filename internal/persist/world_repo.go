package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/l1jgo/dimension/internal/world"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// ErrChunkCorrupt is returned by LoadChunks when a stored chunk no longer
// matches the checksum written with it.
var ErrChunkCorrupt = errors.New("chunk checksum mismatch")

// ChunkRow is one stored chunk column.
type ChunkRow struct {
	X        int32
	Z        int32
	Data     []byte
	Checksum []byte
}

// WorldRepo stores world chunk data. It satisfies dimension.Saver.
type WorldRepo struct {
	db *DB
}

func NewWorldRepo(db *DB) *WorldRepo {
	return &WorldRepo{db: db}
}

// SaveAll writes the world row and every dirty chunk in one transaction, then
// clears the dirty set. On error nothing is marked saved.
func (r *WorldRepo) SaveAll(ctx context.Context, w *world.World) error {
	dirty := w.DirtyChunks()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save world begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO worlds (id, name, saved_at) VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, saved_at = EXCLUDED.saved_at`,
		w.ID, w.Name,
	); err != nil {
		return fmt.Errorf("save world row: %w", err)
	}

	if len(dirty) > 0 {
		batch := &pgx.Batch{}
		for _, pos := range dirty {
			data, _ := w.Chunk(pos)
			batch.Queue(
				`INSERT INTO world_chunks (world_id, cx, cz, data, checksum) VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (world_id, cx, cz) DO UPDATE SET data = EXCLUDED.data, checksum = EXCLUDED.checksum`,
				w.ID, pos.X, pos.Z, data, chunkChecksum(data),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("save world chunks: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO world_saves (world_id, chunk_count) VALUES ($1, $2)`,
		w.ID, len(dirty),
	); err != nil {
		return fmt.Errorf("save world journal: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save world commit: %w", err)
	}
	w.MarkSaved(dirty)

	r.db.log.Debug("world saved",
		zap.Int32("world_id", w.ID),
		zap.String("name", w.Name),
		zap.Int("chunks", len(dirty)))
	return nil
}

// LoadChunks reads every stored chunk of a world and verifies its checksum.
func (r *WorldRepo) LoadChunks(ctx context.Context, worldID int32) (map[world.ChunkPos][]byte, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT cx, cz, data, checksum FROM world_chunks WHERE world_id = $1`, worldID,
	)
	if err != nil {
		return nil, fmt.Errorf("load chunks of world %d: %w", worldID, err)
	}
	defer rows.Close()

	var stored []ChunkRow
	for rows.Next() {
		var c ChunkRow
		if err := rows.Scan(&c.X, &c.Z, &c.Data, &c.Checksum); err != nil {
			return nil, fmt.Errorf("scan chunk of world %d: %w", worldID, err)
		}
		stored = append(stored, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load chunks of world %d: %w", worldID, err)
	}
	return chunksFromRows(worldID, stored)
}

func chunksFromRows(worldID int32, rows []ChunkRow) (map[world.ChunkPos][]byte, error) {
	out := make(map[world.ChunkPos][]byte, len(rows))
	for _, c := range rows {
		if !bytes.Equal(chunkChecksum(c.Data), c.Checksum) {
			return nil, fmt.Errorf("world %d chunk (%d,%d): %w", worldID, c.X, c.Z, ErrChunkCorrupt)
		}
		out[world.ChunkPos{X: c.X, Z: c.Z}] = c.Data
	}
	return out, nil
}

func chunkChecksum(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}
