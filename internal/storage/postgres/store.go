// Package postgres provides a PostgreSQL-backed dungeon store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/louisbranch/undercroft/internal/dungeon/domain"
	"github.com/louisbranch/undercroft/internal/storage"
)

// Store persists dungeons in PostgreSQL.
type Store struct {
	sqlDB *sql.DB
}

// Open connects to PostgreSQL and ensures the dungeon schema exists.
func Open(ctx context.Context, connString string) (*Store, error) {
	if strings.TrimSpace(connString) == "" {
		return nil, fmt.Errorf("connection string is required")
	}
	sqlDB, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	store := &Store{sqlDB: sqlDB}
	if err := store.initSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS dungeons (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		theme TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		entrance INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dungeon_rooms (
		dungeon_id TEXT NOT NULL REFERENCES dungeons(id) ON DELETE CASCADE,
		room_id INTEGER NOT NULL,
		theme TEXT NOT NULL DEFAULT '',
		attributes JSONB NOT NULL DEFAULT '{}',
		features JSONB NOT NULL DEFAULT '[]',
		PRIMARY KEY (dungeon_id, room_id)
	);

	CREATE TABLE IF NOT EXISTS dungeon_connections (
		dungeon_id TEXT NOT NULL REFERENCES dungeons(id) ON DELETE CASCADE,
		room_a INTEGER NOT NULL,
		room_b INTEGER NOT NULL,
		passage TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (dungeon_id, room_a, room_b)
	);
	`
	_, err := s.sqlDB.ExecContext(ctx, schema)
	return err
}

// Put stores a dungeon, replacing any previous version of the same id.
func (s *Store) Put(ctx context.Context, dungeon domain.Dungeon) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(dungeon.ID) == "" {
		return fmt.Errorf("dungeon id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO dungeons (id, name, theme, notes, entrance, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   theme = EXCLUDED.theme,
		   notes = EXCLUDED.notes,
		   entrance = EXCLUDED.entrance,
		   created_at = EXCLUDED.created_at`,
		dungeon.ID,
		dungeon.Name,
		dungeon.Theme,
		dungeon.Notes,
		dungeon.Entrance,
		dungeon.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert dungeon %s: %w", dungeon.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dungeon_rooms WHERE dungeon_id = $1`, dungeon.ID); err != nil {
		return fmt.Errorf("clear rooms for %s: %w", dungeon.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dungeon_connections WHERE dungeon_id = $1`, dungeon.ID); err != nil {
		return fmt.Errorf("clear connections for %s: %w", dungeon.ID, err)
	}

	for _, roomID := range dungeon.RoomIDs() {
		room := dungeon.Rooms[roomID]
		attributes, err := json.Marshal(room.Attributes)
		if err != nil {
			return fmt.Errorf("marshal room %d attributes: %w", room.ID, err)
		}
		features, err := json.Marshal(room.Features)
		if err != nil {
			return fmt.Errorf("marshal room %d features: %w", room.ID, err)
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO dungeon_rooms (dungeon_id, room_id, theme, attributes, features)
			 VALUES ($1, $2, $3, $4, $5)`,
			dungeon.ID,
			room.ID,
			room.Theme,
			string(attributes),
			string(features),
		)
		if err != nil {
			return fmt.Errorf("insert room %d: %w", room.ID, err)
		}
	}

	for _, conn := range dungeon.Connections {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO dungeon_connections (dungeon_id, room_a, room_b, passage)
			 VALUES ($1, $2, $3, $4)`,
			dungeon.ID,
			conn.A,
			conn.B,
			conn.Passage,
		)
		if err != nil {
			return fmt.Errorf("insert connection %d-%d: %w", conn.A, conn.B, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put transaction: %w", err)
	}
	return nil
}

// Get fetches a dungeon by id, including its rooms and connections.
func (s *Store) Get(ctx context.Context, id string) (domain.Dungeon, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Dungeon{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return domain.Dungeon{}, fmt.Errorf("dungeon id is required")
	}

	dungeon := domain.Dungeon{Rooms: map[int]domain.Room{}}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, theme, notes, entrance, created_at FROM dungeons WHERE id = $1`,
		id,
	)
	err := row.Scan(&dungeon.ID, &dungeon.Name, &dungeon.Theme, &dungeon.Notes, &dungeon.Entrance, &dungeon.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Dungeon{}, fmt.Errorf("dungeon %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Dungeon{}, fmt.Errorf("query dungeon %s: %w", id, err)
	}
	dungeon.CreatedAt = dungeon.CreatedAt.UTC()

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT room_id, theme, attributes, features FROM dungeon_rooms
		 WHERE dungeon_id = $1 ORDER BY room_id`,
		id,
	)
	if err != nil {
		return domain.Dungeon{}, fmt.Errorf("query rooms for %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var room domain.Room
		var attributes, features []byte
		if err := rows.Scan(&room.ID, &room.Theme, &attributes, &features); err != nil {
			return domain.Dungeon{}, fmt.Errorf("scan room for %s: %w", id, err)
		}
		if err := json.Unmarshal(attributes, &room.Attributes); err != nil {
			return domain.Dungeon{}, fmt.Errorf("unmarshal room %d attributes: %w", room.ID, err)
		}
		if err := json.Unmarshal(features, &room.Features); err != nil {
			return domain.Dungeon{}, fmt.Errorf("unmarshal room %d features: %w", room.ID, err)
		}
		dungeon.Rooms[room.ID] = room
	}
	if err := rows.Err(); err != nil {
		return domain.Dungeon{}, fmt.Errorf("iterate rooms for %s: %w", id, err)
	}

	connRows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT room_a, room_b, passage FROM dungeon_connections
		 WHERE dungeon_id = $1 ORDER BY room_a, room_b`,
		id,
	)
	if err != nil {
		return domain.Dungeon{}, fmt.Errorf("query connections for %s: %w", id, err)
	}
	defer func() { _ = connRows.Close() }()
	for connRows.Next() {
		var conn domain.Connection
		if err := connRows.Scan(&conn.A, &conn.B, &conn.Passage); err != nil {
			return domain.Dungeon{}, fmt.Errorf("scan connection for %s: %w", id, err)
		}
		dungeon.Connections = append(dungeon.Connections, conn)
	}
	if err := connRows.Err(); err != nil {
		return domain.Dungeon{}, fmt.Errorf("iterate connections for %s: %w", id, err)
	}

	return dungeon, nil
}

// List returns summaries of stored dungeons, newest first.
func (s *Store) List(ctx context.Context) ([]storage.DungeonSummary, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT d.id, d.name, d.theme, d.created_at,
		   (SELECT COUNT(*) FROM dungeon_rooms r WHERE r.dungeon_id = d.id)
		 FROM dungeons d ORDER BY d.created_at DESC, d.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query dungeons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []storage.DungeonSummary
	for rows.Next() {
		var summary storage.DungeonSummary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Theme, &summary.CreatedAt, &summary.Rooms); err != nil {
			return nil, fmt.Errorf("scan dungeon summary: %w", err)
		}
		summary.CreatedAt = summary.CreatedAt.UTC()
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dungeons: %w", err)
	}
	return summaries, nil
}

// Delete removes a stored dungeon and its rooms and connections.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("dungeon id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM dungeons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dungeon %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dungeon %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("dungeon %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
