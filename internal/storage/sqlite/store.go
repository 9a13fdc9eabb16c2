// Package sqlite provides a SQLite-backed dungeon store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/undercroft/internal/dungeon/domain"
	sqlitemigrate "github.com/louisbranch/undercroft/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/undercroft/internal/storage"
	"github.com/louisbranch/undercroft/internal/storage/sqlite/migrations"
)

// Store persists dungeons in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite dungeon store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put stores a dungeon, replacing any previous version of the same id along
// with its rooms and connections.
func (s *Store) Put(ctx context.Context, dungeon domain.Dungeon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
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
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   theme = excluded.theme,
		   notes = excluded.notes,
		   entrance = excluded.entrance,
		   created_at = excluded.created_at`,
		dungeon.ID,
		dungeon.Name,
		dungeon.Theme,
		dungeon.Notes,
		dungeon.Entrance,
		toMillis(dungeon.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert dungeon %s: %w", dungeon.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dungeon_rooms WHERE dungeon_id = ?`, dungeon.ID); err != nil {
		return fmt.Errorf("clear rooms for %s: %w", dungeon.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dungeon_connections WHERE dungeon_id = ?`, dungeon.ID); err != nil {
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
			 VALUES (?, ?, ?, ?, ?)`,
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
			 VALUES (?, ?, ?, ?)`,
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
	if err := ctx.Err(); err != nil {
		return domain.Dungeon{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Dungeon{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return domain.Dungeon{}, fmt.Errorf("dungeon id is required")
	}

	dungeon := domain.Dungeon{Rooms: map[int]domain.Room{}}
	var createdAt int64
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, theme, notes, entrance, created_at FROM dungeons WHERE id = ?`,
		id,
	)
	err := row.Scan(&dungeon.ID, &dungeon.Name, &dungeon.Theme, &dungeon.Notes, &dungeon.Entrance, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Dungeon{}, fmt.Errorf("dungeon %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Dungeon{}, fmt.Errorf("query dungeon %s: %w", id, err)
	}
	dungeon.CreatedAt = fromMillis(createdAt)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT room_id, theme, attributes, features FROM dungeon_rooms
		 WHERE dungeon_id = ? ORDER BY room_id`,
		id,
	)
	if err != nil {
		return domain.Dungeon{}, fmt.Errorf("query rooms for %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var room domain.Room
		var attributes, features string
		if err := rows.Scan(&room.ID, &room.Theme, &attributes, &features); err != nil {
			return domain.Dungeon{}, fmt.Errorf("scan room for %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(attributes), &room.Attributes); err != nil {
			return domain.Dungeon{}, fmt.Errorf("unmarshal room %d attributes: %w", room.ID, err)
		}
		if err := json.Unmarshal([]byte(features), &room.Features); err != nil {
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
		 WHERE dungeon_id = ? ORDER BY room_a, room_b`,
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
	if err := ctx.Err(); err != nil {
		return nil, err
	}
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
		var createdAt int64
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Theme, &createdAt, &summary.Rooms); err != nil {
			return nil, fmt.Errorf("scan dungeon summary: %w", err)
		}
		summary.CreatedAt = fromMillis(createdAt)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dungeons: %w", err)
	}
	return summaries, nil
}

// Delete removes a stored dungeon and its rooms and connections.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("dungeon id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM dungeons WHERE id = ?`, id)
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
