package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/undercroft/internal/core/table"
	"github.com/louisbranch/undercroft/internal/dungeon/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// TableStore supplies validated generation tables from an opaque read-only
// source. Loading validates through table.New, so a table handed out by a
// store always satisfies the partition invariant.
type TableStore interface {
	// LoadTable returns the table with the given name, or ErrNotFound.
	LoadTable(ctx context.Context, name string) (*table.Table, error)
	// ListTables returns the names of tables in a category, sorted. An
	// empty category lists every table.
	ListTables(ctx context.Context, category string) ([]string, error)
}

// DungeonSummary is the listing projection of a stored dungeon.
type DungeonSummary struct {
	ID        string
	Name      string
	Theme     string
	Rooms     int
	CreatedAt time.Time
}

// DungeonStore persists generated dungeons.
type DungeonStore interface {
	Put(ctx context.Context, dungeon domain.Dungeon) error
	Get(ctx context.Context, id string) (domain.Dungeon, error)
	// List returns summaries of stored dungeons, newest first.
	List(ctx context.Context) ([]DungeonSummary, error)
	Delete(ctx context.Context, id string) error
}
