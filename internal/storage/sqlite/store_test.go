package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/undercroft/internal/dungeon/domain"
	"github.com/louisbranch/undercroft/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "dungeons.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testDungeon(id string, createdAt time.Time) domain.Dungeon {
	return domain.Dungeon{
		ID:        id,
		Name:      "The Sunken Vault",
		Theme:     "flooded",
		Notes:     "This dungeon has a flooded theme.",
		CreatedAt: createdAt,
		Entrance:  1,
		Rooms: map[int]domain.Room{
			1: {
				ID:         1,
				Theme:      "flooded",
				Attributes: map[string]string{"main_feature": "Chamber", "size": "Closet-sized"},
				Features:   []string{"Broken machines"},
			},
			2: {
				ID:         2,
				Theme:      "flooded",
				Attributes: map[string]string{"main_feature": "Corridor"},
			},
		},
		Connections: []domain.Connection{
			{A: 1, B: 2, Passage: "Waist-deep channel"},
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := testDungeon("dungeon-1", time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))
	if err := store.Put(ctx, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestPutReplacesRoomsAndConnections(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	dungeon := testDungeon("dungeon-1", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	if err := store.Put(ctx, dungeon); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	dungeon.Rooms = map[int]domain.Room{
		1: {ID: 1, Attributes: map[string]string{"main_feature": "Vault"}},
	}
	dungeon.Connections = nil
	if err := store.Put(ctx, dungeon); err != nil {
		t.Fatalf("Put() second time error = %v", err)
	}

	got, err := store.Get(ctx, dungeon.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Rooms) != 1 {
		t.Errorf("Get() rooms = %d, want 1", len(got.Rooms))
	}
	if len(got.Connections) != 0 {
		t.Errorf("Get() connections = %d, want 0", len(got.Connections))
	}
}

func TestGetMissingDungeon(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() error = %v, want storage.ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := testDungeon("older", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := testDungeon("newer", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	for _, dungeon := range []domain.Dungeon{older, newer} {
		if err := store.Put(ctx, dungeon); err != nil {
			t.Fatalf("Put(%s) error = %v", dungeon.ID, err)
		}
	}

	summaries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("List() = %d summaries, want 2", len(summaries))
	}
	if summaries[0].ID != "newer" || summaries[1].ID != "older" {
		t.Errorf("List() order = %s, %s; want newer, older", summaries[0].ID, summaries[1].ID)
	}
	if summaries[0].Rooms != 2 {
		t.Errorf("List() rooms = %d, want 2", summaries[0].Rooms)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	dungeon := testDungeon("dungeon-1", time.Now().UTC().Truncate(time.Millisecond))
	if err := store.Put(ctx, dungeon); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete(ctx, dungeon.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, dungeon.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want storage.ErrNotFound", err)
	}
	if err := store.Delete(ctx, dungeon.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want storage.ErrNotFound", err)
	}
}
