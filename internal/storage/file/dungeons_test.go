package file

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/undercroft/internal/dungeon/domain"
	"github.com/louisbranch/undercroft/internal/storage"
)

func testDungeon(id string, created time.Time) domain.Dungeon {
	dungeon := domain.Dungeon{
		ID:        id,
		Name:      "Sunken Vault",
		Theme:     "flooded",
		Notes:     "This dungeon has a flooded theme.",
		CreatedAt: created,
		Entrance:  1,
		Rooms:     map[int]domain.Room{},
	}
	dungeon.AddRoom(domain.Room{
		Theme:      "flooded",
		Attributes: map[string]string{"main_feature": "Chamber", "size": "Large"},
		Features:   []string{"Collapsed ceiling"},
	})
	dungeon.AddRoom(domain.Room{
		Theme:      "flooded",
		Attributes: map[string]string{"main_feature": "Corridor"},
	})
	if err := dungeon.Connect(1, 2, "Waist-deep channel"); err != nil {
		panic(err)
	}
	return dungeon
}

func TestDungeonStoreRoundTrip(t *testing.T) {
	store, err := NewDungeonStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDungeonStore: %v", err)
	}
	ctx := context.Background()

	want := testDungeon("abc123", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err := store.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestDungeonStoreGetMissing(t *testing.T) {
	store, err := NewDungeonStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDungeonStore: %v", err)
	}
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestDungeonStoreListNewestFirst(t *testing.T) {
	store, err := NewDungeonStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDungeonStore: %v", err)
	}
	ctx := context.Background()

	older := testDungeon("older", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := testDungeon("newer", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	if err := store.Put(ctx, older); err != nil {
		t.Fatalf("Put older: %v", err)
	}
	if err := store.Put(ctx, newer); err != nil {
		t.Fatalf("Put newer: %v", err)
	}

	summaries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("List returned %d summaries, want 2", len(summaries))
	}
	if summaries[0].ID != "newer" || summaries[1].ID != "older" {
		t.Errorf("List order = [%s %s], want newest first", summaries[0].ID, summaries[1].ID)
	}
	if summaries[0].Rooms != 2 {
		t.Errorf("Rooms = %d, want 2", summaries[0].Rooms)
	}
}

func TestDungeonStoreDelete(t *testing.T) {
	store, err := NewDungeonStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDungeonStore: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, testDungeon("gone", time.Now().UTC())); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "gone"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "gone"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}
}
