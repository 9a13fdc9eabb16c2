package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/undercroft/internal/core/dice"
	"github.com/louisbranch/undercroft/internal/export"
	"github.com/louisbranch/undercroft/internal/generator"
	"github.com/louisbranch/undercroft/internal/registry"
	"github.com/louisbranch/undercroft/internal/storage"
	"github.com/louisbranch/undercroft/internal/storage/file"
	"github.com/louisbranch/undercroft/internal/tables"
)

func newTestConfig(t *testing.T, withStore bool) Config {
	t.Helper()

	tableStore, err := file.NewTableStore(tables.Default())
	if err != nil {
		t.Fatalf("NewTableStore() error = %v", err)
	}
	reg, err := registry.Load(context.Background(), tableStore)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	gen := generator.NewDungeonGenerator(reg, generator.DefaultProfile())
	gen.Now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	ids := 0
	gen.NewID = func() (string, error) {
		ids++
		return strings.Repeat("d", ids), nil
	}

	cfg := Config{Generator: gen, Registry: reg, Locale: language.AmericanEnglish}
	if withStore {
		dungeonStore, err := file.NewDungeonStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewDungeonStore() error = %v", err)
		}
		cfg.Dungeons = dungeonStore
	}
	return cfg
}

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()

	server, err := New(newTestConfig(t, withStore))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return server
}

func TestNewRequiresGenerator(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New() without generator succeeded, want error")
	}
}

func TestNewDefaultsLocaleToBase(t *testing.T) {
	cfg := newTestConfig(t, false)
	cfg.Locale = language.Und

	server, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if server.locale != export.BaseLocale {
		t.Errorf("locale = %v, want %v", server.locale, export.BaseLocale)
	}

	_, result, err := server.generateRoom(context.Background(), nil, GenerateRoomInput{Seed: 7})
	if err != nil {
		t.Fatalf("generateRoom() error = %v", err)
	}
	if !strings.Contains(result.Text, "Main Feature:") {
		t.Errorf("Text not rendered in the base locale:\n%s", result.Text)
	}
}

func TestGenerateRoomTool(t *testing.T) {
	server := newTestServer(t, false)

	_, result, err := server.generateRoom(context.Background(), nil, GenerateRoomInput{Seed: 7})
	if err != nil {
		t.Fatalf("generateRoom() error = %v", err)
	}
	if result.Seed != 7 {
		t.Errorf("Seed = %d, want 7", result.Seed)
	}
	if result.Room.Attributes["main_feature"] == "" {
		t.Error("room is missing its main_feature attribute")
	}
	if !strings.Contains(result.Text, "Main Feature:") {
		t.Errorf("Text missing rendered attribute:\n%s", result.Text)
	}

	_, again, err := server.generateRoom(context.Background(), nil, GenerateRoomInput{Seed: 7})
	if err != nil {
		t.Fatalf("generateRoom() second call error = %v", err)
	}
	if again.Room.Attributes["main_feature"] != result.Room.Attributes["main_feature"] {
		t.Error("same seed produced different rooms")
	}
}

func TestGenerateDungeonToolSaves(t *testing.T) {
	server := newTestServer(t, true)
	ctx := context.Background()

	_, result, err := server.generateDungeon(ctx, nil, GenerateDungeonInput{
		Rooms: 4,
		Name:  "The Broken Warrens",
		Seed:  11,
		Save:  true,
	})
	if err != nil {
		t.Fatalf("generateDungeon() error = %v", err)
	}
	if !result.Saved {
		t.Error("Saved = false, want true")
	}
	if len(result.Dungeon.Rooms) != 4 {
		t.Errorf("rooms = %d, want 4", len(result.Dungeon.Rooms))
	}
	if len(result.Dungeon.Connections) < 3 {
		t.Errorf("connections = %d, want at least 3 (spanning)", len(result.Dungeon.Connections))
	}

	_, listed, err := server.listDungeons(ctx, nil, ListDungeonsInput{})
	if err != nil {
		t.Fatalf("listDungeons() error = %v", err)
	}
	if len(listed.Dungeons) != 1 || listed.Dungeons[0].Name != "The Broken Warrens" {
		t.Errorf("listDungeons() = %+v, want the saved dungeon", listed.Dungeons)
	}

	_, fetched, err := server.getDungeon(ctx, nil, GetDungeonInput{ID: result.Dungeon.ID})
	if err != nil {
		t.Fatalf("getDungeon() error = %v", err)
	}
	if fetched.Dungeon.Name != "The Broken Warrens" {
		t.Errorf("getDungeon() name = %q", fetched.Dungeon.Name)
	}

	_, deleted, err := server.deleteDungeon(ctx, nil, DeleteDungeonInput{ID: result.Dungeon.ID})
	if err != nil {
		t.Fatalf("deleteDungeon() error = %v", err)
	}
	if !deleted.Deleted {
		t.Error("Deleted = false, want true")
	}
	if _, _, err := server.getDungeon(ctx, nil, GetDungeonInput{ID: result.Dungeon.ID}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("getDungeon() after delete error = %v, want storage.ErrNotFound", err)
	}
}

func TestGenerateDungeonToolRejectsZeroRooms(t *testing.T) {
	server := newTestServer(t, false)

	_, _, err := server.generateDungeon(context.Background(), nil, GenerateDungeonInput{Rooms: 0})
	var genErr *generator.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("generateDungeon(rooms=0) error = %v, want GenerationError", err)
	}
}

func TestRegenerateRoomToolPreservesConnections(t *testing.T) {
	server := newTestServer(t, true)
	ctx := context.Background()

	_, generated, err := server.generateDungeon(ctx, nil, GenerateDungeonInput{Rooms: 3, Seed: 5, Save: true})
	if err != nil {
		t.Fatalf("generateDungeon() error = %v", err)
	}

	_, result, err := server.regenerateRoom(ctx, nil, RegenerateRoomInput{
		DungeonID: generated.Dungeon.ID,
		RoomID:    2,
		Seed:      99,
	})
	if err != nil {
		t.Fatalf("regenerateRoom() error = %v", err)
	}
	if result.Room.ID != 2 {
		t.Errorf("room id = %d, want 2", result.Room.ID)
	}

	_, fetched, err := server.getDungeon(ctx, nil, GetDungeonInput{ID: generated.Dungeon.ID})
	if err != nil {
		t.Fatalf("getDungeon() error = %v", err)
	}
	if len(fetched.Dungeon.Connections) != len(generated.Dungeon.Connections) {
		t.Errorf("connections = %d, want %d (unchanged)", len(fetched.Dungeon.Connections), len(generated.Dungeon.Connections))
	}
}

func TestRollDiceTool(t *testing.T) {
	server := newTestServer(t, false)
	ctx := context.Background()

	_, result, err := server.rollDice(ctx, nil, RollDiceInput{Dice: "2d6 d20", Seed: 3})
	if err != nil {
		t.Fatalf("rollDice() error = %v", err)
	}
	if result.Seed != 3 {
		t.Errorf("Seed = %d, want 3", result.Seed)
	}
	if len(result.Rolls) != 2 {
		t.Fatalf("rolls = %d, want 2", len(result.Rolls))
	}
	if result.Rolls[0].Sides != 6 || len(result.Rolls[0].Results) != 2 {
		t.Errorf("first group = %+v, want 2d6", result.Rolls[0])
	}
	if result.Rolls[1].Sides != 20 || len(result.Rolls[1].Results) != 1 {
		t.Errorf("second group = %+v, want d20", result.Rolls[1])
	}
	sum := result.Rolls[0].Total + result.Rolls[1].Total
	if result.Total != sum {
		t.Errorf("Total = %d, want %d", result.Total, sum)
	}

	_, again, err := server.rollDice(ctx, nil, RollDiceInput{Dice: "2d6 d20", Seed: 3})
	if err != nil {
		t.Fatalf("rollDice() second call error = %v", err)
	}
	if again.Total != result.Total {
		t.Error("same seed produced different totals")
	}

	if _, _, err := server.rollDice(ctx, nil, RollDiceInput{Dice: "nonsense"}); !errors.Is(err, dice.ErrInvalidDiceSpec) {
		t.Errorf("rollDice(nonsense) error = %v, want ErrInvalidDiceSpec", err)
	}
}

func TestTableTools(t *testing.T) {
	server := newTestServer(t, false)
	ctx := context.Background()

	_, listed, err := server.listTables(ctx, nil, ListTablesInput{Category: "contents"})
	if err != nil {
		t.Fatalf("listTables() error = %v", err)
	}
	want := []string{"contents", "flooded_contents", "infested_contents"}
	if len(listed.Names) != len(want) {
		t.Fatalf("listTables(contents) = %v, want %v", listed.Names, want)
	}
	for i, name := range want {
		if listed.Names[i] != name {
			t.Errorf("listTables(contents)[%d] = %q, want %q", i, listed.Names[i], name)
		}
	}

	_, tbl, err := server.getTable(ctx, nil, GetTableInput{Name: "exits"})
	if err != nil {
		t.Fatalf("getTable() error = %v", err)
	}
	if tbl.Category != "exits" || len(tbl.Entries) == 0 {
		t.Errorf("getTable(exits) = %+v, want populated table", tbl)
	}

	if _, _, err := server.getTable(ctx, nil, GetTableInput{Name: "absent"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("getTable(absent) error = %v, want storage.ErrNotFound", err)
	}
}
