package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/louisbranch/undercroft/internal/dungeon/domain"
	"github.com/louisbranch/undercroft/internal/storage"
)

// dungeonDocument is the on-disk dungeon schema, one file per dungeon.
type dungeonDocument struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Theme     string            `json:"theme,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Entrance  int               `json:"entrance"`
	Rooms     []roomDocument    `json:"rooms"`
	Conns     []passageDocument `json:"connections,omitempty"`
}

type roomDocument struct {
	ID         int               `json:"id"`
	Theme      string            `json:"theme,omitempty"`
	Attributes map[string]string `json:"attributes"`
	Features   []string          `json:"features,omitempty"`
}

type passageDocument struct {
	RoomA   int    `json:"room_a"`
	RoomB   int    `json:"room_b"`
	Passage string `json:"passage"`
}

// DungeonStore persists dungeons as JSON files under a directory.
type DungeonStore struct {
	dir string
}

// NewDungeonStore creates the directory if needed and returns a store over
// it.
func NewDungeonStore(dir string) (*DungeonStore, error) {
	if dir == "" {
		return nil, errors.New("dungeon directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dungeon directory: %w", err)
	}
	return &DungeonStore{dir: dir}, nil
}

// Put writes the dungeon to <id>.json, replacing any previous version.
func (s *DungeonStore) Put(_ context.Context, dungeon domain.Dungeon) error {
	if dungeon.ID == "" {
		return errors.New("dungeon id is required")
	}
	doc := encodeDungeon(dungeon)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dungeon %s: %w", dungeon.ID, err)
	}
	if err := os.WriteFile(s.path(dungeon.ID), data, 0o644); err != nil {
		return fmt.Errorf("write dungeon %s: %w", dungeon.ID, err)
	}
	return nil
}

// Get reads a dungeon by id.
func (s *DungeonStore) Get(_ context.Context, id string) (domain.Dungeon, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Dungeon{}, fmt.Errorf("dungeon %s: %w", id, storage.ErrNotFound)
		}
		return domain.Dungeon{}, fmt.Errorf("read dungeon %s: %w", id, err)
	}
	var doc dungeonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Dungeon{}, fmt.Errorf("parse dungeon %s: %w", id, err)
	}
	return decodeDungeon(doc), nil
}

// List returns summaries for every stored dungeon, newest first.
func (s *DungeonStore) List(ctx context.Context) ([]storage.DungeonSummary, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list dungeons: %w", err)
	}
	summaries := make([]storage.DungeonSummary, 0, len(matches))
	for _, match := range matches {
		id := trimJSONExt(filepath.Base(match))
		dungeon, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, storage.DungeonSummary{
			ID:        dungeon.ID,
			Name:      dungeon.Name,
			Theme:     dungeon.Theme,
			Rooms:     len(dungeon.Rooms),
			CreatedAt: dungeon.CreatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Delete removes a stored dungeon.
func (s *DungeonStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("dungeon %s: %w", id, storage.ErrNotFound)
		}
		return fmt.Errorf("delete dungeon %s: %w", id, err)
	}
	return nil
}

func (s *DungeonStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func trimJSONExt(name string) string {
	return name[:len(name)-len(".json")]
}

func encodeDungeon(dungeon domain.Dungeon) dungeonDocument {
	doc := dungeonDocument{
		ID:        dungeon.ID,
		Name:      dungeon.Name,
		Theme:     dungeon.Theme,
		Notes:     dungeon.Notes,
		CreatedAt: dungeon.CreatedAt.UTC(),
		Entrance:  dungeon.Entrance,
	}
	for _, roomID := range dungeon.RoomIDs() {
		room := dungeon.Rooms[roomID]
		doc.Rooms = append(doc.Rooms, roomDocument{
			ID:         room.ID,
			Theme:      room.Theme,
			Attributes: room.Attributes,
			Features:   room.Features,
		})
	}
	for _, conn := range dungeon.Connections {
		doc.Conns = append(doc.Conns, passageDocument{
			RoomA:   conn.A,
			RoomB:   conn.B,
			Passage: conn.Passage,
		})
	}
	return doc
}

func decodeDungeon(doc dungeonDocument) domain.Dungeon {
	dungeon := domain.Dungeon{
		ID:        doc.ID,
		Name:      doc.Name,
		Theme:     doc.Theme,
		Notes:     doc.Notes,
		CreatedAt: doc.CreatedAt,
		Entrance:  doc.Entrance,
		Rooms:     make(map[int]domain.Room, len(doc.Rooms)),
	}
	for _, room := range doc.Rooms {
		dungeon.Rooms[room.ID] = domain.Room{
			ID:         room.ID,
			Theme:      room.Theme,
			Attributes: room.Attributes,
			Features:   room.Features,
		}
	}
	for _, conn := range doc.Conns {
		dungeon.Connections = append(dungeon.Connections, domain.Connection{
			A:       conn.RoomA,
			B:       conn.RoomB,
			Passage: conn.Passage,
		})
	}
	return dungeon
}
