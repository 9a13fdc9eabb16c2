// Package domain defines the entities produced by dungeon generation: rooms,
// passages between them, and the dungeon that owns both.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/louisbranch/undercroft/internal/platform/id"
)

// DefaultName is used when a dungeon is created without a name.
const DefaultName = "Random Dungeon"

const maxNameLength = 120

var (
	// ErrNameTooLong indicates a dungeon name over the storage limit.
	ErrNameTooLong = errors.New("dungeon name is too long")
	// ErrRoomNotFound indicates a room id absent from the dungeon.
	ErrRoomNotFound = errors.New("room not found in dungeon")
	// ErrSelfConnection indicates a passage from a room to itself.
	ErrSelfConnection = errors.New("room cannot connect to itself")
	// ErrDuplicateConnection indicates a second passage between the same pair.
	ErrDuplicateConnection = errors.New("rooms are already connected")
)

// Connection is an undirected passage between two rooms, held with A < B so
// each unordered pair has one canonical form.
type Connection struct {
	A       int
	B       int
	Passage string
}

// Dungeon is a connected graph of rooms joined by passages, rooted at an
// entrance room. Rooms are owned exclusively; connections reference rooms by
// id value.
type Dungeon struct {
	ID          string
	Name        string
	Theme       string
	Notes       string
	CreatedAt   time.Time
	Entrance    int
	Rooms       map[int]Room
	Connections []Connection
}

// CreateDungeonInput describes the metadata needed to create a dungeon.
type CreateDungeonInput struct {
	Name  string
	Theme string
	Notes string
}

// CreateDungeon creates an empty dungeon with a generated ID and timestamp.
func CreateDungeon(input CreateDungeonInput, now func() time.Time, idGenerator func() (string, error)) (Dungeon, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	name, err := NormalizeDungeonName(input.Name)
	if err != nil {
		return Dungeon{}, err
	}

	dungeonID, err := idGenerator()
	if err != nil {
		return Dungeon{}, fmt.Errorf("generate dungeon id: %w", err)
	}

	return Dungeon{
		ID:        dungeonID,
		Name:      name,
		Theme:     strings.TrimSpace(input.Theme),
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: now().UTC(),
		Rooms:     map[int]Room{},
	}, nil
}

// NormalizeDungeonName trims the name, applies the default for empty input,
// and enforces the length limit.
func NormalizeDungeonName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName, nil
	}
	if len(name) > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// AddRoom assigns the next sequential id (starting at 1) to the room, stores
// it, and returns it. The first room added becomes the entrance.
func (d *Dungeon) AddRoom(room Room) Room {
	if d.Rooms == nil {
		d.Rooms = map[int]Room{}
	}
	room.ID = len(d.Rooms) + 1
	d.Rooms[room.ID] = room
	if room.ID == 1 {
		d.Entrance = room.ID
	}
	return room
}

// Room returns the room with the given id.
func (d Dungeon) Room(roomID int) (Room, bool) {
	room, ok := d.Rooms[roomID]
	return room, ok
}

// ReplaceRoom swaps in a re-rolled room. The room's id must already exist;
// connections are untouched.
func (d *Dungeon) ReplaceRoom(room Room) error {
	if _, ok := d.Rooms[room.ID]; !ok {
		return fmt.Errorf("replace room %d: %w", room.ID, ErrRoomNotFound)
	}
	d.Rooms[room.ID] = room
	return nil
}

// RoomIDs returns all room ids in ascending order.
func (d Dungeon) RoomIDs() []int {
	ids := make([]int, 0, len(d.Rooms))
	for roomID := range d.Rooms {
		ids = append(ids, roomID)
	}
	sort.Ints(ids)
	return ids
}

// Connect adds an undirected passage between two existing rooms. The edge is
// stored with the lower id first; self-loops and duplicate pairs are
// rejected.
func (d *Dungeon) Connect(a, b int, passage string) error {
	if a == b {
		return fmt.Errorf("connect room %d: %w", a, ErrSelfConnection)
	}
	if _, ok := d.Rooms[a]; !ok {
		return fmt.Errorf("connect room %d: %w", a, ErrRoomNotFound)
	}
	if _, ok := d.Rooms[b]; !ok {
		return fmt.Errorf("connect room %d: %w", b, ErrRoomNotFound)
	}
	if a > b {
		a, b = b, a
	}
	if d.HasConnection(a, b) {
		return fmt.Errorf("connect rooms %d and %d: %w", a, b, ErrDuplicateConnection)
	}
	d.Connections = append(d.Connections, Connection{A: a, B: b, Passage: passage})
	return nil
}

// HasConnection reports whether a passage exists between the unordered pair.
func (d Dungeon) HasConnection(a, b int) bool {
	if a > b {
		a, b = b, a
	}
	for _, conn := range d.Connections {
		if conn.A == a && conn.B == b {
			return true
		}
	}
	return false
}

// Neighbors returns the ids reachable from the room through one passage,
// in ascending order, paired with the passage types.
func (d Dungeon) Neighbors(roomID int) []Connection {
	var out []Connection
	for _, conn := range d.Connections {
		if conn.A == roomID || conn.B == roomID {
			out = append(out, conn)
		}
	}
	return out
}

// Connected reports whether every room is reachable from the entrance.
// Dungeons with zero or one room are trivially connected.
func (d Dungeon) Connected() bool {
	if len(d.Rooms) <= 1 {
		return true
	}
	if _, ok := d.Rooms[d.Entrance]; !ok {
		return false
	}

	adjacency := map[int][]int{}
	for _, conn := range d.Connections {
		adjacency[conn.A] = append(adjacency[conn.A], conn.B)
		adjacency[conn.B] = append(adjacency[conn.B], conn.A)
	}

	visited := mapset.New[int]()
	queue := []int{d.Entrance}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited.Has(current) {
			continue
		}
		visited.Put(current)
		for _, next := range adjacency[current] {
			if !visited.Has(next) {
				queue = append(queue, next)
			}
		}
	}
	return visited.Size() == len(d.Rooms)
}
