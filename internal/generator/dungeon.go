package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/louisbranch/undercroft/internal/core/dice"
	"github.com/louisbranch/undercroft/internal/dungeon/domain"
	"github.com/louisbranch/undercroft/internal/namegen"
	"github.com/louisbranch/undercroft/internal/registry"
)

// PassageCategory is the table category rolled for each passage between
// connected rooms.
const PassageCategory = "passages"

// Request describes one dungeon generation.
type Request struct {
	// Rooms is the number of rooms to generate; must be at least 1.
	Rooms int
	// Name of the dungeon. Empty picks a themed or random name.
	Name string
	// Theme selects themed table overrides and is recorded on the result.
	Theme string
	// Seed reproduces a generation exactly; zero derives a seed from the
	// clock.
	Seed int64
	// ExtraPassages in [0, 1] scales how many loop passages are added
	// beyond the spanning connections: 0 none, 1 roughly one per room.
	ExtraPassages float64
}

// DungeonGenerator produces connected dungeons from a room generator and a
// passage table.
type DungeonGenerator struct {
	rooms    *RoomGenerator
	registry *registry.Registry

	// Now and NewID override the clock and id source, for tests. Nil uses
	// the real ones.
	Now   func() time.Time
	NewID func() (string, error)
}

// NewDungeonGenerator creates a dungeon generator over a registry and rule
// set.
func NewDungeonGenerator(reg *registry.Registry, profile Profile) *DungeonGenerator {
	return &DungeonGenerator{
		rooms:    NewRoomGenerator(reg, profile),
		registry: reg,
	}
}

// RoomGenerator returns the underlying room generator, for callers that
// produce standalone rooms.
func (g *DungeonGenerator) RoomGenerator() *RoomGenerator {
	return g.rooms
}

// Generate seeds an RNG from the request and runs GenerateWithRng.
func (g *DungeonGenerator) Generate(req Request) (*domain.Dungeon, error) {
	rng, _ := dice.NewSeededRand(req.Seed)
	return g.GenerateWithRng(rng, req)
}

// GenerateWithRng generates a dungeon using the provided random source.
//
// Rooms are generated first and numbered sequentially from 1; room 1 is the
// entrance. Connections are then built incrementally: unconnected rooms are
// taken in ascending id order and each is linked to a uniformly drawn member
// of the already-connected set, with the passage type rolled on the passages
// table. That policy keeps the graph connected by construction and is
// deterministic for a fixed RNG stream. A final pass adds loop passages
// between random already-connected pairs up to the requested density, never
// duplicating a pair.
func (g *DungeonGenerator) GenerateWithRng(rng *rand.Rand, req Request) (*domain.Dungeon, error) {
	if req.Rooms < 1 {
		return nil, &GenerationError{Reason: fmt.Sprintf("room count must be at least 1, got %d", req.Rooms)}
	}
	if req.ExtraPassages < 0 || req.ExtraPassages > 1 {
		return nil, &GenerationError{Reason: fmt.Sprintf("extra passages must be between 0 and 1, got %g", req.ExtraPassages)}
	}

	theme := strings.TrimSpace(req.Theme)
	name, notes := g.resolveName(rng, req.Name, theme)

	dungeon, err := domain.CreateDungeon(domain.CreateDungeonInput{
		Name:  name,
		Theme: theme,
		Notes: notes,
	}, g.Now, g.NewID)
	if err != nil {
		return nil, err
	}

	for i := 0; i < req.Rooms; i++ {
		room, err := g.rooms.GenerateRoom(theme, rng)
		if err != nil {
			return nil, fmt.Errorf("generate room %d: %w", i+1, err)
		}
		dungeon.AddRoom(room)
	}

	if req.Rooms == 1 {
		return &dungeon, nil
	}

	passages, err := g.registry.Resolve(PassageCategory, theme)
	if err != nil {
		return nil, err
	}

	// Spanning pass: room ids are 1..Rooms, room 1 is connected by
	// definition.
	connected := make([]int, 1, req.Rooms)
	connected[0] = dungeon.Entrance
	for next := dungeon.Entrance + 1; next <= req.Rooms; next++ {
		anchor := connected[rng.Intn(len(connected))]
		passage := dice.OnTable(rng, passages).Name
		if err := dungeon.Connect(anchor, next, passage); err != nil {
			return nil, fmt.Errorf("link room %d: %w", next, err)
		}
		connected = append(connected, next)
	}

	// Loop pass.
	extra := int(req.ExtraPassages * float64(req.Rooms))
	maxEdges := req.Rooms * (req.Rooms - 1) / 2
	for added, attempts := 0, 0; added < extra && attempts < 8*extra; attempts++ {
		if len(dungeon.Connections) >= maxEdges {
			break
		}
		a := rng.Intn(req.Rooms) + 1
		b := rng.Intn(req.Rooms) + 1
		if a == b || dungeon.HasConnection(a, b) {
			continue
		}
		passage := dice.OnTable(rng, passages).Name
		if err := dungeon.Connect(a, b, passage); err != nil {
			return nil, fmt.Errorf("loop passage %d-%d: %w", a, b, err)
		}
		added++
	}

	return &dungeon, nil
}

// RegenerateRoom re-rolls a single room, preserving its id and every
// connection that references it. The dungeon's own theme drives table
// selection, like the original generation.
func (g *DungeonGenerator) RegenerateRoom(dungeon *domain.Dungeon, roomID int, rng *rand.Rand) (domain.Room, error) {
	if _, ok := dungeon.Room(roomID); !ok {
		return domain.Room{}, fmt.Errorf("regenerate room %d: %w", roomID, domain.ErrRoomNotFound)
	}
	room, err := g.rooms.GenerateRoom(dungeon.Theme, rng)
	if err != nil {
		return domain.Room{}, fmt.Errorf("regenerate room %d: %w", roomID, err)
	}
	room.ID = roomID
	if err := dungeon.ReplaceRoom(room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// resolveName applies the naming rules for unnamed requests: a themed
// request is named after its theme with an explanatory note, an unthemed one
// draws a random name.
func (g *DungeonGenerator) resolveName(rng *rand.Rand, name, theme string) (string, string) {
	name = strings.TrimSpace(name)
	if name != "" {
		return name, ""
	}
	if theme != "" {
		title := cases.Title(language.English).String(theme)
		return fmt.Sprintf("%s Dungeon", title), fmt.Sprintf("This dungeon has a %s theme.", theme)
	}
	return namegen.DungeonName(rng), ""
}
