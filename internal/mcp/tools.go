package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/undercroft/internal/core/dice"
	"github.com/louisbranch/undercroft/internal/dungeon/domain"
	"github.com/louisbranch/undercroft/internal/export"
	"github.com/louisbranch/undercroft/internal/generator"
)

// RoomPayload is the wire form of a generated room.
type RoomPayload struct {
	ID         int               `json:"id,omitempty" jsonschema:"room identifier within its dungeon"`
	Theme      string            `json:"theme,omitempty" jsonschema:"theme active when the room was rolled"`
	Attributes map[string]string `json:"attributes" jsonschema:"selected entry per category"`
	Features   []string          `json:"features,omitempty" jsonschema:"derived feature strings"`
}

// ConnectionPayload is the wire form of a passage between two rooms.
type ConnectionPayload struct {
	RoomA   int    `json:"room_a" jsonschema:"lower room id of the pair"`
	RoomB   int    `json:"room_b" jsonschema:"higher room id of the pair"`
	Passage string `json:"passage" jsonschema:"passage type"`
}

// DungeonPayload is the wire form of a generated dungeon.
type DungeonPayload struct {
	ID          string              `json:"id" jsonschema:"dungeon identifier"`
	Name        string              `json:"name" jsonschema:"dungeon name"`
	Theme       string              `json:"theme,omitempty" jsonschema:"active theme"`
	Notes       string              `json:"notes,omitempty" jsonschema:"free-form notes"`
	CreatedAt   string              `json:"created_at" jsonschema:"creation time, RFC 3339"`
	Entrance    int                 `json:"entrance" jsonschema:"id of the entrance room"`
	Rooms       []RoomPayload       `json:"rooms" jsonschema:"rooms in id order"`
	Connections []ConnectionPayload `json:"connections,omitempty" jsonschema:"undirected passages"`
}

// EntryPayload is the wire form of one table entry.
type EntryPayload struct {
	Name      string `json:"name" jsonschema:"outcome name"`
	Min       int    `json:"min" jsonschema:"inclusive lower bound"`
	Max       int    `json:"max" jsonschema:"inclusive upper bound"`
	RollAgain bool   `json:"roll_again,omitempty" jsonschema:"source material instructs rolling again"`
}

// DungeonSummaryPayload is one row of a saved-dungeon listing.
type DungeonSummaryPayload struct {
	ID        string `json:"id" jsonschema:"dungeon identifier"`
	Name      string `json:"name" jsonschema:"dungeon name"`
	Theme     string `json:"theme,omitempty" jsonschema:"active theme"`
	Rooms     int    `json:"rooms" jsonschema:"room count"`
	CreatedAt string `json:"created_at" jsonschema:"creation time, RFC 3339"`
}

// GenerateRoomInput selects the theme and seed for a single room roll.
type GenerateRoomInput struct {
	Theme string `json:"theme,omitempty" jsonschema:"optional theme for table overrides"`
	Seed  int64  `json:"seed,omitempty" jsonschema:"seed for reproducible rolls, 0 draws one"`
}

// GenerateRoomResult carries the rolled room and its rendered text.
type GenerateRoomResult struct {
	Room RoomPayload `json:"room"`
	Text string      `json:"text" jsonschema:"human-readable rendering"`
	Seed int64       `json:"seed" jsonschema:"seed actually used"`
}

// GenerateDungeonInput describes a full dungeon generation request.
type GenerateDungeonInput struct {
	Rooms         int     `json:"rooms" jsonschema:"number of rooms, at least 1"`
	Name          string  `json:"name,omitempty" jsonschema:"dungeon name, empty picks one"`
	Theme         string  `json:"theme,omitempty" jsonschema:"optional theme for table overrides"`
	Seed          int64   `json:"seed,omitempty" jsonschema:"seed for reproducible generation, 0 draws one"`
	ExtraPassages float64 `json:"extra_passages,omitempty" jsonschema:"loop passage density in [0,1]"`
	Save          bool    `json:"save,omitempty" jsonschema:"persist the dungeon when a store is configured"`
}

// GenerateDungeonResult carries the generated dungeon and its rendered text.
type GenerateDungeonResult struct {
	Dungeon DungeonPayload `json:"dungeon"`
	Text    string         `json:"text" jsonschema:"human-readable rendering"`
	Seed    int64          `json:"seed" jsonschema:"seed actually used"`
	Saved   bool           `json:"saved" jsonschema:"whether the dungeon was persisted"`
}

// RegenerateRoomInput identifies the saved room to re-roll.
type RegenerateRoomInput struct {
	DungeonID string `json:"dungeon_id" jsonschema:"saved dungeon identifier"`
	RoomID    int    `json:"room_id" jsonschema:"room to re-roll"`
	Seed      int64  `json:"seed,omitempty" jsonschema:"seed for reproducible rolls, 0 draws one"`
}

// RegenerateRoomResult carries the replacement room.
type RegenerateRoomResult struct {
	Room RoomPayload `json:"room"`
	Text string      `json:"text" jsonschema:"human-readable rendering"`
}

// RollDiceInput describes a plain dice roll.
type RollDiceInput struct {
	Dice string `json:"dice" jsonschema:"dice notation, e.g. 2d6 or d20 1d100"`
	Seed int64  `json:"seed,omitempty" jsonschema:"seed for reproducible rolls, 0 draws one"`
}

// RollPayload is the wire form of one rolled die group.
type RollPayload struct {
	Sides   int   `json:"sides" jsonschema:"number of sides per die"`
	Results []int `json:"results" jsonschema:"individual die values"`
	Total   int   `json:"total" jsonschema:"sum of this group"`
}

// RollDiceResult carries the rolled groups and overall total.
type RollDiceResult struct {
	Rolls []RollPayload `json:"rolls" jsonschema:"groups in notation order"`
	Total int           `json:"total" jsonschema:"sum across all dice"`
	Seed  int64         `json:"seed" jsonschema:"seed actually used"`
}

// ListTablesInput optionally narrows the listing to one category.
type ListTablesInput struct {
	Category string `json:"category,omitempty" jsonschema:"restrict to tables of this category"`
}

// ListTablesResult carries table names.
type ListTablesResult struct {
	Names []string `json:"names" jsonschema:"table names, sorted"`
}

// GetTableInput names the table to fetch.
type GetTableInput struct {
	Name string `json:"name" jsonschema:"table name"`
}

// GetTableResult carries one full table.
type GetTableResult struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category"`
	Theme       string         `json:"theme,omitempty"`
	Entries     []EntryPayload `json:"entries"`
}

// ListDungeonsInput has no parameters.
type ListDungeonsInput struct{}

// ListDungeonsResult carries saved dungeon summaries.
type ListDungeonsResult struct {
	Dungeons []DungeonSummaryPayload `json:"dungeons" jsonschema:"saved dungeons, newest first"`
}

// GetDungeonInput names the dungeon to fetch.
type GetDungeonInput struct {
	ID string `json:"id" jsonschema:"dungeon identifier"`
}

// GetDungeonResult carries one saved dungeon.
type GetDungeonResult struct {
	Dungeon DungeonPayload `json:"dungeon"`
	Text    string         `json:"text" jsonschema:"human-readable rendering"`
}

// DeleteDungeonInput names the dungeon to delete.
type DeleteDungeonInput struct {
	ID string `json:"id" jsonschema:"dungeon identifier"`
}

// DeleteDungeonResult confirms the deletion.
type DeleteDungeonResult struct {
	Deleted bool `json:"deleted"`
}

func (s *Server) generateRoom(_ context.Context, _ *mcp.CallToolRequest, input GenerateRoomInput) (*mcp.CallToolResult, GenerateRoomResult, error) {
	rng, seed := dice.NewSeededRand(input.Seed)
	room, err := s.generator.RoomGenerator().GenerateRoom(input.Theme, rng)
	if err != nil {
		return nil, GenerateRoomResult{}, err
	}
	text, err := s.renderRoom(room)
	if err != nil {
		return nil, GenerateRoomResult{}, err
	}
	return nil, GenerateRoomResult{Room: roomPayload(room), Text: text, Seed: seed}, nil
}

func (s *Server) generateDungeon(ctx context.Context, _ *mcp.CallToolRequest, input GenerateDungeonInput) (*mcp.CallToolResult, GenerateDungeonResult, error) {
	rng, seed := dice.NewSeededRand(input.Seed)
	dungeon, err := s.generator.GenerateWithRng(rng, generator.Request{
		Rooms:         input.Rooms,
		Name:          input.Name,
		Theme:         input.Theme,
		ExtraPassages: input.ExtraPassages,
	})
	if err != nil {
		return nil, GenerateDungeonResult{}, err
	}

	saved := false
	if input.Save && s.dungeons != nil {
		if err := s.dungeons.Put(ctx, *dungeon); err != nil {
			return nil, GenerateDungeonResult{}, err
		}
		saved = true
	}

	text, err := s.renderDungeon(*dungeon)
	if err != nil {
		return nil, GenerateDungeonResult{}, err
	}
	return nil, GenerateDungeonResult{
		Dungeon: dungeonPayload(*dungeon),
		Text:    text,
		Seed:    seed,
		Saved:   saved,
	}, nil
}

func (s *Server) regenerateRoom(ctx context.Context, _ *mcp.CallToolRequest, input RegenerateRoomInput) (*mcp.CallToolResult, RegenerateRoomResult, error) {
	dungeon, err := s.dungeons.Get(ctx, input.DungeonID)
	if err != nil {
		return nil, RegenerateRoomResult{}, err
	}
	rng, _ := dice.NewSeededRand(input.Seed)
	room, err := s.generator.RegenerateRoom(&dungeon, input.RoomID, rng)
	if err != nil {
		return nil, RegenerateRoomResult{}, err
	}
	if err := s.dungeons.Put(ctx, dungeon); err != nil {
		return nil, RegenerateRoomResult{}, err
	}
	text, err := s.renderRoom(room)
	if err != nil {
		return nil, RegenerateRoomResult{}, err
	}
	return nil, RegenerateRoomResult{Room: roomPayload(room), Text: text}, nil
}

func (s *Server) rollDice(_ context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, RollDiceResult, error) {
	specs, err := dice.ParseSpecs(input.Dice)
	if err != nil {
		return nil, RollDiceResult{}, err
	}
	rng, seed := dice.NewSeededRand(input.Seed)
	rolled, err := dice.RollWithRng(rng, specs)
	if err != nil {
		return nil, RollDiceResult{}, err
	}
	result := RollDiceResult{Total: rolled.Total, Seed: seed}
	for _, roll := range rolled.Rolls {
		result.Rolls = append(result.Rolls, RollPayload{
			Sides:   roll.Sides,
			Results: roll.Results,
			Total:   roll.Total,
		})
	}
	return nil, result, nil
}

func (s *Server) listTables(_ context.Context, _ *mcp.CallToolRequest, input ListTablesInput) (*mcp.CallToolResult, ListTablesResult, error) {
	return nil, ListTablesResult{Names: s.registry.Names(input.Category)}, nil
}

func (s *Server) getTable(_ context.Context, _ *mcp.CallToolRequest, input GetTableInput) (*mcp.CallToolResult, GetTableResult, error) {
	tbl, err := s.registry.Table(input.Name)
	if err != nil {
		return nil, GetTableResult{}, err
	}
	result := GetTableResult{
		Name:        tbl.Name(),
		Description: tbl.Description(),
		Category:    tbl.Category(),
		Theme:       tbl.Theme(),
	}
	for _, entry := range tbl.Entries() {
		result.Entries = append(result.Entries, EntryPayload{
			Name:      entry.Name,
			Min:       entry.Min,
			Max:       entry.Max,
			RollAgain: entry.Reroll,
		})
	}
	return nil, result, nil
}

func (s *Server) listDungeons(ctx context.Context, _ *mcp.CallToolRequest, _ ListDungeonsInput) (*mcp.CallToolResult, ListDungeonsResult, error) {
	summaries, err := s.dungeons.List(ctx)
	if err != nil {
		return nil, ListDungeonsResult{}, err
	}
	result := ListDungeonsResult{}
	for _, summary := range summaries {
		result.Dungeons = append(result.Dungeons, DungeonSummaryPayload{
			ID:        summary.ID,
			Name:      summary.Name,
			Theme:     summary.Theme,
			Rooms:     summary.Rooms,
			CreatedAt: summary.CreatedAt.Format(time.RFC3339),
		})
	}
	return nil, result, nil
}

func (s *Server) getDungeon(ctx context.Context, _ *mcp.CallToolRequest, input GetDungeonInput) (*mcp.CallToolResult, GetDungeonResult, error) {
	dungeon, err := s.dungeons.Get(ctx, input.ID)
	if err != nil {
		return nil, GetDungeonResult{}, err
	}
	text, err := s.renderDungeon(dungeon)
	if err != nil {
		return nil, GetDungeonResult{}, err
	}
	return nil, GetDungeonResult{Dungeon: dungeonPayload(dungeon), Text: text}, nil
}

func (s *Server) deleteDungeon(ctx context.Context, _ *mcp.CallToolRequest, input DeleteDungeonInput) (*mcp.CallToolResult, DeleteDungeonResult, error) {
	if err := s.dungeons.Delete(ctx, input.ID); err != nil {
		return nil, DeleteDungeonResult{}, err
	}
	return nil, DeleteDungeonResult{Deleted: true}, nil
}

func (s *Server) renderRoom(room domain.Room) (string, error) {
	var out strings.Builder
	if err := export.New(s.locale).ExportRoom(&out, room); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (s *Server) renderDungeon(dungeon domain.Dungeon) (string, error) {
	var out strings.Builder
	if err := export.New(s.locale).Export(&out, dungeon); err != nil {
		return "", err
	}
	return out.String(), nil
}

func roomPayload(room domain.Room) RoomPayload {
	return RoomPayload{
		ID:         room.ID,
		Theme:      room.Theme,
		Attributes: room.Attributes,
		Features:   room.Features,
	}
}

func dungeonPayload(dungeon domain.Dungeon) DungeonPayload {
	payload := DungeonPayload{
		ID:        dungeon.ID,
		Name:      dungeon.Name,
		Theme:     dungeon.Theme,
		Notes:     dungeon.Notes,
		CreatedAt: dungeon.CreatedAt.Format(time.RFC3339),
		Entrance:  dungeon.Entrance,
	}
	for _, roomID := range dungeon.RoomIDs() {
		payload.Rooms = append(payload.Rooms, roomPayload(dungeon.Rooms[roomID]))
	}
	for _, conn := range dungeon.Connections {
		payload.Connections = append(payload.Connections, ConnectionPayload{
			RoomA:   conn.A,
			RoomB:   conn.B,
			Passage: conn.Passage,
		})
	}
	return payload
}
