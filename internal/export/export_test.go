package export

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/undercroft/internal/dungeon/domain"
)

func exportTestDungeon() domain.Dungeon {
	return domain.Dungeon{
		ID:        "dungeon-1",
		Name:      "The Gilded Cistern",
		Theme:     "flooded",
		Notes:     "This dungeon has a flooded theme.",
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Entrance:  1,
		Rooms: map[int]domain.Room{
			1: {
				ID:         1,
				Attributes: map[string]string{"main_feature": "Chamber", "size": "Closet-sized"},
				Features:   []string{"A dormant automaton"},
			},
			2: {
				ID:         2,
				Attributes: map[string]string{"main_feature": "Corridor"},
			},
		},
		Connections: []domain.Connection{
			{A: 1, B: 2, Passage: "Waist-deep channel"},
		},
	}
}

func TestExportEnglish(t *testing.T) {
	var out strings.Builder
	if err := New(language.AmericanEnglish).Export(&out, exportTestDungeon()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Dungeon: The Gilded Cistern",
		"Created: 2026-03-14T09:26:53Z",
		"Theme: flooded",
		"Rooms: 2",
		"Notes: This dungeon has a flooded theme.",
		"Room 1 (entrance):",
		"Main Feature: Chamber",
		"Size: Closet-sized",
		"Features:",
		"- A dormant automaton",
		"Room 2:",
		"Passages:",
		"- to room 2 via Waist-deep channel",
		"- to room 1 via Waist-deep channel",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Export() output missing %q:\n%s", want, got)
		}
	}
}

func TestExportBrazilianPortuguese(t *testing.T) {
	var out strings.Builder
	if err := New(language.MustParse("pt-BR")).Export(&out, exportTestDungeon()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Masmorra: The Gilded Cistern",
		"Salas: 2",
		"Sala 1 (entrada):",
		"Passagens:",
		"para a sala 2 por Waist-deep channel",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Export() output missing %q:\n%s", want, got)
		}
	}
}

func TestExportRoomWithoutID(t *testing.T) {
	var out strings.Builder
	room := domain.Room{Attributes: map[string]string{"shape": "Hexagon"}}
	if err := New(language.AmericanEnglish).ExportRoom(&out, room); err != nil {
		t.Fatalf("ExportRoom() error = %v", err)
	}

	got := out.String()
	if strings.Contains(got, "Room") {
		t.Errorf("ExportRoom() printed a room header for an id-less room:\n%s", got)
	}
	if !strings.Contains(got, "Shape: Hexagon") {
		t.Errorf("ExportRoom() output missing attribute line:\n%s", got)
	}
}
