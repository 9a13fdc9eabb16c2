// Package export renders generated dungeons as plain text, with labels
// localized through x/text message catalogs.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/undercroft/internal/dungeon/domain"
)

// Exporter writes dungeons and rooms in the console format of the original
// rulebook tooling. The zero value is not usable; construct with New.
type Exporter struct {
	printer *message.Printer
	caser   cases.Caser
}

// New creates an exporter for the given locale tag. Unknown locales fall
// back to the base English strings through the message catalog's matcher.
func New(tag language.Tag) *Exporter {
	return &Exporter{
		printer: message.NewPrinter(tag),
		caser:   cases.Title(tag),
	}
}

// Export writes the full dungeon: a header with name, creation time, room
// count and notes, then each room in id order with its passages.
func (e *Exporter) Export(w io.Writer, dungeon domain.Dungeon) error {
	if _, err := e.printer.Fprintf(w, "Dungeon: %s", dungeon.Name); err != nil {
		return fmt.Errorf("export dungeon %s: %w", dungeon.ID, err)
	}
	fmt.Fprintln(w)
	e.printer.Fprintf(w, "Created: %s", dungeon.CreatedAt.Format(time.RFC3339))
	fmt.Fprintln(w)
	if dungeon.Theme != "" {
		e.printer.Fprintf(w, "Theme: %s", dungeon.Theme)
		fmt.Fprintln(w)
	}
	e.printer.Fprintf(w, "Rooms: %d", len(dungeon.Rooms))
	fmt.Fprintln(w)
	if dungeon.Notes != "" {
		e.printer.Fprintf(w, "Notes: %s", dungeon.Notes)
		fmt.Fprintln(w)
	}

	for _, roomID := range dungeon.RoomIDs() {
		fmt.Fprintln(w)
		room := dungeon.Rooms[roomID]
		if roomID == dungeon.Entrance {
			e.printer.Fprintf(w, "Room %d (entrance):", roomID)
		} else {
			e.printer.Fprintf(w, "Room %d:", roomID)
		}
		fmt.Fprintln(w)
		e.writeRoomBody(w, room)
		e.writePassages(w, dungeon, roomID)
	}
	return nil
}

// ExportRoom writes a single standalone room.
func (e *Exporter) ExportRoom(w io.Writer, room domain.Room) error {
	if room.ID > 0 {
		if _, err := e.printer.Fprintf(w, "Room %d:", room.ID); err != nil {
			return fmt.Errorf("export room %d: %w", room.ID, err)
		}
		fmt.Fprintln(w)
	}
	e.writeRoomBody(w, room)
	return nil
}

func (e *Exporter) writeRoomBody(w io.Writer, room domain.Room) {
	for _, category := range room.Categories() {
		fmt.Fprintf(w, "  %s: %s\n", e.categoryLabel(category), room.Attributes[category])
	}
	if len(room.Features) > 0 {
		fmt.Fprint(w, "  ")
		e.printer.Fprintf(w, "Features:")
		fmt.Fprintln(w)
		for _, feature := range room.Features {
			fmt.Fprintf(w, "    - %s\n", feature)
		}
	}
}

func (e *Exporter) writePassages(w io.Writer, dungeon domain.Dungeon, roomID int) {
	neighbors := dungeon.Neighbors(roomID)
	if len(neighbors) == 0 {
		return
	}
	fmt.Fprint(w, "  ")
	e.printer.Fprintf(w, "Passages:")
	fmt.Fprintln(w)
	for _, conn := range neighbors {
		other := conn.A
		if other == roomID {
			other = conn.B
		}
		fmt.Fprint(w, "    - ")
		e.printer.Fprintf(w, "to room %d via %s", other, conn.Passage)
		fmt.Fprintln(w)
	}
}

// categoryLabel turns a table category key into a display label: underscores
// become spaces and the result is title-cased for the locale.
func (e *Exporter) categoryLabel(category string) string {
	return e.caser.String(strings.ReplaceAll(category, "_", " "))
}
