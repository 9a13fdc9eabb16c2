package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extension.lua")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestLoadRegistersTablesTriggersAndCategories(t *testing.T) {
	path := writeScript(t, `
undercroft.add_table{
  name = "mood",
  description = "Ambient mood of the room",
  entries = {
    {name = "Oppressive", min = 1, max = 10},
    {name = "Serene", min = 11, max = 19},
    {name = "Shifting", min = 20, max = 20, roll_again = true},
  },
}
undercroft.add_table{
  name = "haunted_mood",
  category = "mood",
  theme = "haunted",
  entries = {
    {name = "Whispers", min = 1, max = 15},
    {name = "Cold spots", min = 16, max = 20},
  },
}
undercroft.add_category("mood")
undercroft.add_trigger("Shifting", "mood")
`)

	ext, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(ext.Tables) != 2 {
		t.Fatalf("Load() tables = %d, want 2", len(ext.Tables))
	}
	mood := ext.Tables[0]
	if mood.Name() != "mood" || mood.Max() != 20 {
		t.Errorf("table = %q max %d, want mood max 20", mood.Name(), mood.Max())
	}
	entries := mood.Entries()
	if !entries[2].Reroll {
		t.Errorf("entry %q Reroll = false, want true", entries[2].Name)
	}
	themed := ext.Tables[1]
	if themed.Category() != "mood" || themed.Theme() != "haunted" {
		t.Errorf("themed table category/theme = %q/%q, want mood/haunted", themed.Category(), themed.Theme())
	}

	if len(ext.Categories) != 1 || ext.Categories[0] != "mood" {
		t.Errorf("categories = %v, want [mood]", ext.Categories)
	}
	if len(ext.Triggers) != 1 || ext.Triggers[0].Feature != "Shifting" || ext.Triggers[0].Table != "mood" {
		t.Errorf("triggers = %v, want Shifting -> mood", ext.Triggers)
	}
}

func TestLoadRejectsGappedTable(t *testing.T) {
	path := writeScript(t, `
undercroft.add_table{
  name = "broken",
  entries = {
    {name = "A", min = 1, max = 5},
    {name = "B", min = 8, max = 20},
  },
}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() with gapped ranges succeeded, want error")
	}
	if !strings.Contains(err.Error(), "invalid table") {
		t.Errorf("Load() error = %v, want invalid table message", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.lua")); err == nil {
		t.Fatal("Load() with missing file succeeded, want error")
	}
}

func TestLoadRequiresEntries(t *testing.T) {
	path := writeScript(t, `undercroft.add_table{name = "empty"}`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() without entries succeeded, want error")
	}
}
