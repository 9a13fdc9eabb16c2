// Package file implements table and dungeon storage over plain JSON files,
// the format the original rulebook content ships in.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/louisbranch/undercroft/internal/core/table"
	"github.com/louisbranch/undercroft/internal/storage"
)

// tableDocument is the on-disk table schema.
type tableDocument struct {
	TableInfo struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Category    string `json:"category,omitempty"`
		Theme       string `json:"theme,omitempty"`
	} `json:"table_info"`
	Entries []struct {
		Name      string `json:"name"`
		Min       int    `json:"min"`
		Max       int    `json:"max"`
		RollAgain bool   `json:"roll_again,omitempty"`
	} `json:"entries"`
}

// TableStore reads tables from layered filesystems. Layers are searched in
// order, so a custom directory listed before the packaged defaults overrides
// same-named tables.
type TableStore struct {
	layers []fs.FS
}

// NewTableStore creates a table store over the given layers. At least one
// layer is required.
func NewTableStore(layers ...fs.FS) (*TableStore, error) {
	if len(layers) == 0 {
		return nil, errors.New("at least one table layer is required")
	}
	return &TableStore{layers: layers}, nil
}

// LoadTable reads <name>.json from the first layer that has it and validates
// the content. Missing in every layer is storage.ErrNotFound; malformed
// content is that table's InvalidTableError.
func (s *TableStore) LoadTable(_ context.Context, name string) (*table.Table, error) {
	filename := name + ".json"
	for _, layer := range s.layers {
		data, err := fs.ReadFile(layer, filename)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read table %q: %w", name, err)
		}
		return decodeTable(name, data)
	}
	return nil, fmt.Errorf("table %q: %w", name, storage.ErrNotFound)
}

// ListTables returns the table names visible across all layers, filtered by
// category, sorted. Shadowed copies in later layers are listed once.
func (s *TableStore) ListTables(ctx context.Context, category string) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	for _, layer := range s.layers {
		matches, err := fs.Glob(layer, "*.json")
		if err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		for _, match := range matches {
			name := strings.TrimSuffix(path.Base(match), ".json")
			if seen[name] {
				continue
			}
			seen[name] = true
			if category != "" {
				t, err := s.LoadTable(ctx, name)
				if err != nil {
					return nil, err
				}
				if t.Category() != category {
					continue
				}
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func decodeTable(name string, data []byte) (*table.Table, error) {
	var doc tableDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse table %q: %w", name, err)
	}

	info := table.Info{
		Name:        doc.TableInfo.Name,
		Description: doc.TableInfo.Description,
		Category:    doc.TableInfo.Category,
		Theme:       doc.TableInfo.Theme,
	}
	if info.Name == "" {
		info.Name = name
	}

	entries := make([]table.Entry, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		entries = append(entries, table.Entry{
			Name:   entry.Name,
			Min:    entry.Min,
			Max:    entry.Max,
			Reroll: entry.RollAgain,
		})
	}
	return table.New(info, entries)
}
