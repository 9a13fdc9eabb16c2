// Package table defines the weighted range tables that drive dungeon
// generation.
//
// A table partitions a contiguous integer domain [1, max] into named entries,
// each owning a closed sub-range. Rolling a number in the domain resolves to
// exactly one entry, which is what makes a table usable for weighted random
// selection: wider ranges are proportionally more likely.
//
// # Validation
//
// Tables are validated once, at construction. New rejects empty tables,
// inverted ranges, overlaps, and gaps, so resolution never fails for a value
// inside the domain. Callers holding a *Table can rely on the partition
// invariant without re-checking it per roll.
package table

import (
	"fmt"
	"sort"
	"strings"
)

// Entry is one named outcome within a table, owning the closed range
// [Min, Max] of the table's domain.
type Entry struct {
	Name string
	Min  int
	Max  int

	// Reroll marks entries whose source material instructs the reader to
	// roll again. It is carried as data for renderers; resolution itself
	// never loops.
	Reroll bool
}

// Info describes a table without its entries.
type Info struct {
	Name        string
	Description string

	// Category groups tables that answer the same generation question
	// (size, shape, contents, ...). Empty Category defaults to Name.
	Category string

	// Theme marks a themed override of the category's default table.
	// Empty Theme marks the default.
	Theme string
}

// InvalidTableError reports a table whose entries do not partition the
// domain, or whose metadata is unusable. Detected at construction; fatal to
// that table.
type InvalidTableError struct {
	Table  string
	Reason string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table %q: %s", e.Table, e.Reason)
}

// Table is an immutable, validated range table. Entries are held in
// ascending range order and collectively cover [1, Max] with no overlap.
type Table struct {
	info    Info
	entries []Entry
}

// New validates entries against the partition invariant and returns an
// immutable table. Entries may be given in any order; they are stored sorted
// by range. Category defaults to the table name when absent.
func New(info Info, entries []Entry) (*Table, error) {
	info.Name = strings.TrimSpace(info.Name)
	if info.Name == "" {
		return nil, &InvalidTableError{Table: info.Name, Reason: "missing name"}
	}
	if info.Category == "" {
		info.Category = info.Name
	}
	if len(entries) == 0 {
		return nil, &InvalidTableError{Table: info.Name, Reason: "no entries"}
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	for i, entry := range sorted {
		if entry.Min < 1 {
			return nil, &InvalidTableError{
				Table:  info.Name,
				Reason: fmt.Sprintf("entry %q: min %d below 1, domain starts at 1", entry.Name, entry.Min),
			}
		}
		if entry.Min > entry.Max {
			return nil, &InvalidTableError{
				Table:  info.Name,
				Reason: fmt.Sprintf("entry %q: min %d greater than max %d", entry.Name, entry.Min, entry.Max),
			}
		}
		want := 1
		if i > 0 {
			want = sorted[i-1].Max + 1
		}
		switch {
		case entry.Min < want:
			return nil, &InvalidTableError{
				Table:  info.Name,
				Reason: fmt.Sprintf("entry %q: range %d-%d overlaps %d-%d", entry.Name, entry.Min, entry.Max, sorted[i-1].Min, sorted[i-1].Max),
			}
		case entry.Min > want:
			return nil, &InvalidTableError{
				Table:  info.Name,
				Reason: fmt.Sprintf("gap in domain: no entry covers %d", want),
			}
		}
	}

	return &Table{info: info, entries: sorted}, nil
}

// Name returns the table's unique name.
func (t *Table) Name() string { return t.info.Name }

// Description returns the table's human-readable description.
func (t *Table) Description() string { return t.info.Description }

// Category returns the generation category this table answers.
func (t *Table) Category() string { return t.info.Category }

// Theme returns the theme this table overrides, or "" for a default table.
func (t *Table) Theme() string { return t.info.Theme }

// Info returns a copy of the table's metadata.
func (t *Table) Info() Info { return t.info }

// Max returns the upper bound of the table's roll domain.
func (t *Table) Max() int { return t.entries[len(t.entries)-1].Max }

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in ascending range order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Resolve returns the entry whose range contains roll. The second return is
// false only when roll falls outside [1, Max]; every value inside the domain
// of a validated table resolves.
func (t *Table) Resolve(roll int) (Entry, bool) {
	if roll < 1 || roll > t.Max() {
		return Entry{}, false
	}
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].Max >= roll })
	return t.entries[i], true
}
