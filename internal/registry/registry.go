// Package registry holds the validated tables available to a generation
// session and answers category lookups with theme fallback.
//
// A Registry is immutable after construction and safe for concurrent readers,
// so independent generation calls can share one instance.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/louisbranch/undercroft/internal/core/table"
	"github.com/louisbranch/undercroft/internal/storage"
)

// MissingTableError reports a category with no applicable table for the
// active theme and no default. Fatal to the generation call that needed it.
type MissingTableError struct {
	Category string
	Theme    string
}

func (e *MissingTableError) Error() string {
	if e.Theme == "" {
		return fmt.Sprintf("no table for category %q", e.Category)
	}
	return fmt.Sprintf("no table for category %q (theme %q or default)", e.Category, e.Theme)
}

type categoryKey struct {
	category string
	theme    string
}

// Registry indexes tables by name and by (category, theme).
type Registry struct {
	byName     map[string]*table.Table
	byCategory map[categoryKey]*table.Table
}

// New builds a registry from validated tables. Duplicate names or duplicate
// (category, theme) pairs are configuration errors.
func New(tables ...*table.Table) (*Registry, error) {
	r := &Registry{
		byName:     make(map[string]*table.Table, len(tables)),
		byCategory: make(map[categoryKey]*table.Table, len(tables)),
	}
	for _, t := range tables {
		if t == nil {
			return nil, fmt.Errorf("nil table in registry")
		}
		if _, exists := r.byName[t.Name()]; exists {
			return nil, fmt.Errorf("duplicate table name %q", t.Name())
		}
		key := categoryKey{category: t.Category(), theme: t.Theme()}
		if other, exists := r.byCategory[key]; exists {
			return nil, fmt.Errorf("tables %q and %q both cover category %q theme %q",
				other.Name(), t.Name(), key.category, key.theme)
		}
		r.byName[t.Name()] = t
		r.byCategory[key] = t
	}
	return r, nil
}

// Load builds a registry from every table a store can list.
func Load(ctx context.Context, store storage.TableStore) (*Registry, error) {
	names, err := store.ListTables(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	tables := make([]*table.Table, 0, len(names))
	for _, name := range names {
		t, err := store.LoadTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load table %q: %w", name, err)
		}
		tables = append(tables, t)
	}
	return New(tables...)
}

// Override returns a new registry with extra tables layered on top of this
// one. An extra table replaces any existing table sharing its name or its
// (category, theme) pair, so extensions shadow defaults the way a custom
// table directory does.
func (r *Registry) Override(extras ...*table.Table) (*Registry, error) {
	kept := make([]*table.Table, 0, len(r.byName)+len(extras))
	for _, t := range r.byName {
		shadowed := false
		for _, extra := range extras {
			if extra == nil {
				continue
			}
			if extra.Name() == t.Name() ||
				(extra.Category() == t.Category() && extra.Theme() == t.Theme()) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			kept = append(kept, t)
		}
	}
	return New(append(kept, extras...)...)
}

// Table returns the table with the given name.
func (r *Registry) Table(name string) (*table.Table, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, storage.ErrNotFound)
	}
	return t, nil
}

// Resolve returns the table answering a category under the active theme: the
// theme-specific override when one exists, else the category's default.
func (r *Registry) Resolve(category, theme string) (*table.Table, error) {
	if theme != "" {
		if t, ok := r.byCategory[categoryKey{category: category, theme: theme}]; ok {
			return t, nil
		}
	}
	if t, ok := r.byCategory[categoryKey{category: category}]; ok {
		return t, nil
	}
	return nil, &MissingTableError{Category: category, Theme: theme}
}

// Categories returns the distinct categories with a default table, sorted.
func (r *Registry) Categories() []string {
	seen := map[string]bool{}
	for key := range r.byCategory {
		if key.theme == "" {
			seen[key.category] = true
		}
	}
	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Names returns the table names in a category, sorted. An empty category
// returns every name.
func (r *Registry) Names(category string) []string {
	var out []string
	for name, t := range r.byName {
		if category == "" || t.Category() == category {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of tables held.
func (r *Registry) Len() int { return len(r.byName) }
