package generator

import (
	"fmt"

	"github.com/louisbranch/undercroft/internal/registry"
)

// Trigger maps a selected entry name to a follow-up table rolled after the
// primary pass. The target is a category key resolved with the same theme
// fallback as primary categories.
type Trigger struct {
	Feature string
	Table   string
}

// Profile is the declarative rule set for room composition: which categories
// to roll, in which order, and which selections trigger follow-up rolls.
type Profile struct {
	Categories []string
	Triggers   []Trigger
}

// DefaultProfile mirrors the embedded default tables.
func DefaultProfile() Profile {
	return Profile{
		Categories: []string{"main_feature", "size", "shape", "contents", "exits"},
		Triggers: []Trigger{
			{Feature: "Corridor", Table: "corridor_details"},
			{Feature: "Chamber", Table: "chamber_features"},
			{Feature: "Creature", Table: "creature_details"},
			{Feature: "Vault", Table: "vault_contents"},
			{Feature: "Trapped exit", Table: "trap_details"},
		},
	}
}

// Extend returns a copy of the profile with extra categories and triggers
// appended. Categories already present are not duplicated.
func (p Profile) Extend(categories []string, triggers []Trigger) Profile {
	out := Profile{
		Categories: append([]string(nil), p.Categories...),
		Triggers:   append([]Trigger(nil), p.Triggers...),
	}
	for _, category := range categories {
		exists := false
		for _, have := range out.Categories {
			if have == category {
				exists = true
				break
			}
		}
		if !exists {
			out.Categories = append(out.Categories, category)
		}
	}
	out.Triggers = append(out.Triggers, triggers...)
	return out
}

// Validate checks that every category and trigger target has at least a
// default table in the registry, so a themeless generation cannot hit a
// missing table mid-call.
func (p Profile) Validate(reg *registry.Registry) error {
	if len(p.Categories) == 0 {
		return fmt.Errorf("profile has no categories")
	}
	for _, category := range p.Categories {
		if _, err := reg.Resolve(category, ""); err != nil {
			return fmt.Errorf("category %q: %w", category, err)
		}
	}
	for _, trigger := range p.Triggers {
		if trigger.Feature == "" || trigger.Table == "" {
			return fmt.Errorf("trigger %q -> %q: feature and table are required", trigger.Feature, trigger.Table)
		}
		if _, err := reg.Resolve(trigger.Table, ""); err != nil {
			return fmt.Errorf("trigger %q: %w", trigger.Feature, err)
		}
	}
	return nil
}
