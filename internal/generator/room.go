// Package generator composes rooms from weighted tables and links them into
// connected dungeons.
//
// Both generators consume randomness only through the *rand.Rand handed to
// them, so a fixed seed reproduces a generation exactly. Registries are
// read-only; a generator holds no mutable state between calls.
package generator

import (
	"math/rand"

	"github.com/louisbranch/undercroft/internal/core/dice"
	"github.com/louisbranch/undercroft/internal/dungeon/domain"
	"github.com/louisbranch/undercroft/internal/registry"
)

// RoomGenerator builds single rooms by rolling once per configured category,
// then applying feature triggers.
type RoomGenerator struct {
	registry *registry.Registry
	profile  Profile
}

// NewRoomGenerator creates a room generator over a registry and rule set.
func NewRoomGenerator(reg *registry.Registry, profile Profile) *RoomGenerator {
	return &RoomGenerator{registry: reg, profile: profile}
}

// GenerateRoom rolls one entry per configured category, using the theme's
// override table where one exists, then evaluates feature triggers against
// the selections. Each trigger fires at most once per feature name and rolls
// its table a single time; the drawn entry name becomes a room feature.
//
// The returned room has no id; the id is assigned when the room joins a
// dungeon. A category or fired trigger with no applicable table fails the
// call with a MissingTableError.
func (g *RoomGenerator) GenerateRoom(theme string, rng *rand.Rand) (domain.Room, error) {
	attributes := make(map[string]string, len(g.profile.Categories))
	for _, category := range g.profile.Categories {
		tbl, err := g.registry.Resolve(category, theme)
		if err != nil {
			return domain.Room{}, err
		}
		attributes[category] = dice.OnTable(rng, tbl).Name
	}

	var features []string
	fired := map[string]bool{}
	for _, category := range g.profile.Categories {
		selected := attributes[category]
		for _, trigger := range g.profile.Triggers {
			if trigger.Feature != selected || fired[trigger.Feature] {
				continue
			}
			tbl, err := g.registry.Resolve(trigger.Table, theme)
			if err != nil {
				return domain.Room{}, err
			}
			fired[trigger.Feature] = true
			feature := dice.OnTable(rng, tbl).Name
			if !containsString(features, feature) {
				features = append(features, feature)
			}
		}
	}

	return domain.Room{
		Theme:      theme,
		Attributes: attributes,
		Features:   features,
	}, nil
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
