// Package namegen produces dungeon names for generations that arrive without
// one.
package namegen

import (
	"fmt"
	"math/rand"
)

var dungeonAdjectives = []string{
	"Sunken", "Shattered", "Silent", "Forgotten", "Gilded",
	"Hollow", "Buried", "Rusting", "Luminous", "Broken",
	"Endless", "Sealed", "Drowned", "Whispering", "Ancient",
}

var dungeonNouns = []string{
	"Vault", "Undercroft", "Reliquary", "Warrens", "Machinery",
	"Catacombs", "Cistern", "Foundry", "Archive", "Labyrinth",
	"Sanctum", "Depths", "Galleries", "Conduits", "Ruin",
}

// DungeonName generates a name like "The Sunken Vault" from the given random
// source.
func DungeonName(rng *rand.Rand) string {
	adj := dungeonAdjectives[rng.Intn(len(dungeonAdjectives))]
	noun := dungeonNouns[rng.Intn(len(dungeonNouns))]
	return fmt.Sprintf("The %s %s", adj, noun)
}
