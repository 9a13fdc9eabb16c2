package dice

import (
	"math/rand"

	"github.com/louisbranch/undercroft/internal/core/table"
)

// OnTable draws uniformly in [1, t.Max()] and returns the entry whose range
// contains the draw. A validated table resolves every value in its domain,
// so OnTable cannot fail; the same RNG stream reproduces the same sequence
// of picks.
func OnTable(rng *rand.Rand, t *table.Table) table.Entry {
	roll := rollDie(rng, t.Max())
	entry, _ := t.Resolve(roll)
	return entry
}
