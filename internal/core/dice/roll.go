// Package dice implements the random draws behind dungeon generation: plain
// dice rolls and weighted selection over range tables.
package dice

import (
	"errors"
	"math/rand"
)

// ErrMissingDice indicates a roll request had no dice specified.
var ErrMissingDice = errors.New("at least one die must be provided")

// ErrInvalidDiceSpec indicates a die specification has invalid fields.
var ErrInvalidDiceSpec = errors.New("dice must have positive sides and count")

// Spec describes one group of identical dice, e.g. {Sides: 6, Count: 2} for
// 2d6.
type Spec struct {
	Sides int
	Count int
}

// Roll holds the outcome of a single Spec: one value per die plus their sum.
type Roll struct {
	Sides   int
	Results []int
	Total   int
}

// Request describes a full roll: the dice to throw and the seed that makes
// the throw reproducible.
type Request struct {
	Dice []Spec
	Seed int64
}

// Result aggregates the rolls of a request in spec order.
type Result struct {
	Rolls []Roll
	Total int
}

// RollDice rolls dice based on the provided request.
//
// RollDice is deterministic with respect to Request.Seed: the same seed and
// the same Dice slice always produce the same Result. Specs are processed in
// slice order and Result.Rolls mirrors that order. Result.Total is the sum
// of every die rolled across the request.
func RollDice(request Request) (Result, error) {
	if len(request.Dice) == 0 {
		return Result{}, ErrMissingDice
	}
	rng := rand.New(rand.NewSource(request.Seed))
	return RollWithRng(rng, request.Dice)
}

// RollWithRng rolls dice using a provided random source. Callers that chain
// several draws off one seed use this form directly.
func RollWithRng(rng *rand.Rand, specs []Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}

	rolls := make([]Roll, 0, len(specs))
	total := 0

	for _, spec := range specs {
		if spec.Sides <= 0 || spec.Count <= 0 {
			return Result{}, ErrInvalidDiceSpec
		}

		results := make([]int, spec.Count)
		rollTotal := 0
		for i := 0; i < spec.Count; i++ {
			value := rollDie(rng, spec.Sides)
			results[i] = value
			rollTotal += value
		}

		rolls = append(rolls, Roll{
			Sides:   spec.Sides,
			Results: results,
			Total:   rollTotal,
		})
		total += rollTotal
	}

	return Result{
		Rolls: rolls,
		Total: total,
	}, nil
}

// rollDie rolls a single die with the provided number of sides.
func rollDie(rng *rand.Rand, sides int) int {
	return rng.Intn(sides) + 1
}
