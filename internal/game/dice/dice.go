// Package dice implements deterministic dice rolling and formula evaluation
// for the t20-os resolution engine.
package dice

import (
	"errors"
	"math/rand"
)

// ErrInvalidSides indicates a die with a non-positive side count.
var ErrInvalidSides = errors.New("die must have positive sides")

// Roller produces individual die results.
type Roller interface {
	// Roll returns a value in [1, sides].
	Roll(sides int) int
}

// RollFunc adapts a plain function to the Roller interface. Tests use it to
// pin die results.
type RollFunc func(sides int) int

// Roll implements Roller.
func (f RollFunc) Roll(sides int) int {
	return f(sides)
}

type seededRoller struct {
	rng *rand.Rand
}

// NewSeeded returns a Roller that is deterministic with respect to seed.
// Given the same seed and the same sequence of Roll calls, it always
// produces the same results.
func NewSeeded(seed int64) Roller {
	return &seededRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *seededRoller) Roll(sides int) int {
	if sides <= 0 {
		return 0
	}
	return r.rng.Intn(sides) + 1
}

// D20 rolls one twenty-sided die.
func D20(r Roller) int {
	return r.Roll(20)
}
