package pricing

import (
	"math"
	"math/rand"
)

// WalkVolatility bounds the per-step perturbation of the simulated walk.
const WalkVolatility = 0.001

// SimulateWalk applies a bounded symmetric random perturbation to a price.
// It returns the new price rounded to two decimals and the applied delta.
// This is cosmetic realism for mark-to-market between live refreshes, not a
// model of market microstructure.
func SimulateWalk(price float64) (newPrice, delta float64) {
	delta = (rand.Float64() - 0.5) * 2 * WalkVolatility * price
	newPrice = Round2(price + delta)
	return newPrice, delta
}

// Round2 rounds a price to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
