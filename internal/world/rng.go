package world

import "math/rand"

// uniformRandom returns a uniformly distributed value in [min, max].
func uniformRandom(min, max int32) int32 {
	if max <= min {
		return min
	}
	return min + rand.Int31n(max-min+1)
}
