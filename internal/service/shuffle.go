package service

import (
	"math/rand/v2"
)

// shuffle permutes qs in place with Fisher–Yates.
func shuffle[T any](qs []T, r *rand.Rand) {
	for i := len(qs) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
