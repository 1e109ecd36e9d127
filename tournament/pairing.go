package tournament

import (
	"fmt"
	"math/rand"
)

// Pairing selects which agent pairs play each round. The policy is fixed per
// deployment.
type Pairing uint8

const (
	// PairRoundRobin plays every unordered pair once per round.
	PairRoundRobin Pairing = iota
	// PairRandom draws one random perfect matching per round. With an odd
	// agent count one agent sits the round out with its score unchanged; it
	// remains eligible for training selection.
	PairRandom
)

func (p Pairing) String() string {
	switch p {
	case PairRoundRobin:
		return "round-robin"
	case PairRandom:
		return "random"
	default:
		return "unknown"
	}
}

func ParsePairing(s string) (Pairing, error) {
	switch s {
	case "round-robin", "":
		return PairRoundRobin, nil
	case "random":
		return PairRandom, nil
	default:
		return 0, fmt.Errorf("unknown pairing policy %q", s)
	}
}

type pair struct {
	a int
	b int
}

func (p Pairing) pairs(ids []int, rng *rand.Rand) []pair {
	switch p {
	case PairRandom:
		shuffled := make([]int, len(ids))
		copy(shuffled, ids)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		out := make([]pair, 0, len(shuffled)/2)
		for i := 0; i+1 < len(shuffled); i += 2 {
			out = append(out, pair{a: shuffled[i], b: shuffled[i+1]})
		}

		return out
	default:
		out := make([]pair, 0, len(ids)*(len(ids)-1)/2)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				out = append(out, pair{a: ids[i], b: ids[j]})
			}
		}

		return out
	}
}
