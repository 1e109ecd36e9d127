package game

import "errors"

var ErrInvalidMatrix = errors.New("payoff matrix must satisfy T > R > P > S")

type Move uint8

const (
	Cooperate Move = iota
	Defect
)

func (m Move) String() string {
	switch m {
	case Cooperate:
		return "Cooperate"
	case Defect:
		return "Defect"
	default:
		return "Unknown"
	}
}

// PayoffMatrix holds the four canonical single-turn payoffs of the prisoner's
// dilemma: temptation, reward, punishment and sucker.
type PayoffMatrix struct {
	T float64 `json:"t" toml:"t"`
	R float64 `json:"r" toml:"r"`
	P float64 `json:"p" toml:"p"`
	S float64 `json:"s" toml:"s"`
}

// DefaultMatrix is the textbook (5, 3, 1, 0) dilemma.
func DefaultMatrix() PayoffMatrix {
	return PayoffMatrix{T: 5, R: 3, P: 1, S: 0}
}

func (pm PayoffMatrix) Validate() error {
	if !(pm.T > pm.R && pm.R > pm.P && pm.P > pm.S) {
		return ErrInvalidMatrix
	}

	return nil
}

// Payoff returns the single-turn payoffs for players a and b.
func (pm PayoffMatrix) Payoff(a, b Move) (float64, float64) {
	switch {
	case a == Cooperate && b == Cooperate:
		return pm.R, pm.R
	case a == Defect && b == Defect:
		return pm.P, pm.P
	case a == Defect:
		return pm.T, pm.S
	default:
		return pm.S, pm.T
	}
}
