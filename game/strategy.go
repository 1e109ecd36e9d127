package game

import (
	"fmt"
	"math/rand"
)

// Strategy produces the next move of an iterated prisoner's dilemma agent.
// Implementations must be stateless across calls: all memory flows through
// the two histories. The rng carries the per-agent per-round seed so that
// stochastic strategies stay reproducible.
type Strategy interface {
	Name() string
	NextMove(own, opponent []Move, rng *rand.Rand) Move
}

// The built-in catalogue covers the memory-one classics plus Random.

type TitForTat struct{}

func (TitForTat) Name() string { return "tit-for-tat" }

func (TitForTat) NextMove(_, opponent []Move, _ *rand.Rand) Move {
	if len(opponent) == 0 {
		return Cooperate
	}

	return opponent[len(opponent)-1]
}

type SuspiciousTitForTat struct{}

func (SuspiciousTitForTat) Name() string { return "suspicious-tit-for-tat" }

func (SuspiciousTitForTat) NextMove(_, opponent []Move, _ *rand.Rand) Move {
	if len(opponent) == 0 {
		return Defect
	}

	return opponent[len(opponent)-1]
}

type AlwaysCooperate struct{}

func (AlwaysCooperate) Name() string { return "always-cooperate" }

func (AlwaysCooperate) NextMove(_, _ []Move, _ *rand.Rand) Move { return Cooperate }

type AlwaysDefect struct{}

func (AlwaysDefect) Name() string { return "always-defect" }

func (AlwaysDefect) NextMove(_, _ []Move, _ *rand.Rand) Move { return Defect }

// WinStayLoseShift repeats its previous move after a good outcome (opponent
// cooperated) and flips it otherwise. Also known as Pavlov.
type WinStayLoseShift struct{}

func (WinStayLoseShift) Name() string { return "win-stay-lose-shift" }

func (WinStayLoseShift) NextMove(own, opponent []Move, _ *rand.Rand) Move {
	if len(own) == 0 {
		return Cooperate
	}
	last := own[len(own)-1]
	if opponent[len(opponent)-1] == Cooperate {
		return last
	}
	if last == Cooperate {
		return Defect
	}

	return Cooperate
}

// GrimTrigger cooperates until the opponent defects once, then defects
// forever.
type GrimTrigger struct{}

func (GrimTrigger) Name() string { return "grim-trigger" }

func (GrimTrigger) NextMove(_, opponent []Move, _ *rand.Rand) Move {
	for _, m := range opponent {
		if m == Defect {
			return Defect
		}
	}

	return Cooperate
}

// Random cooperates with probability P.
type Random struct {
	P float64
}

func (Random) Name() string { return "random" }

func (r Random) NextMove(_, _ []Move, rng *rand.Rand) Move {
	p := r.P
	if p == 0 {
		p = 0.5
	}
	if rng.Float64() < p {
		return Cooperate
	}

	return Defect
}

// BuiltinStrategies returns one instance of every built-in strategy, in a
// stable order.
func BuiltinStrategies() []Strategy {
	return []Strategy{
		TitForTat{},
		SuspiciousTitForTat{},
		AlwaysCooperate{},
		AlwaysDefect{},
		WinStayLoseShift{},
		GrimTrigger{},
		Random{},
	}
}

// StrategyByName resolves a configured strategy name.
func StrategyByName(name string) (Strategy, error) {
	for _, s := range BuiltinStrategies() {
		if s.Name() == name {
			return s, nil
		}
	}

	return nil, fmt.Errorf("unknown strategy %q", name)
}
