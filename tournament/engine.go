package tournament

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/game"
	"golang.org/x/sync/errgroup"
)

// Match records one iterated game between two agents. Immutable once
// simulated.
type Match struct {
	Round    int         `json:"round"`
	AgentA   int         `json:"agent_a"`
	AgentB   int         `json:"agent_b"`
	HistoryA []game.Move `json:"history_a"`
	HistoryB []game.Move `json:"history_b"`
	PayoffA  float64     `json:"payoff_a"`
	PayoffB  float64     `json:"payoff_b"`
}

// Engine simulates one tournament round among all registered agents and
// credits each agent's cumulative score with the sum of its match payoffs.
// Matches within a round are independent and run in parallel; Run returns
// only after every match has completed, so selection may read scores
// immediately afterwards.
type Engine struct {
	Matrix      game.PayoffMatrix
	MatchLength int
	Pairing     Pairing
	Seed        int64
}

func NewEngine(matrix game.PayoffMatrix, matchLength int, pairing Pairing, seed int64) (*Engine, error) {
	if err := matrix.Validate(); err != nil {
		return nil, err
	}
	if matchLength <= 0 {
		return nil, fmt.Errorf("match length must be positive, got %d", matchLength)
	}

	return &Engine{
		Matrix:      matrix,
		MatchLength: matchLength,
		Pairing:     pairing,
		Seed:        seed,
	}, nil
}

// Run plays the round and mutates registry scores. The tournament spans all
// registered agents regardless of training-selection outcomes.
func (e *Engine) Run(ctx context.Context, round int, reg *agent.Registry) ([]Match, error) {
	agents := reg.Snapshot()
	byID := make(map[int]agent.Agent, len(agents))
	ids := make([]int, 0, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	pairRng := rand.New(rand.NewSource(e.roundSeed(round)))
	pairs := e.Pairing.pairs(ids, pairRng)

	matches := make([]Match, len(pairs))
	var mu sync.Mutex
	totals := make(map[int]float64, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range pairs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			m := e.playMatch(round, byID[p.a], byID[p.b])

			mu.Lock()
			matches[i] = m
			totals[m.AgentA] += m.PayoffA
			totals[m.AgentB] += m.PayoffB
			mu.Unlock()

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		// Agents without a match this round keep their score unchanged but
		// still record the round.
		if err := reg.AddScore(id, totals[id], round); err != nil {
			return nil, err
		}
	}

	return matches, nil
}

func (e *Engine) playMatch(round int, a, b agent.Agent) Match {
	rngA := rand.New(rand.NewSource(e.agentSeed(round, a.ID, b.ID)))
	rngB := rand.New(rand.NewSource(e.agentSeed(round, b.ID, a.ID)))

	m := Match{
		Round:    round,
		AgentA:   a.ID,
		AgentB:   b.ID,
		HistoryA: make([]game.Move, 0, e.MatchLength),
		HistoryB: make([]game.Move, 0, e.MatchLength),
	}

	for turn := 0; turn < e.MatchLength; turn++ {
		// Each strategy sees its own history first and never the opponent's
		// identity.
		moveA := a.Strategy.NextMove(m.HistoryA, m.HistoryB, rngA)
		moveB := b.Strategy.NextMove(m.HistoryB, m.HistoryA, rngB)

		payA, payB := e.Matrix.Payoff(moveA, moveB)
		m.PayoffA += payA
		m.PayoffB += payB
		m.HistoryA = append(m.HistoryA, moveA)
		m.HistoryB = append(m.HistoryB, moveB)
	}

	return m
}

func (e *Engine) roundSeed(round int) int64 {
	return e.Seed*1_000_003 + int64(round)
}

// agentSeed derives a reproducible rng seed from the root seed, the round and
// the (self, opponent) id pair.
func (e *Engine) agentSeed(round, self, opponent int) int64 {
	h := e.roundSeed(round)
	h = h*31 + int64(self)
	h = h*31 + int64(opponent)

	return h
}
