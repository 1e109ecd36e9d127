package agent

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cairo-thws/fedt4t/game"
	"github.com/cairo-thws/fedt4t/pkg/errors"
)

// Registry owns the agent roster for the lifetime of the process. It is the
// only holder of connectivity state and cumulative tournament scores; scores
// are mutated exclusively through AddScore by the tournament engine.
type Registry struct {
	mu     sync.Mutex
	agents map[int]*Agent
}

func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[int]*Agent),
	}
}

func (r *Registry) Register(id int, name string, strategy game.Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[id]; ok {
		return fmt.Errorf("agent %d: %w", id, errors.ErrEntityExists)
	}

	r.agents[id] = &Agent{
		ID:           id,
		Name:         name,
		Strategy:     strategy,
		StrategyName: strategy.Name(),
		ConnState:    Unknown,
	}

	return nil
}

func (r *Registry) MarkReachable(id int) error {
	return r.setState(id, Reachable)
}

func (r *Registry) MarkUnreachable(id int) error {
	return r.setState(id, Unreachable)
}

func (r *Registry) setState(id int, s ConnState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.agents[id]
	if !ok {
		return fmt.Errorf("agent %d: %w", id, errors.ErrUnknownAgent)
	}
	a.ConnState = s

	return nil
}

// AddScore increments the agent's cumulative tournament score and records the
// round it was last seen in.
func (r *Registry) AddScore(id int, delta float64, round int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.agents[id]
	if !ok {
		return fmt.Errorf("agent %d: %w", id, errors.ErrUnknownAgent)
	}
	a.CumulativeScore += delta
	a.LastSeenRound = round

	return nil
}

func (r *Registry) Get(id int) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.agents[id]
	if !ok {
		return Agent{}, fmt.Errorf("agent %d: %w", id, errors.ErrUnknownAgent)
	}

	return *a, nil
}

// Snapshot returns a copy of every agent, ordered by id.
func (r *Registry) Snapshot() []Agent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Leaderboard returns agents ordered by cumulative score, highest first,
// with id as the tiebreak.
func (r *Registry) Leaderboard() []Agent {
	out := r.Snapshot()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CumulativeScore != out[j].CumulativeScore {
			return out[i].CumulativeScore > out[j].CumulativeScore
		}

		return out[i].ID < out[j].ID
	})

	return out
}
