package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/model"
)

// State names the phases of the per-round state machine. Transitions are
// strictly sequential; the orchestrator never advances past a collect state
// until every outstanding call has resolved or timed out.
type State uint8

const (
	Init State = iota
	Tournament
	Select
	FitDispatch
	FitCollect
	Aggregate
	EvalDispatch
	EvalCollect
	MetricAggregate
	Terminate
)

func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case Tournament:
		return "Tournament"
	case Select:
		return "Select"
	case FitDispatch:
		return "FitDispatch"
	case FitCollect:
		return "FitCollect"
	case Aggregate:
		return "Aggregate"
	case EvalDispatch:
		return "EvalDispatch"
	case EvalCollect:
		return "EvalCollect"
	case MetricAggregate:
		return "MetricAggregate"
	case Terminate:
		return "Terminate"
	default:
		return "Unknown"
	}
}

// Quorum selects how a round reacts when too few participants answer in time.
type Quorum uint8

const (
	// QuorumWarn proceeds with the respondents and logs a warning.
	QuorumWarn Quorum = iota
	// QuorumRetry redispatches to the non-responders once, then proceeds with
	// whatever answered.
	QuorumRetry
)

func (q Quorum) String() string {
	switch q {
	case QuorumWarn:
		return "warn"
	case QuorumRetry:
		return "retry"
	default:
		return "unknown"
	}
}

func ParseQuorum(s string) (Quorum, error) {
	switch s {
	case "warn", "":
		return QuorumWarn, nil
	case "retry":
		return QuorumRetry, nil
	default:
		return 0, fmt.Errorf("unknown quorum policy %q", s)
	}
}

// Round is the persisted summary record of one orchestration round.
type Round struct {
	ID           string             `json:"id"`
	Index        int                `json:"index"`
	State        State              `json:"state"`
	Selected     []int              `json:"selected_agents"`
	Weights      map[int]float64    `json:"aggregation_weights,omitempty"`
	ModelVersion int                `json:"model_version"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Failures     map[int]string     `json:"failures,omitempty"`
	Leaderboard  []agent.Agent      `json:"leaderboard,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
}

type RoundPage struct {
	Offset uint64  `json:"offset"`
	Limit  uint64  `json:"limit"`
	Total  uint64  `json:"total"`
	Rounds []Round `json:"rounds"`
}

type Service interface {
	// Run drives the full experiment: NumRounds rounds, each one tournament,
	// selection, dispatch and aggregation cycle.
	Run(ctx context.Context) error

	ListAgents(ctx context.Context) (agent.AgentPage, error)
	GetRound(ctx context.Context, index int) (Round, error)
	ListRounds(ctx context.Context, offset, limit uint64) (RoundPage, error)
	Leaderboard(ctx context.Context) ([]agent.Agent, error)
	GlobalModel(ctx context.Context) (model.Global, error)
}
