package agent

import (
	"github.com/cairo-thws/fedt4t/game"
)

type ConnState uint8

const (
	Unknown ConnState = iota
	Reachable
	Unreachable
)

func (s ConnState) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Reachable:
		return "Reachable"
	case Unreachable:
		return "Unreachable"
	default:
		return "Invalid"
	}
}

// Agent binds one participant identity to one game strategy and one data
// partition. The id doubles as the partition id, mirroring the one-partition-
// per-strategy setup.
type Agent struct {
	ID              int            `json:"id"`
	Name            string         `json:"name,omitempty"`
	Strategy        game.Strategy  `json:"-"`
	StrategyName    string         `json:"strategy"`
	ConnState       ConnState      `json:"conn_state"`
	CumulativeScore float64        `json:"cumulative_score"`
	LastSeenRound   int            `json:"last_seen_round"`
}

type AgentPage struct {
	Total  uint64  `json:"total"`
	Agents []Agent `json:"agents"`
}
