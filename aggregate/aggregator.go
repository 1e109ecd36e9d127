package aggregate

import (
	"fmt"

	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/pkg/errors"
)

// Update is one participant's returned training result for a round.
type Update struct {
	AgentID     int              `json:"agent_id"`
	Parameters  model.Parameters `json:"parameters"`
	NumExamples int              `json:"num_examples"`
	Score       float64          `json:"score,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Aggregator combines returned updates into new global parameters. It must be
// invoked by exactly one logical writer per round.
type Aggregator interface {
	Aggregate(prior model.Parameters, updates []Update, weights map[int]float64) (model.Parameters, error)
}

// FedAvg computes the position-wise weighted sum of the returned updates.
// Updates whose shape disagrees with the prior are discarded and the
// remaining weights renormalized; if nothing valid remains the prior is
// returned unchanged together with ErrNoUpdates, which callers treat as a
// warning rather than a failure.
type FedAvg struct{}

func NewFedAvg() Aggregator {
	return FedAvg{}
}

func (FedAvg) Aggregate(prior model.Parameters, updates []Update, weights map[int]float64) (model.Parameters, error) {
	valid := make([]Update, 0, len(updates))
	var discarded []int
	for _, u := range updates {
		if !prior.SameShape(u.Parameters) {
			discarded = append(discarded, u.AgentID)

			continue
		}
		valid = append(valid, u)
	}

	if len(valid) == 0 {
		if len(discarded) > 0 {
			return prior, fmt.Errorf("all %d updates discarded: %w", len(discarded), errors.ErrShapeMismatch)
		}

		return prior, errors.ErrNoUpdates
	}

	var totalWeight float64
	for _, u := range valid {
		totalWeight += weights[u.AgentID]
	}
	uniform := totalWeight <= 0 // degenerate weight map, fall back to a plain average

	out := prior.Zeros()
	for _, u := range valid {
		w := 1 / float64(len(valid))
		if !uniform {
			// Renormalized over the updates that survived, so partial failure
			// never skews the scale of the result.
			w = weights[u.AgentID] / totalWeight
		}
		for i, tensor := range u.Parameters {
			for j, v := range tensor {
				out[i][j] += v * w
			}
		}
	}

	if len(discarded) > 0 {
		return out, fmt.Errorf("discarded updates from agents %v: %w", discarded, errors.ErrShapeMismatch)
	}

	return out, nil
}
