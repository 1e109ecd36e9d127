package dispatch

import (
	"context"

	"github.com/cairo-thws/fedt4t/model"
)

// FitResult is a participant's answer to a training request.
type FitResult struct {
	AgentID     int                `json:"agent_id"`
	Parameters  model.Parameters   `json:"parameters"`
	NumExamples int                `json:"num_examples"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// EvalResult is a participant's answer to an evaluation request.
type EvalResult struct {
	AgentID     int                `json:"agent_id"`
	Loss        float64            `json:"loss"`
	NumExamples int                `json:"num_examples"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Dispatcher ships a read-only snapshot of the global parameters to one
// participant and collects its response. Calls block until the participant
// answers or ctx expires; a timeout surfaces as ErrDispatchTimeout and is
// treated upstream as a non-response, never as a round failure.
type Dispatcher interface {
	Fit(ctx context.Context, agentID int, params model.Parameters, config map[string]any) (FitResult, error)
	Evaluate(ctx context.Context, agentID int, params model.Parameters, config map[string]any) (EvalResult, error)
}
