package dispatch

import (
	"context"
	"fmt"

	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/participant"
	"github.com/cairo-thws/fedt4t/pkg/errors"
)

// Loopback runs every participant's trainer in-process. It backs the demo
// mode and tests, where no broker is available.
type Loopback struct {
	trainers map[int]participant.Trainer
}

func NewLoopback(trainers map[int]participant.Trainer) *Loopback {
	return &Loopback{trainers: trainers}
}

func (l *Loopback) Fit(ctx context.Context, agentID int, params model.Parameters, config map[string]any) (FitResult, error) {
	t, ok := l.trainers[agentID]
	if !ok {
		return FitResult{}, fmt.Errorf("agent %d: %w", agentID, errors.ErrUnknownAgent)
	}
	if err := ctx.Err(); err != nil {
		return FitResult{}, fmt.Errorf("agent %d: %w", agentID, errors.ErrDispatchTimeout)
	}

	out, n, metrics, err := t.Fit(params.Clone(), config)
	if err != nil {
		return FitResult{}, fmt.Errorf("agent %d: %w", agentID, err)
	}

	return FitResult{AgentID: agentID, Parameters: out, NumExamples: n, Metrics: metrics}, nil
}

func (l *Loopback) Evaluate(ctx context.Context, agentID int, params model.Parameters, config map[string]any) (EvalResult, error) {
	t, ok := l.trainers[agentID]
	if !ok {
		return EvalResult{}, fmt.Errorf("agent %d: %w", agentID, errors.ErrUnknownAgent)
	}
	if err := ctx.Err(); err != nil {
		return EvalResult{}, fmt.Errorf("agent %d: %w", agentID, errors.ErrDispatchTimeout)
	}

	loss, n, metrics, err := t.Evaluate(params.Clone(), config)
	if err != nil {
		return EvalResult{}, fmt.Errorf("agent %d: %w", agentID, err)
	}

	return EvalResult{AgentID: agentID, Loss: loss, NumExamples: n, Metrics: metrics}, nil
}
