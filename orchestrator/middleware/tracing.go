package middleware

import (
	"context"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/orchestrator"
	"go.opentelemetry.io/otel/trace"
)

var _ orchestrator.Service = (*tracingMiddleware)(nil)

type tracingMiddleware struct {
	tracer trace.Tracer
	svc    orchestrator.Service
}

func Tracing(tracer trace.Tracer, svc orchestrator.Service) orchestrator.Service {
	return &tracingMiddleware{
		tracer: tracer,
		svc:    svc,
	}
}

func (tm *tracingMiddleware) Run(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "run")
	defer span.End()

	return tm.svc.Run(ctx)
}

func (tm *tracingMiddleware) ListAgents(ctx context.Context) (agent.AgentPage, error) {
	ctx, span := tm.tracer.Start(ctx, "list-agents")
	defer span.End()

	return tm.svc.ListAgents(ctx)
}

func (tm *tracingMiddleware) GetRound(ctx context.Context, index int) (orchestrator.Round, error) {
	ctx, span := tm.tracer.Start(ctx, "get-round")
	defer span.End()

	return tm.svc.GetRound(ctx, index)
}

func (tm *tracingMiddleware) ListRounds(ctx context.Context, offset, limit uint64) (orchestrator.RoundPage, error) {
	ctx, span := tm.tracer.Start(ctx, "list-rounds")
	defer span.End()

	return tm.svc.ListRounds(ctx, offset, limit)
}

func (tm *tracingMiddleware) Leaderboard(ctx context.Context) ([]agent.Agent, error) {
	ctx, span := tm.tracer.Start(ctx, "leaderboard")
	defer span.End()

	return tm.svc.Leaderboard(ctx)
}

func (tm *tracingMiddleware) GlobalModel(ctx context.Context) (model.Global, error) {
	ctx, span := tm.tracer.Start(ctx, "global-model")
	defer span.End()

	return tm.svc.GlobalModel(ctx)
}
