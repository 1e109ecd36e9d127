package middleware

import (
	"context"
	"time"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/orchestrator"
	"github.com/go-kit/kit/metrics"
)

var _ orchestrator.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     orchestrator.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc orchestrator.Service) orchestrator.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Run(ctx context.Context) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "run").Add(1)
		mm.latency.With("method", "run").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Run(ctx)
}

func (mm *metricsMiddleware) ListAgents(ctx context.Context) (agent.AgentPage, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-agents").Add(1)
		mm.latency.With("method", "list-agents").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListAgents(ctx)
}

func (mm *metricsMiddleware) GetRound(ctx context.Context, index int) (orchestrator.Round, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-round").Add(1)
		mm.latency.With("method", "get-round").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.GetRound(ctx, index)
}

func (mm *metricsMiddleware) ListRounds(ctx context.Context, offset, limit uint64) (orchestrator.RoundPage, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-rounds").Add(1)
		mm.latency.With("method", "list-rounds").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListRounds(ctx, offset, limit)
}

func (mm *metricsMiddleware) Leaderboard(ctx context.Context) ([]agent.Agent, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "leaderboard").Add(1)
		mm.latency.With("method", "leaderboard").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Leaderboard(ctx)
}

func (mm *metricsMiddleware) GlobalModel(ctx context.Context) (model.Global, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "global-model").Add(1)
		mm.latency.With("method", "global-model").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.GlobalModel(ctx)
}
