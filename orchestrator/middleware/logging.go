package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/orchestrator"
)

var _ orchestrator.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    orchestrator.Service
}

func Logging(logger *slog.Logger, svc orchestrator.Service) orchestrator.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Run(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Run failed", args...)

			return
		}
		lm.logger.Info("Run completed successfully", args...)
	}(time.Now())

	return lm.svc.Run(ctx)
}

func (lm *loggingMiddleware) ListAgents(ctx context.Context) (resp agent.AgentPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("total", resp.Total),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List agents failed", args...)

			return
		}
		lm.logger.Info("List agents completed successfully", args...)
	}(time.Now())

	return lm.svc.ListAgents(ctx)
}

func (lm *loggingMiddleware) GetRound(ctx context.Context, index int) (resp orchestrator.Round, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("round",
				slog.Int("index", index),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get round failed", args...)

			return
		}
		lm.logger.Info("Get round completed successfully", args...)
	}(time.Now())

	return lm.svc.GetRound(ctx, index)
}

func (lm *loggingMiddleware) ListRounds(ctx context.Context, offset, limit uint64) (resp orchestrator.RoundPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("offset", offset),
			slog.Uint64("limit", limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List rounds failed", args...)

			return
		}
		lm.logger.Info("List rounds completed successfully", args...)
	}(time.Now())

	return lm.svc.ListRounds(ctx, offset, limit)
}

func (lm *loggingMiddleware) Leaderboard(ctx context.Context) (resp []agent.Agent, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Leaderboard failed", args...)

			return
		}
		lm.logger.Info("Leaderboard completed successfully", args...)
	}(time.Now())

	return lm.svc.Leaderboard(ctx)
}

func (lm *loggingMiddleware) GlobalModel(ctx context.Context) (resp model.Global, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("version", resp.Version),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Global model failed", args...)

			return
		}
		lm.logger.Info("Global model completed successfully", args...)
	}(time.Now())

	return lm.svc.GlobalModel(ctx)
}
