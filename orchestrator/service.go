package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/aggregate"
	"github.com/cairo-thws/fedt4t/dispatch"
	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/pkg/errors"
	"github.com/cairo-thws/fedt4t/pkg/storage"
	"github.com/cairo-thws/fedt4t/selection"
	"github.com/cairo-thws/fedt4t/tournament"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defOffset = 0
	defLimit  = 100
)

type Config struct {
	NumRounds         int
	RoundTimeout      time.Duration
	Quorum            Quorum
	MinQuorumFraction float64
	MaxRoundFailures  int
	FitConfig         map[string]any
	EvalConfig        map[string]any
}

type service struct {
	cfg        Config
	registry   *agent.Registry
	engine     *tournament.Engine
	policy     *selection.Policy
	dispatcher dispatch.Dispatcher
	aggregator aggregate.Aggregator
	roundsDB   storage.Storage
	logger     *slog.Logger

	// global is the single piece of shared mutable state. Exactly one writer
	// (the aggregation step of the running round) replaces the snapshot;
	// readers always receive a complete, immutable copy.
	mu     sync.Mutex
	global model.Global
}

func NewService(
	cfg Config,
	registry *agent.Registry,
	engine *tournament.Engine,
	policy *selection.Policy,
	dispatcher dispatch.Dispatcher,
	aggregator aggregate.Aggregator,
	initial model.Parameters,
	roundsDB storage.Storage,
	logger *slog.Logger,
) Service {
	return &service{
		cfg:        cfg,
		registry:   registry,
		engine:     engine,
		policy:     policy,
		dispatcher: dispatcher,
		aggregator: aggregator,
		roundsDB:   roundsDB,
		logger:     logger,
		global:     model.Global{Version: 0, Parameters: initial},
	}
}

func (svc *service) Run(ctx context.Context) error {
	consecutiveFailures := 0

	for idx := 0; idx < svc.cfg.NumRounds; idx++ {
		rec, err := svc.runRound(ctx, idx)

		rec.FinishedAt = time.Now()
		if storeErr := svc.roundsDB.Create(ctx, roundKey(idx), rec); storeErr != nil {
			svc.logger.WarnContext(ctx, "Failed to store round record",
				slog.Int("round", idx), slog.Any("error", storeErr))
		}

		switch {
		case err == nil:
			consecutiveFailures = 0
		case stderrors.Is(err, errors.ErrNoEligibleAgents):
			// Aborted round: logged, counted, run continues.
			consecutiveFailures++
			svc.logger.WarnContext(ctx, "Round aborted",
				slog.Int("round", idx),
				slog.Int("consecutive_failures", consecutiveFailures),
				slog.Any("error", err))
			if consecutiveFailures >= svc.cfg.MaxRoundFailures {
				return fmt.Errorf("aborting run after %d consecutive failed rounds: %w", consecutiveFailures, err)
			}
		default:
			return fmt.Errorf("round %d: %w", idx, err)
		}
	}

	svc.logger.InfoContext(ctx, "Run terminated",
		slog.Int("rounds", svc.cfg.NumRounds),
		slog.String("state", Terminate.String()))

	return nil
}

func (svc *service) runRound(ctx context.Context, idx int) (Round, error) {
	rec := Round{
		ID:        uuid.NewString(),
		Index:     idx,
		State:     Init,
		Metrics:   make(map[string]float64),
		Failures:  make(map[int]string),
		StartedAt: time.Now(),
	}

	roundCtx := ctx
	if svc.cfg.RoundTimeout > 0 {
		var cancel context.CancelFunc
		roundCtx, cancel = context.WithTimeout(ctx, svc.cfg.RoundTimeout)
		defer cancel()
	}

	// Tournament: all registered agents play, independently of training
	// selection; scores must be final before selection reads them.
	svc.transition(ctx, &rec, Tournament)
	matches, err := svc.engine.Run(roundCtx, idx, svc.registry)
	if err != nil {
		return rec, err
	}
	rec.Metrics["tournament_matches"] = float64(len(matches))

	svc.transition(ctx, &rec, Select)
	selected, err := svc.policy.SelectFit(svc.registry.Snapshot())
	if err != nil {
		return rec, err
	}
	for _, a := range selected {
		rec.Selected = append(rec.Selected, a.ID)
	}

	svc.transition(ctx, &rec, FitDispatch)
	snapshot := svc.GlobalSnapshot()
	results := svc.fanOutFit(roundCtx, selected, snapshot.Parameters, &rec)

	svc.transition(ctx, &rec, FitCollect)
	quorum := float64(len(results)) / float64(len(selected))
	if quorum < svc.cfg.MinQuorumFraction {
		switch svc.cfg.Quorum {
		case QuorumRetry:
			svc.logger.WarnContext(ctx, "Quorum missed, retrying non-responders once",
				slog.Int("round", idx),
				slog.Float64("quorum", quorum),
				slog.Any("error", errors.ErrInsufficientQuorum))
			retryTargets := nonResponders(selected, results)
			for _, r := range svc.fanOutFit(roundCtx, retryTargets, snapshot.Parameters, &rec) {
				delete(rec.Failures, r.AgentID)
				results = append(results, r)
			}
		default:
			svc.logger.WarnContext(ctx, "Quorum missed, proceeding with respondents",
				slog.Int("round", idx),
				slog.Float64("quorum", quorum),
				slog.Any("error", errors.ErrInsufficientQuorum))
		}
	}

	svc.transition(ctx, &rec, Aggregate)
	rec.ModelVersion = svc.aggregateRound(ctx, idx, results, &rec)

	svc.transition(ctx, &rec, EvalDispatch)
	evalTargets, err := svc.policy.SelectEvaluate(svc.registry.Snapshot())
	if err != nil {
		// Everything became unreachable between fit and evaluate; the round
		// still counts, it just carries no evaluation metrics.
		svc.logger.WarnContext(ctx, "No agents eligible for evaluation",
			slog.Int("round", idx), slog.Any("error", err))
		evalTargets = nil
	}
	evals := svc.fanOutEvaluate(roundCtx, evalTargets, &rec)

	svc.transition(ctx, &rec, EvalCollect)
	svc.transition(ctx, &rec, MetricAggregate)
	svc.recordMetrics(&rec, results, evals)
	rec.Leaderboard = svc.registry.Leaderboard()

	svc.logger.InfoContext(ctx, "Round completed",
		slog.Int("round", idx),
		slog.Int("selected", len(selected)),
		slog.Int("fit_responses", len(results)),
		slog.Int("model_version", rec.ModelVersion))

	return rec, nil
}

func (svc *service) transition(ctx context.Context, rec *Round, next State) {
	rec.State = next
	svc.logger.DebugContext(ctx, "State transition",
		slog.Int("round", rec.Index),
		slog.String("state", next.String()))
}

// fanOutFit issues all fit calls concurrently and blocks on the round's
// single join barrier. Per-agent failures are recorded and excluded; they
// never propagate.
func (svc *service) fanOutFit(ctx context.Context, targets []agent.Agent, params model.Parameters, rec *Round) []dispatch.FitResult {
	var mu sync.Mutex
	results := make([]dispatch.FitResult, 0, len(targets))

	g := new(errgroup.Group)
	for _, a := range targets {
		g.Go(func() error {
			res, err := svc.dispatcher.Fit(ctx, a.ID, params, svc.cfg.FitConfig)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rec.Failures[a.ID] = err.Error()
				if markErr := svc.registry.MarkUnreachable(a.ID); markErr != nil {
					return markErr
				}

				return nil
			}
			results = append(results, res)

			return svc.registry.MarkReachable(a.ID)
		})
	}
	if err := g.Wait(); err != nil {
		// Only registry misuse lands here; dispatch errors are captured above.
		svc.logger.ErrorContext(ctx, "Fit fan-out failed", slog.Any("error", err))
	}

	// Completion order depends on scheduling; aggregation must not.
	sort.Slice(results, func(i, j int) bool { return results[i].AgentID < results[j].AgentID })

	return results
}

func (svc *service) fanOutEvaluate(ctx context.Context, targets []agent.Agent, rec *Round) []dispatch.EvalResult {
	var mu sync.Mutex
	results := make([]dispatch.EvalResult, 0, len(targets))
	params := svc.GlobalSnapshot().Parameters

	g := new(errgroup.Group)
	for _, a := range targets {
		g.Go(func() error {
			res, err := svc.dispatcher.Evaluate(ctx, a.ID, params, svc.cfg.EvalConfig)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rec.Failures[a.ID] = err.Error()
				if markErr := svc.registry.MarkUnreachable(a.ID); markErr != nil {
					return markErr
				}

				return nil
			}
			results = append(results, res)

			return svc.registry.MarkReachable(a.ID)
		})
	}
	if err := g.Wait(); err != nil {
		svc.logger.ErrorContext(ctx, "Evaluate fan-out failed", slog.Any("error", err))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].AgentID < results[j].AgentID })

	return results
}

// aggregateRound is the round's single write to the global model. Returns the
// version the round finished on.
func (svc *service) aggregateRound(ctx context.Context, idx int, results []dispatch.FitResult, rec *Round) int {
	contribs := make([]selection.Contribution, 0, len(results))
	updates := make([]aggregate.Update, 0, len(results))
	for _, r := range results {
		score := 0.0
		if a, err := svc.registry.Get(r.AgentID); err == nil {
			score = a.CumulativeScore
		}
		contribs = append(contribs, selection.Contribution{
			AgentID:     r.AgentID,
			NumExamples: r.NumExamples,
			Score:       score,
		})
		updates = append(updates, aggregate.Update{
			AgentID:     r.AgentID,
			Parameters:  r.Parameters,
			NumExamples: r.NumExamples,
			Score:       score,
		})
	}
	weights := svc.policy.Weights(contribs)
	rec.Weights = weights

	svc.mu.Lock()
	defer svc.mu.Unlock()

	next, err := svc.aggregator.Aggregate(svc.global.Parameters, updates, weights)
	switch {
	case stderrors.Is(err, errors.ErrNoUpdates):
		// No-op round for training: keep the snapshot, still advance.
		svc.logger.WarnContext(ctx, "Aggregation received no updates",
			slog.Int("round", idx), slog.Any("error", err))

		return svc.global.Version
	case stderrors.Is(err, errors.ErrShapeMismatch):
		svc.logger.WarnContext(ctx, "Discarded malformed updates during aggregation",
			slog.Int("round", idx), slog.Any("error", err))
	case err != nil:
		svc.logger.ErrorContext(ctx, "Aggregation failed, keeping previous model",
			slog.Int("round", idx), slog.Any("error", err))

		return svc.global.Version
	}

	if next.SameShape(svc.global.Parameters) {
		svc.global = svc.global.Next(next)
	}

	return svc.global.Version
}

func (svc *service) recordMetrics(rec *Round, fits []dispatch.FitResult, evals []dispatch.EvalResult) {
	fitContribs := make([]aggregate.MetricContribution, 0, len(fits))
	for _, r := range fits {
		fitContribs = append(fitContribs, aggregate.MetricContribution{
			NumExamples: r.NumExamples,
			Metrics:     r.Metrics,
		})
	}
	if m := aggregate.WeightedMetrics(fitContribs); m["loss"] != 0 {
		rec.Metrics["mean_training_loss"] = m["loss"]
	}

	evalContribs := make([]aggregate.MetricContribution, 0, len(evals))
	for _, r := range evals {
		evalContribs = append(evalContribs, aggregate.MetricContribution{
			NumExamples: r.NumExamples,
			Metrics:     r.Metrics,
		})
	}
	if m := aggregate.WeightedMetrics(evalContribs); len(evals) > 0 {
		rec.Metrics["evaluation_accuracy"] = m["accuracy"]
	}

	rec.Metrics["fit_responses"] = float64(len(fits))
	rec.Metrics["eval_responses"] = float64(len(evals))
	rec.Metrics["failures"] = float64(len(rec.Failures))
}

func (svc *service) ListAgents(_ context.Context) (agent.AgentPage, error) {
	agents := svc.registry.Snapshot()

	return agent.AgentPage{
		Total:  uint64(len(agents)),
		Agents: agents,
	}, nil
}

func (svc *service) GetRound(ctx context.Context, index int) (Round, error) {
	data, err := svc.roundsDB.Get(ctx, roundKey(index))
	if err != nil {
		return Round{}, err
	}
	rec, ok := data.(Round)
	if !ok {
		return Round{}, errors.ErrInvalidData
	}

	return rec, nil
}

func (svc *service) ListRounds(ctx context.Context, offset, limit uint64) (RoundPage, error) {
	if limit == 0 {
		limit = defLimit
	}
	data, total, err := svc.roundsDB.List(ctx, offset, limit)
	if err != nil {
		return RoundPage{}, err
	}

	rounds := make([]Round, 0, len(data))
	for i := range data {
		rec, ok := data[i].(Round)
		if !ok {
			return RoundPage{}, errors.ErrInvalidData
		}
		rounds = append(rounds, rec)
	}

	return RoundPage{
		Offset: offset,
		Limit:  limit,
		Total:  total,
		Rounds: rounds,
	}, nil
}

func (svc *service) Leaderboard(_ context.Context) ([]agent.Agent, error) {
	return svc.registry.Leaderboard(), nil
}

func (svc *service) GlobalModel(_ context.Context) (model.Global, error) {
	return svc.GlobalSnapshot(), nil
}

// GlobalSnapshot returns the current immutable model snapshot.
func (svc *service) GlobalSnapshot() model.Global {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	return svc.global
}

func nonResponders(selected []agent.Agent, results []dispatch.FitResult) []agent.Agent {
	responded := make(map[int]bool, len(results))
	for _, r := range results {
		responded[r.AgentID] = true
	}

	out := make([]agent.Agent, 0)
	for _, a := range selected {
		if !responded[a.ID] {
			out = append(out, a)
		}
	}

	return out
}

func roundKey(idx int) string {
	return fmt.Sprintf("round-%06d", idx)
}
