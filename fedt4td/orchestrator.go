package fedt4td

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"os"
	"time"

	"github.com/cairo-thws/fedt4t"
	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/aggregate"
	"github.com/cairo-thws/fedt4t/dispatch"
	"github.com/cairo-thws/fedt4t/game"
	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/orchestrator"
	"github.com/cairo-thws/fedt4t/orchestrator/api"
	"github.com/cairo-thws/fedt4t/orchestrator/middleware"
	"github.com/cairo-thws/fedt4t/participant"
	"github.com/cairo-thws/fedt4t/pkg/mqtt"
	"github.com/cairo-thws/fedt4t/pkg/prometheus"
	"github.com/cairo-thws/fedt4t/pkg/server"
	httpserver "github.com/cairo-thws/fedt4t/pkg/server/http"
	"github.com/cairo-thws/fedt4t/pkg/storage"
	"github.com/cairo-thws/fedt4t/pkg/tracing"
	"github.com/cairo-thws/fedt4t/selection"
	"github.com/cairo-thws/fedt4t/tournament"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

const svcName = "orchestrator"

// Reference trainer dimensions for loopback runs.
const (
	defNumExamples = 200
	defFeatures    = 10
	defEpochs      = 5
	defLearnRate   = 0.1
)

type OrchestratorConfig struct {
	LogLevel       string
	InstanceID     string
	MQTTAddress    string
	MQTTQoS        uint8
	MQTTTimeout    time.Duration
	ChannelID      string
	ClientID       string
	ClientKey      string
	ExperimentFile string
	Loopback       bool
	WasmAggregator string
	Server         server.Config
	OTELURL        url.URL
	TraceRatio     float64
}

func StartOrchestrator(ctx context.Context, cancel context.CancelFunc, cfg OrchestratorConfig) error {
	g, ctx := errgroup.WithContext(ctx)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := tracing.NewProvider(ctx, svcName, cfg.OTELURL, cfg.InstanceID, cfg.TraceRatio)
		if err != nil {
			return fmt.Errorf("failed to initialize opentelemetry: %s", err.Error())
		}
		defer func() {
			if err := sdktp.Shutdown(ctx); err != nil {
				slog.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	experiment := fedt4t.DefaultConfig()
	if cfg.ExperimentFile != "" {
		loaded, err := fedt4t.LoadConfig(cfg.ExperimentFile)
		if err != nil {
			return fmt.Errorf("failed to load experiment config: %w", err)
		}
		experiment = *loaded
	}

	registry := agent.NewRegistry()
	if err := registerRoster(registry, experiment); err != nil {
		return err
	}

	pairing, err := tournament.ParsePairing(experiment.Experiment.Pairing)
	if err != nil {
		return err
	}
	engine, err := tournament.NewEngine(experiment.Matrix(), experiment.Experiment.MatchLength, pairing, experiment.Experiment.Seed)
	if err != nil {
		return err
	}

	transform, err := selection.ParseTransform(experiment.Experiment.Transform)
	if err != nil {
		return err
	}
	policy := &selection.Policy{
		FractionFit:      experiment.Experiment.FractionFit,
		FractionEvaluate: experiment.Experiment.FractionEvaluate,
		Transform:        transform,
		ScoreWeightAlpha: experiment.Experiment.ScoreWeightAlpha,
		Rand:             rand.New(rand.NewSource(experiment.Experiment.Seed)),
	}

	dispatcher, err := makeDispatcher(ctx, cfg, experiment, registry, logger)
	if err != nil {
		return err
	}

	var aggregator aggregate.Aggregator
	switch cfg.WasmAggregator {
	case "":
		aggregator = aggregate.NewFedAvg()
	default:
		aggregator, err = aggregate.NewWasm(cfg.WasmAggregator)
		if err != nil {
			return fmt.Errorf("failed to load wasm aggregator: %w", err)
		}
	}

	quorum, err := orchestrator.ParseQuorum(experiment.Experiment.Quorum)
	if err != nil {
		return err
	}
	orchCfg := orchestrator.Config{
		NumRounds:         experiment.Experiment.Rounds,
		RoundTimeout:      experiment.Timeout(),
		Quorum:            quorum,
		MinQuorumFraction: experiment.Experiment.MinQuorumFraction,
		MaxRoundFailures:  experiment.Experiment.MaxRoundFailures,
	}

	initial := model.Parameters{make(model.Tensor, defFeatures), make(model.Tensor, 1)}

	svc := orchestrator.NewService(
		orchCfg,
		registry,
		engine,
		policy,
		dispatcher,
		aggregator,
		initial,
		storage.NewInMemoryStorage(),
		logger,
	)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	hs := httpserver.NewServer(ctx, cancel, svcName, cfg.Server, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		if err := svc.Run(ctx); err != nil {
			logger.Error("experiment run failed", slog.Any("error", err))
		}
		// The API keeps serving results after the run finishes.
		return nil
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}

	return nil
}

func registerRoster(registry *agent.Registry, experiment fedt4t.Config) error {
	if len(experiment.Agents) == 0 {
		for i, s := range game.BuiltinStrategies() {
			if err := registry.Register(i, s.Name(), s); err != nil {
				return err
			}
		}

		return nil
	}

	for _, a := range experiment.Agents {
		strategy, err := game.StrategyByName(a.Strategy)
		if err != nil {
			return err
		}
		if err := registry.Register(a.ID, a.Name, strategy); err != nil {
			return err
		}
	}

	return nil
}

func makeDispatcher(ctx context.Context, cfg OrchestratorConfig, experiment fedt4t.Config, registry *agent.Registry, logger *slog.Logger) (dispatch.Dispatcher, error) {
	if cfg.Loopback {
		trainers := make(map[int]participant.Trainer)
		for _, a := range registry.Snapshot() {
			trainers[a.ID] = participant.NewSGDTrainer(a.ID, defNumExamples, defFeatures, defEpochs, defLearnRate, experiment.Experiment.Seed)
		}

		return dispatch.NewLoopback(trainers), nil
	}

	pubsub, err := mqtt.NewPubSub(cfg.MQTTAddress, cfg.MQTTQoS, svcName, cfg.ClientID, cfg.ClientKey, cfg.ChannelID, cfg.MQTTTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mqtt pubsub: %s", err.Error())
	}
	if err := orchestrator.Subscribe(ctx, cfg.ChannelID, pubsub, registry, logger); err != nil {
		return nil, fmt.Errorf("failed to subscribe to control topics: %w", err)
	}

	return dispatch.NewMQTT(ctx, pubsub, cfg.ChannelID, cfg.MQTTTimeout, logger)
}
