package participant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/0x6flab/namegenerator"
	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/pkg/mqtt"
)

const (
	aliveInterval = 5 * time.Second

	fitTopicTemplate   = "channels/%s/messages/agents/%d/fit"
	evalTopicTemplate  = "channels/%s/messages/agents/%d/evaluate"
	resultsTopicTmpl   = "channels/%s/messages/control/participant/results"
	aliveTopicTemplate = "channels/%s/messages/control/participant/alive"
)

type request struct {
	RequestID  string           `json:"request_id"`
	AgentID    int              `json:"agent_id"`
	Parameters model.Parameters `json:"parameters"`
	Config     map[string]any   `json:"config"`
}

// Service is one remote participant process: it answers fit and evaluate
// requests for a single agent id using its local trainer and announces
// liveness on the control topic.
type Service struct {
	agentID   int
	name      string
	trainer   Trainer
	pubsub    mqtt.PubSub
	channelID string
	logger    *slog.Logger
}

func NewService(agentID int, name string, trainer Trainer, pubsub mqtt.PubSub, channelID string, logger *slog.Logger) *Service {
	if name == "" {
		name = namegenerator.NewGenerator().Generate()
	}

	return &Service{
		agentID:   agentID,
		name:      name,
		trainer:   trainer,
		pubsub:    pubsub,
		channelID: channelID,
		logger:    logger,
	}
}

// Run subscribes to the agent's request topics and keeps announcing liveness
// until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	fitTopic := fmt.Sprintf(fitTopicTemplate, s.channelID, s.agentID)
	if err := s.pubsub.Subscribe(ctx, fitTopic, s.handle(ctx, s.fit)); err != nil {
		return fmt.Errorf("failed to subscribe to fit topic: %w", err)
	}
	evalTopic := fmt.Sprintf(evalTopicTemplate, s.channelID, s.agentID)
	if err := s.pubsub.Subscribe(ctx, evalTopic, s.handle(ctx, s.evaluate)); err != nil {
		return fmt.Errorf("failed to subscribe to evaluate topic: %w", err)
	}

	s.logger.Info("Participant ready",
		slog.Int("agent_id", s.agentID),
		slog.String("name", s.name))

	ticker := time.NewTicker(aliveInterval)
	defer ticker.Stop()

	for {
		if err := s.announceAlive(ctx); err != nil {
			s.logger.Warn("Failed to announce liveness", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) announceAlive(ctx context.Context) error {
	topic := fmt.Sprintf(aliveTopicTemplate, s.channelID)

	return s.pubsub.Publish(ctx, topic, map[string]any{
		"agent_id": s.agentID,
		"name":     s.name,
	})
}

type workFn func(req request) (map[string]any, error)

func (s *Service) handle(ctx context.Context, work workFn) mqtt.Handler {
	return func(_ string, msg map[string]any) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		var req request
		if err := json.Unmarshal(data, &req); err != nil {
			return err
		}
		if req.AgentID != s.agentID {
			return nil
		}

		resp, err := work(req)
		if err != nil {
			s.logger.Warn("Local work failed",
				slog.String("request_id", req.RequestID),
				slog.Any("error", err))
			resp = map[string]any{"error": err.Error()}
		}
		resp["request_id"] = req.RequestID
		resp["agent_id"] = s.agentID

		topic := fmt.Sprintf(resultsTopicTmpl, s.channelID)

		return s.pubsub.Publish(ctx, topic, resp)
	}
}

func (s *Service) fit(req request) (map[string]any, error) {
	params, n, metrics, err := s.trainer.Fit(req.Parameters, req.Config)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"parameters":   params,
		"num_examples": n,
		"metrics":      metrics,
	}, nil
}

func (s *Service) evaluate(req request) (map[string]any, error) {
	loss, n, metrics, err := s.trainer.Evaluate(req.Parameters, req.Config)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"loss":         loss,
		"num_examples": n,
		"metrics":      metrics,
	}, nil
}
