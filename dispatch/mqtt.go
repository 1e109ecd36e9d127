package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cairo-thws/fedt4t/model"
	"github.com/cairo-thws/fedt4t/pkg/errors"
	"github.com/cairo-thws/fedt4t/pkg/mqtt"
	"github.com/google/uuid"
)

const (
	fitTopicTemplate  = "channels/%s/messages/agents/%d/fit"
	evalTopicTemplate = "channels/%s/messages/agents/%d/evaluate"
	resultsTopicTmpl  = "channels/%s/messages/control/participant/results"
)

type response struct {
	RequestID   string             `json:"request_id"`
	AgentID     int                `json:"agent_id"`
	Parameters  model.Parameters   `json:"parameters,omitempty"`
	Loss        float64            `json:"loss,omitempty"`
	NumExamples int                `json:"num_examples"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// MQTT dispatches fit/evaluate requests over the participant channel and
// correlates answers by request id on one shared results topic.
type MQTT struct {
	pubsub    mqtt.PubSub
	channelID string
	timeout   time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]chan response
}

func NewMQTT(ctx context.Context, pubsub mqtt.PubSub, channelID string, timeout time.Duration, logger *slog.Logger) (*MQTT, error) {
	d := &MQTT{
		pubsub:    pubsub,
		channelID: channelID,
		timeout:   timeout,
		logger:    logger,
		pending:   make(map[string]chan response),
	}

	topic := fmt.Sprintf(resultsTopicTmpl, channelID)
	if err := pubsub.Subscribe(ctx, topic, d.handleResult); err != nil {
		return nil, fmt.Errorf("failed to subscribe to results topic: %w", err)
	}

	return d, nil
}

func (d *MQTT) Fit(ctx context.Context, agentID int, params model.Parameters, config map[string]any) (FitResult, error) {
	topic := fmt.Sprintf(fitTopicTemplate, d.channelID, agentID)
	resp, err := d.roundTrip(ctx, topic, agentID, params, config)
	if err != nil {
		return FitResult{}, err
	}

	return FitResult{
		AgentID:     resp.AgentID,
		Parameters:  resp.Parameters,
		NumExamples: resp.NumExamples,
		Metrics:     resp.Metrics,
	}, nil
}

func (d *MQTT) Evaluate(ctx context.Context, agentID int, params model.Parameters, config map[string]any) (EvalResult, error) {
	topic := fmt.Sprintf(evalTopicTemplate, d.channelID, agentID)
	resp, err := d.roundTrip(ctx, topic, agentID, params, config)
	if err != nil {
		return EvalResult{}, err
	}

	return EvalResult{
		AgentID:     resp.AgentID,
		Loss:        resp.Loss,
		NumExamples: resp.NumExamples,
		Metrics:     resp.Metrics,
	}, nil
}

func (d *MQTT) roundTrip(ctx context.Context, topic string, agentID int, params model.Parameters, config map[string]any) (response, error) {
	requestID := uuid.NewString()
	ch := make(chan response, 1)

	d.mu.Lock()
	d.pending[requestID] = ch
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.pending, requestID)
		d.mu.Unlock()
	}()

	msg := map[string]any{
		"request_id": requestID,
		"agent_id":   agentID,
		"parameters": params,
		"config":     config,
	}
	if err := d.pubsub.Publish(ctx, topic, msg); err != nil {
		return response{}, fmt.Errorf("agent %d: failed to publish request: %w", agentID, err)
	}

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return response{}, fmt.Errorf("agent %d reported failure: %s", agentID, resp.Error)
		}

		return resp, nil
	case <-timer.C:
		return response{}, fmt.Errorf("agent %d: %w", agentID, errors.ErrDispatchTimeout)
	case <-ctx.Done():
		return response{}, fmt.Errorf("agent %d: %w", agentID, errors.ErrDispatchTimeout)
	}
}

func (d *MQTT) handleResult(_ string, msg map[string]any) error {
	// Re-encode through JSON to recover the typed response shape.
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}
	if resp.RequestID == "" {
		return fmt.Errorf("result without request_id")
	}

	d.mu.Lock()
	ch, ok := d.pending[resp.RequestID]
	d.mu.Unlock()
	if !ok {
		// Late answer after timeout: a non-response, not an error.
		d.logger.Warn("Dropping result for unknown or expired request",
			slog.String("request_id", resp.RequestID),
			slog.Int("agent_id", resp.AgentID))

		return nil
	}

	select {
	case ch <- resp:
	default:
	}

	return nil
}
