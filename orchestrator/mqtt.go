package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/cairo-thws/fedt4t/agent"
	"github.com/cairo-thws/fedt4t/pkg/mqtt"
)

// Subscribe wires participant liveness messages into the registry. Alive
// announcements mark an agent reachable; the broker's last-will offline
// message marks it unreachable.
func Subscribe(ctx context.Context, channelID string, pubsub mqtt.PubSub, registry *agent.Registry, logger *slog.Logger) error {
	baseTopic := "channels/" + channelID + "/messages"

	if err := pubsub.Subscribe(ctx, baseTopic+"/control/participant/alive", handleAlive(ctx, registry, logger)); err != nil {
		return err
	}

	return pubsub.Subscribe(ctx, baseTopic+"/control/participant/offline", handleOffline(ctx, registry, logger))
}

func handleAlive(ctx context.Context, registry *agent.Registry, logger *slog.Logger) mqtt.Handler {
	return func(_ string, msg map[string]any) error {
		id, err := agentID(msg)
		if err != nil {
			return err
		}
		if err := registry.MarkReachable(id); err != nil {
			return err
		}
		logger.DebugContext(ctx, "Participant alive", slog.Int("agent_id", id))

		return nil
	}
}

func handleOffline(ctx context.Context, registry *agent.Registry, logger *slog.Logger) mqtt.Handler {
	return func(_ string, msg map[string]any) error {
		id, err := agentID(msg)
		if err != nil {
			return err
		}
		if err := registry.MarkUnreachable(id); err != nil {
			return err
		}
		logger.InfoContext(ctx, "Participant went offline", slog.Int("agent_id", id))

		return nil
	}
}

func agentID(msg map[string]any) (int, error) {
	// JSON numbers arrive as float64; the broker's last-will payload carries
	// the id as a string.
	switch raw := msg["agent_id"].(type) {
	case float64:
		return int(raw), nil
	case string:
		id, err := strconv.Atoi(raw)
		if err != nil {
			return 0, errors.New("invalid agent_id")
		}

		return id, nil
	default:
		return 0, errors.New("invalid agent_id")
	}
}
