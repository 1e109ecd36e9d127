package fedt4td

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cairo-thws/fedt4t/participant"
	"github.com/cairo-thws/fedt4t/pkg/mqtt"
)

const participantSvcName = "participant"

type ParticipantConfig struct {
	LogLevel    string
	AgentID     int
	Name        string
	MQTTAddress string
	MQTTQoS     uint8
	MQTTTimeout time.Duration
	ChannelID   string
	ClientID    string
	ClientKey   string
	NumExamples int
	Features    int
	Epochs      int
	LearnRate   float64
	Seed        int64
}

func StartParticipant(ctx context.Context, cancel context.CancelFunc, cfg ParticipantConfig) error {
	defer cancel()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("%s-%d", participantSvcName, cfg.AgentID)
	}
	pubsub, err := mqtt.NewPubSub(cfg.MQTTAddress, cfg.MQTTQoS, clientID, cfg.ClientID, cfg.ClientKey, cfg.ChannelID, cfg.MQTTTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mqtt pubsub: %s", err.Error())
	}

	trainer := participant.NewSGDTrainer(cfg.AgentID, cfg.NumExamples, cfg.Features, cfg.Epochs, cfg.LearnRate, cfg.Seed)
	svc := participant.NewService(cfg.AgentID, cfg.Name, trainer, pubsub, cfg.ChannelID, logger)

	return svc.Run(ctx)
}
