package fedt4td

import (
	"context"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cairo-thws/fedt4t/pkg/server"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	defHTTPPort   = "7070"
	envPrefixHTTP = "ORCHESTRATOR_HTTP_"
	pathEnv       = ".env"
)

type orchestratorEnv struct {
	LogLevel       string        `env:"ORCHESTRATOR_LOG_LEVEL"      envDefault:"info"`
	InstanceID     string        `env:"ORCHESTRATOR_INSTANCE_ID"`
	MQTTAddress    string        `env:"ORCHESTRATOR_MQTT_ADDRESS"   envDefault:"tcp://localhost:1883"`
	MQTTQoS        uint8         `env:"ORCHESTRATOR_MQTT_QOS"       envDefault:"2"`
	MQTTTimeout    time.Duration `env:"ORCHESTRATOR_MQTT_TIMEOUT"   envDefault:"30s"`
	ChannelID      string        `env:"ORCHESTRATOR_CHANNEL_ID"`
	ClientID       string        `env:"ORCHESTRATOR_CLIENT_ID"`
	ClientKey      string        `env:"ORCHESTRATOR_CLIENT_KEY"`
	ExperimentFile string        `env:"ORCHESTRATOR_EXPERIMENT_FILE"`
	Loopback       bool          `env:"ORCHESTRATOR_LOOPBACK"       envDefault:"false"`
	WasmAggregator string        `env:"ORCHESTRATOR_WASM_AGGREGATOR"`
	OTELURL        url.URL       `env:"ORCHESTRATOR_OTEL_URL"`
	TraceRatio     float64       `env:"ORCHESTRATOR_TRACE_RATIO"    envDefault:"0"`
}

type participantEnv struct {
	LogLevel    string        `env:"PARTICIPANT_LOG_LEVEL"   envDefault:"info"`
	AgentID     int           `env:"PARTICIPANT_AGENT_ID"    envDefault:"0"`
	Name        string        `env:"PARTICIPANT_NAME"`
	MQTTAddress string        `env:"PARTICIPANT_MQTT_ADDRESS" envDefault:"tcp://localhost:1883"`
	MQTTQoS     uint8         `env:"PARTICIPANT_MQTT_QOS"    envDefault:"2"`
	MQTTTimeout time.Duration `env:"PARTICIPANT_MQTT_TIMEOUT" envDefault:"30s"`
	ChannelID   string        `env:"PARTICIPANT_CHANNEL_ID"`
	ClientID    string        `env:"PARTICIPANT_CLIENT_ID"`
	ClientKey   string        `env:"PARTICIPANT_CLIENT_KEY"`
	NumExamples int           `env:"PARTICIPANT_NUM_EXAMPLES" envDefault:"200"`
	Features    int           `env:"PARTICIPANT_FEATURES"    envDefault:"10"`
	Epochs      int           `env:"PARTICIPANT_EPOCHS"      envDefault:"5"`
	LearnRate   float64       `env:"PARTICIPANT_LEARN_RATE"  envDefault:"0.1"`
	Seed        int64         `env:"PARTICIPANT_SEED"        envDefault:"42"`
}

func NewOrchestratorCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "orchestrator [start]",
		Short: "Orchestrator management",
		Long:  `Run the round orchestrator.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start orchestrator",
		Long:  `Start orchestrator.`,
		Run: func(cmd *cobra.Command, _ []string) {
			loadDotEnv()

			ecfg := orchestratorEnv{}
			if err := env.Parse(&ecfg); err != nil {
				log.Fatalf("failed to load configuration : %s", err.Error())
			}
			if ecfg.InstanceID == "" {
				ecfg.InstanceID = uuid.NewString()
			}

			httpServerConfig := server.Config{Port: defHTTPPort}
			if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
				log.Fatalf("failed to load HTTP server configuration : %s", err.Error())
			}

			cfg := OrchestratorConfig{
				LogLevel:       ecfg.LogLevel,
				InstanceID:     ecfg.InstanceID,
				MQTTAddress:    ecfg.MQTTAddress,
				MQTTQoS:        ecfg.MQTTQoS,
				MQTTTimeout:    ecfg.MQTTTimeout,
				ChannelID:      ecfg.ChannelID,
				ClientID:       ecfg.ClientID,
				ClientKey:      ecfg.ClientKey,
				ExperimentFile: ecfg.ExperimentFile,
				Loopback:       ecfg.Loopback,
				WasmAggregator: ecfg.WasmAggregator,
				Server:         httpServerConfig,
				OTELURL:        ecfg.OTELURL,
				TraceRatio:     ecfg.TraceRatio,
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			if err := StartOrchestrator(ctx, cancel, cfg); err != nil {
				cmd.PrintErrf("failed to start orchestrator: %s", err.Error())
			}
			cancel()
		},
	})

	return &cmd
}

func NewParticipantCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "participant [start]",
		Short: "Participant management",
		Long:  `Run one remote participant.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start participant",
		Long:  `Start participant.`,
		Run: func(cmd *cobra.Command, _ []string) {
			loadDotEnv()

			ecfg := participantEnv{}
			if err := env.Parse(&ecfg); err != nil {
				log.Fatalf("failed to load configuration : %s", err.Error())
			}

			cfg := ParticipantConfig{
				LogLevel:    ecfg.LogLevel,
				AgentID:     ecfg.AgentID,
				Name:        ecfg.Name,
				MQTTAddress: ecfg.MQTTAddress,
				MQTTQoS:     ecfg.MQTTQoS,
				MQTTTimeout: ecfg.MQTTTimeout,
				ChannelID:   ecfg.ChannelID,
				ClientID:    ecfg.ClientID,
				ClientKey:   ecfg.ClientKey,
				NumExamples: ecfg.NumExamples,
				Features:    ecfg.Features,
				Epochs:      ecfg.Epochs,
				LearnRate:   ecfg.LearnRate,
				Seed:        ecfg.Seed,
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			if err := StartParticipant(ctx, cancel, cfg); err != nil {
				cmd.PrintErrf("failed to start participant: %s", err.Error())
			}
			cancel()
		},
	})

	return &cmd
}

func loadDotEnv() {
	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}
}
