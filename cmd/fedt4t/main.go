package main

import (
	"log"

	"github.com/cairo-thws/fedt4t/fedt4td"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fedt4t",
		Short: "FedT4T Daemon",
		Long:  `FedT4T Daemon runs the round orchestrator and remote participants.`,
	}

	orchestratorCmd := fedt4td.NewOrchestratorCmd()
	participantCmd := fedt4td.NewParticipantCmd()

	rootCmd.AddCommand(orchestratorCmd)
	rootCmd.AddCommand(participantCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
