package main

import (
	"log"

	"github.com/cairo-thws/fedt4t/cli"
	"github.com/cairo-thws/fedt4t/pkg/sdk"
	"github.com/spf13/cobra"
)

const (
	defOrchestratorURL = "http://localhost:7070"
	defTLSVerification = false
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fedt4t-cli",
		Short: "FedT4T CLI",
		Long:  `FedT4T CLI is a command line interface for inspecting a running orchestrator.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			sdkConf := sdk.Config{
				OrchestratorURL: defOrchestratorURL,
				TLSVerification: defTLSVerification,
			}
			s := sdk.NewSDK(sdkConf)
			cli.SetSDK(s)
		},
	}

	rootCmd.AddCommand(cli.NewAgentsCmd())
	rootCmd.AddCommand(cli.NewRoundsCmd())
	rootCmd.AddCommand(cli.NewConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
