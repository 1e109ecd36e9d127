package cli

import (
	"github.com/cairo-thws/fedt4t/pkg/sdk"
	"github.com/spf13/cobra"
)

var osdk sdk.SDK

// SetSDK installs the client every command talks through.
func SetSDK(s sdk.SDK) {
	osdk = s
}

func NewAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents [list|leaderboard]",
		Short: "Agents inspection",
		Long:  `List registered agents and view the tournament leaderboard.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List agents",
		Long:  `List registered agents with strategy, liveness and score.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			page, err := osdk.ListAgents()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, page)
		},
	}

	leaderboardCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "View leaderboard",
		Long:  `View agents ordered by cumulative tournament score.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			board, err := osdk.Leaderboard()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, board)
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(leaderboardCmd)

	return cmd
}
