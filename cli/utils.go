package cli

import (
	"fmt"

	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

var (
	okColor    = color.New(color.FgGreen)
	errColor   = color.New(color.FgRed)
	usageColor = color.New(color.FgYellow)
)

func logJSONCmd(cmd cobra.Command, iList ...interface{}) {
	for _, i := range iList {
		m, err := prettyjson.Marshal(i)
		if err != nil {
			logErrorCmd(cmd, err)

			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(m))
	}
}

func logErrorCmd(cmd cobra.Command, err error) {
	errColor.Fprintf(cmd.ErrOrStderr(), "\nerror: %s\n\n", err.Error())
}

func logUsageCmd(cmd cobra.Command, u string) {
	usageColor.Fprintf(cmd.OutOrStdout(), "\nusage: %s\n\n", u)
}

func logOKCmd(cmd cobra.Command) {
	okColor.Fprintf(cmd.OutOrStdout(), "\nok\n\n")
}

func logSuccessCmd(cmd cobra.Command, msg string) {
	okColor.Fprintln(cmd.OutOrStdout(), msg)
}
