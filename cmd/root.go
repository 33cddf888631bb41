package cmd

import (
	"fmt"

	"github.com/sentinela-io/sentinela/version"
	"github.com/spf13/cobra"
)

var isDevEnv bool

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd = createRootCmd()
	rootCmd.Version = fmt.Sprintf("v%s", version.Version)
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "sentinela",
		Short: `sentinela is an emergency alert & incident reporting service.

Users register their emergency contacts, report incidents, and trigger
panic alerts that fan out to their contacts over websocket and SMS.`,
	}

	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}
