package commands

import (
	"github.com/spf13/cobra"
)

const appName = "lingoleap"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          appName,
		Short:        "LingoLeap learning API",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		newServeCommand(),
		newSeedAdminCommand(),
	)

	return rootCmd
}
