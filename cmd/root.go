package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const app = "voxhire-server"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "voxhire-server relays realtime voice interviews between candidates and an AI interviewer",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(loadDotenv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is environment-only configuration)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
}

func loadDotenv() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()
}
