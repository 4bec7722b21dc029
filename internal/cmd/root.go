package cmd

import (
	"strings"

	"github.com/sean-lai-sh/agent-manager/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "agent-manager",
	Short: "Local human-in-the-loop agent orchestrator",
	Long: `Agent-manager coordinates planning and execution agents for a single
project. A planner agent turns a goal into a reviewed plan through
clarification rounds; execution agents carry out the approved tasks.
Every plan adoption and execution gate passes through explicit user
approval, and all state lives in one local project document.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// jsonOutput switches command output to machine-readable JSON.
var jsonOutput bool

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/agent-manager/config.yaml)")
	rootCmd.PersistentFlags().String("state-dir", "", "directory holding project state (default: XDG state dir)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON output")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("paths.state_dir", rootCmd.PersistentFlags().Lookup("state-dir"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/agent-manager")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("AGENT_MANAGER")
	// Replace dots with underscores for nested keys in env vars
	// e.g., AGENT_MANAGER_PLANNER_BACKEND for planner.backend
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
