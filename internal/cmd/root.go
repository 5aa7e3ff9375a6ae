// Package cmd wires the opsdeck CLI: the interactive console plus a few
// one-shot subcommands for scripting against the fulfillment services.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tempest-ops/opsdeck/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "opsdeck",
	Short: "Operations console for warehouse fulfillment",
	Long: `Opsdeck is a terminal console for warehouse operators. It watches
waves and orders as their workflows execute, gates operator actions on live
workflow state, and sends release, pick, pack, rate, and shipping signals to
the fulfillment services.

Run it with no arguments to open the interactive console.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/opsdeck/config.yaml)")
	rootCmd.PersistentFlags().String("token", "", "bearer token for the fulfillment services")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("services.token", rootCmd.PersistentFlags().Lookup("token"))
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
		viper.AddConfigPath("$HOME/.config/opsdeck")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("OPSDECK")
	// Replace dots with underscores for nested keys in env vars
	// e.g., OPSDECK_SERVICES_WMS_BASE_URL for services.wms_base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
