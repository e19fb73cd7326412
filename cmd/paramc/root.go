package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zoobzio/param"
)

const (
	Version = "0.1.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "paramc",
		Short: "answer keymap compile events",
		Long: fmt.Sprintf(`paramc (v%s)

Validates compile events the way the compile lambda does and prints the
response envelope. Builds are dry runs.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of paramc",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paramc v%s\n", Version)
		},
	}

	serializersCmd = &cobra.Command{
		Use:   "serializers",
		Short: "List the builtin serializers",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range param.DefaultRegistry().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.AddCommand(handleCmd)
	RootCmd.AddCommand(serializersCmd)
	RootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("paramc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
