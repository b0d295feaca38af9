package main

import (
	"fmt"
	"os"

	"github.com/aretw0/unveil/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "unveil",
	Short: "Unveil is a progressive disclosure engine",
	Long: `Unveil reveals the sections of a lease explanation page one at a time, driven by
explicit actions, scrolling and dwell time, and finishes with a timed cascade.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every reveal and cascade event")
}

func globalOptions(cmd *cobra.Command) cli.GlobalOptions {
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		logLevel = "debug"
	}
	return cli.GlobalOptions{ConfigPath: configPath, LogLevel: logLevel, Debug: debug}
}

// addStoreFlags registers the view store flags on cmd.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("redis-url", os.Getenv("UNVEIL_REDIS_URL"), "Redis URL for the shared view store (e.g. redis://localhost:6379/0)")
	cmd.Flags().String("redis-prefix", "", "Key prefix for views in Redis")
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	url, _ := cmd.Flags().GetString("redis-url")
	prefix, _ := cmd.Flags().GetString("redis-prefix")
	return cli.StoreOptions{RedisURL: url, RedisPrefix: prefix}
}
