// Command minifeed is a terminal feed reader that keeps a live, scrollable
// item list in sync with a remote item source. It also ships the reference
// source (serve) and an event log viewer (events).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abelbrown/minifeed/internal/config"
)

var version = "dev"

var (
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "minifeed",
	Short:         "Incremental feed reader for the terminal",
	Long:          "minifeed polls a feed server for new items and merges them into a scroll-stable list.",
	Version:       version,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that do not use it
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "events" {
			return nil
		}

		path, err := config.ResolvePath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.Flags().StringVar(&startRoute, "route", "", "Start route, e.g. #/feed/<id>")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("minifeed", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to ~/.config/minifeed/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}
		if err := config.WriteDefault(target); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Printf("Created config: %s\n", target)
		return nil
	},
}
