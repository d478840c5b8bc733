// Lightstream drives an addressable LED strip from animated and music-reactive effects.
//
// Usage:
//
//	lightstream [command] [flags]
//
// Running without a command starts the controller with the configuration at --config.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-lightstream/internal/app"
	"github.com/coreman2200/funtimes-lightstream/internal/config"
	"github.com/coreman2200/funtimes-lightstream/internal/logging"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "lightstream",
	Short:   "LED strip effect controller",
	Version: app.Version,
	RunE:    runController,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "lightstream.yaml", "path to the YAML configuration")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(effectsCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config, falling back to defaults when the file does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, err
	}
	logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		log.Warn().Str("path", configPath).Msg("config not found, using defaults")
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lightstream %s\n", app.Version)
	},
}
