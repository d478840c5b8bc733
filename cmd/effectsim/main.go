// Effectsim plays an effect or a playlist on a console strip for a fixed time. It needs no
// hardware, broker or saved settings.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-lightstream/internal/app"
	"github.com/coreman2200/funtimes-lightstream/internal/config"
	"github.com/coreman2200/funtimes-lightstream/internal/logging"
)

var (
	effect   string
	playlist string
	pixels   int
	bpm      float64
	duration time.Duration
	level    string
)

var rootCmd = &cobra.Command{
	Use:   "effectsim",
	Short: "Simulate an effect on a console strip",
	Example: `  effectsim --effect DancingPoints --bpm 128 --for 10s
  effectsim --playlist show.yaml --pixels 60`,
	RunE: run,
}

func main() {
	rootCmd.Flags().StringVar(&effect, "effect", "Fade", "effect to start")
	rootCmd.Flags().StringVar(&playlist, "playlist", "", "playlist YAML, overrides --effect")
	rootCmd.Flags().IntVar(&pixels, "pixels", 30, "pixel count")
	rootCmd.Flags().Float64Var(&bpm, "bpm", 120, "tempo of the generated audio")
	rootCmd.Flags().DurationVar(&duration, "for", 12*time.Second, "how long to run")
	rootCmd.Flags().StringVar(&level, "log-level", "debug", "log level; debug shows frames")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	cfg.Output.Device = "console"
	cfg.Output.Pixels = pixels
	cfg.Store = config.Store{Kind: "memory", Key: "effectsim"}
	cfg.Server.Enabled = false
	cfg.Audio = config.Audio{Source: "generator", BPM: bpm, Bands: 16}
	cfg.Effect = config.Effect{Start: effect, Playlist: playlist, Loop: true}
	cfg.Logging.Level = level
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Setup(cfg.Logging, os.Stderr)

	ctx, cancel := context.WithTimeout(cmd.Context(), duration)
	defer cancel()

	core, err := app.InitCore(ctx, cfg)
	if err != nil {
		return err
	}
	<-ctx.Done()
	st := core.Stats()
	log.Info().Str("effect", core.ActiveEffect()).Uint64("sent", st.Sent).Uint64("failed", st.Failed).Msg("done")
	return core.Close()
}
