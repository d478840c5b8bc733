package main

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-lightstream/internal/app"
)

var runFlags struct {
	device     string
	pixels     int
	brightness int
	intervalMs int
	effect     string
	playlist   string
	addr       string
	audio      string
	mqtt       bool
	discovery  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the controller",
	Long: `Start the controller: stream the active effect to the configured output device until
interrupted. Flags override the matching configuration keys.`,
	Example: `  # Console output, no hardware
  lightstream run --device console --pixels 30

  # Play a playlist on the strip
  lightstream run --playlist show.yaml`,
	RunE: runController,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		f := c.Flags()
		f.StringVar(&runFlags.device, "device", "", "output device (strip, console, mqtt, preview)")
		f.IntVar(&runFlags.pixels, "pixels", 0, "pixel count")
		f.IntVar(&runFlags.brightness, "brightness", 0, "brightness 0..100")
		f.IntVar(&runFlags.intervalMs, "interval", 0, "frame interval in milliseconds")
		f.StringVar(&runFlags.effect, "effect", "", "effect to start")
		f.StringVar(&runFlags.playlist, "playlist", "", "playlist YAML to play")
		f.StringVar(&runFlags.addr, "addr", "", "HTTP listen address")
		f.StringVar(&runFlags.audio, "audio", "", "audio source (generator, mqtt, none)")
		f.BoolVar(&runFlags.mqtt, "mqtt", false, "connect to the MQTT broker")
		f.BoolVar(&runFlags.discovery, "mdns", false, "advertise over mDNS")
	}
}

func runController(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("device") {
		cfg.Output.Device = runFlags.device
	}
	if f.Changed("pixels") {
		cfg.Output.Pixels = runFlags.pixels
	}
	if f.Changed("brightness") {
		cfg.Output.Brightness = runFlags.brightness
	}
	if f.Changed("interval") {
		cfg.Output.IntervalMs = runFlags.intervalMs
	}
	if f.Changed("effect") {
		cfg.Effect.Start = runFlags.effect
	}
	if f.Changed("playlist") {
		cfg.Effect.Playlist = runFlags.playlist
	}
	if f.Changed("addr") {
		cfg.Server.Enabled = true
		cfg.Server.Addr = runFlags.addr
	}
	if f.Changed("audio") {
		cfg.Audio.Source = runFlags.audio
	}
	if f.Changed("mqtt") {
		cfg.MQTT.Enabled = runFlags.mqtt
	}
	if f.Changed("mdns") {
		cfg.Discovery.Enabled = runFlags.discovery
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core, err := app.InitCore(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info().Str("device", cfg.Output.Device).Int("pixels", cfg.Output.Pixels).Msg("lightstream running")
	<-ctx.Done()
	log.Info().Msg("shutting down")
	return core.Close()
}

