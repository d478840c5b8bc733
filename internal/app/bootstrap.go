// Package app assembles the controller from configuration: settings, output scheduler, device,
// effects, audio, playlist and the optional network surfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lightstream/internal/audio"
	"github.com/coreman2200/funtimes-lightstream/internal/config"
	"github.com/coreman2200/funtimes-lightstream/internal/diagnostics"
	"github.com/coreman2200/funtimes-lightstream/internal/discovery"
	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/effect/animation"
	"github.com/coreman2200/funtimes-lightstream/internal/effect/music"
	"github.com/coreman2200/funtimes-lightstream/internal/output"
	"github.com/coreman2200/funtimes-lightstream/internal/sequence"
	"github.com/coreman2200/funtimes-lightstream/internal/server"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
	"github.com/coreman2200/funtimes-lightstream/internal/settings/store"
	"github.com/coreman2200/funtimes-lightstream/internal/telemetry"
	"github.com/coreman2200/funtimes-lightstream/internal/transport/mqtt"
)

// Version is stamped at build time.
var Version = "dev"

type Core struct {
	Cfg       *config.Config
	Settings  *settings.Registry
	Output    *output.Scheduler
	Catalog   *effect.Catalog
	Runner    *effect.Runner
	Diag      *diagnostics.Bus
	Hub       *server.Hub
	Server    *server.Server
	Conductor *Conductor

	mqtt   *mqtt.Client
	influx *telemetry.Influx
	closer []io.Closer

	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    zerolog.Logger
}

// NewCatalog returns a catalog holding every built-in effect. With a registry, the settings of
// every effect are declared up front.
func NewCatalog(reg *settings.Registry) *effect.Catalog {
	c := effect.NewCatalog()
	animation.Register(c)
	music.Register(c)
	c.Declare(reg)
	return c
}

// OpenStore builds the settings store named by cfg.
func OpenStore(cfg config.Store) (settings.Store, io.Closer, error) {
	switch cfg.Kind {
	case "memory":
		return store.NewMemory(), nil, nil
	case "sqlite":
		s, err := store.OpenSQLite(cfg.Path, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "file", "":
		f, err := store.NewFile(cfg.Path)
		return f, nil, err
	default:
		return nil, nil, fmt.Errorf("%w: unknown store kind %q", config.ErrInvalid, cfg.Kind)
	}
}

// InitCore builds and starts the controller. Network collaborators that fail to connect are
// logged and skipped unless the output device depends on them.
func InitCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	c := &Core{Cfg: cfg, Diag: diagnostics.NewBus(64), Hub: server.NewHub(), log: log.With().Str("component", "app").Logger()}

	// 1) Settings
	st, closer, err := OpenStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	if closer != nil {
		c.closer = append(c.closer, closer)
	}
	c.Settings = settings.New(st)
	n := c.Settings.Load(cfg.Store.Key)
	c.log.Info().Int("settings", n).Str("store", cfg.Store.Kind).Msg("settings loaded")

	// 2) Network collaborators
	if cfg.MQTT.Enabled {
		if c.mqtt, err = mqtt.Connect(cfg.MQTT); err != nil {
			c.log.Warn().Err(err).Msg("mqtt unavailable")
			c.mqtt = nil
		}
	}
	var rec output.Recorders
	if cfg.Influx.Enabled {
		if c.influx, err = telemetry.Connect(cfg.Influx); err != nil {
			c.log.Warn().Err(err).Msg("influx unavailable")
			c.influx = nil
		} else {
			rec = append(rec, c.influx)
		}
	}

	// 3) Output
	brightness := cfg.Output.Brightness
	if b, ok := settings.Lookup[settings.Int](c.Settings, output.SettingBrightness); ok {
		brightness = b.V
	}
	opts := output.Options{
		Brightness:  &brightness,
		Interval:    cfg.Output.Interval(),
		WhiteCap:    cfg.Output.Power.WhiteCap,
		Settings:    c.Settings,
		SettingsKey: cfg.Store.Key,
	}
	if len(rec) > 0 {
		opts.Recorder = rec
	}
	c.Output = output.NewScheduler(opts)

	dev, err := c.buildDevice()
	if err != nil {
		c.closeCollaborators()
		return nil, err
	}
	if err := c.Output.SetActiveDevice(dev); err != nil {
		c.log.Warn().Err(err).Msg("device starts in failed state")
	}

	// 4) Effects
	c.Catalog = NewCatalog(c.Settings)
	c.Runner = effect.NewRunner(effect.Env{Settings: c.Settings, Output: c.Output}, c.Catalog)
	c.Runner.OnStart(func(name string) {
		c.Diag.Push(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "EFFECT.STARTED", Summary: name})
	})
	c.Conductor = NewConductor(c.Runner, c.Settings)

	// 5) Surfaces
	c.Server = server.New(c, c.Hub, c.Diag)
	c.publishSettingChanges()
	c.subscribeCommands()

	if cfg.Effect.Playlist != "" {
		prog, err := sequence.LoadFile(cfg.Effect.Playlist)
		if err != nil {
			c.log.Warn().Err(err).Str("playlist", cfg.Effect.Playlist).Msg("playlist not loaded")
		} else {
			prog.Loop = prog.Loop || cfg.Effect.Loop
			c.Conductor.Play(prog)
		}
	}
	if !c.Conductor.Playing() && cfg.Effect.Start != "" {
		if err := c.Runner.StartNamed(cfg.Effect.Start); err != nil {
			c.log.Warn().Err(err).Msg("start effect")
		}
	}

	// 6) Background loops
	ctx, c.cancel = context.WithCancel(ctx)
	c.goRun(func() { c.Conductor.Run(ctx, 30) })
	if src := c.audioSource(); src != nil {
		c.goRun(func() {
			if err := src.Run(ctx, c.Runner.Feed); err != nil {
				c.log.Warn().Err(err).Msg("audio source stopped")
			}
		})
	}
	if c.influx != nil {
		c.goRun(func() { c.influx.Run(ctx, time.Second) })
	}
	if cfg.Server.Enabled {
		c.goRun(func() {
			if err := c.Server.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
				c.log.Error().Err(err).Msg("server stopped")
			}
		})
		c.goRun(func() { c.Server.Mirror(ctx, 50*time.Millisecond) })
	}
	if cfg.Discovery.Enabled {
		c.advertise(dev)
	}
	return c, nil
}

func (c *Core) goRun(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *Core) audioSource() audio.Source {
	switch c.Cfg.Audio.Source {
	case "generator":
		return audio.NewGenerator(c.Cfg.Audio.BPM, c.Cfg.Audio.Bands, time.Now().UnixNano())
	case "mqtt":
		if c.mqtt == nil {
			c.log.Warn().Msg("audio source mqtt needs mqtt.enabled")
			return nil
		}
		return audio.NewMQTTSource(c.mqtt, c.Cfg.Audio.Topic)
	default:
		return nil
	}
}

func (c *Core) advertise(dev output.Device) {
	_, portStr, err := net.SplitHostPort(c.Cfg.Server.Addr)
	port, perr := strconv.Atoi(portStr)
	if err != nil || perr != nil {
		c.log.Warn().Str("addr", c.Cfg.Server.Addr).Msg("cannot advertise without a server port")
		return
	}
	adv, err := discovery.Advertise(discovery.Announcement{
		Instance: c.Cfg.Discovery.Instance,
		Port:     port,
		DeviceID: dev.ID(),
		Device:   c.Cfg.Output.Device,
		Pixels:   dev.PixelCount(),
		Version:  Version,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("mdns advertise")
		return
	}
	c.closer = append(c.closer, closerFunc(func() error { adv.Shutdown(); return nil }))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Close stops every loop, blanks and releases the device, persists settings and disconnects.
func (c *Core) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.Runner.Stop()
	err := c.Output.Close()
	c.Hub.Close()
	return errors.Join(err, c.closeCollaborators())
}

func (c *Core) closeCollaborators() error {
	var errs []error
	if c.mqtt != nil {
		errs = append(errs, c.mqtt.Close())
	}
	if c.influx != nil {
		errs = append(errs, c.influx.Close())
	}
	for i := len(c.closer) - 1; i >= 0; i-- {
		errs = append(errs, c.closer[i].Close())
	}
	return errors.Join(errs...)
}
