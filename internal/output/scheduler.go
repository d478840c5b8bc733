package output

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const (
	// IdleWait is how long the loop sleeps while it has no frame or no device.
	IdleWait = 10 * time.Millisecond

	MinInterval     = time.Millisecond
	DefaultInterval = 20 * time.Millisecond

	// blackFrames is the number of all-off frames Stop sends before deactivating.
	blackFrames = 2

	SettingBrightness = "out.brightness"
	SettingLastDevice = "out.lastdevice"
)

// Recorder observes the loop. Calls happen on the loop goroutine and must not block.
type Recorder interface {
	FrameSent(deviceID string, took time.Duration)
	FrameFailed(deviceID string, err error)
}

type Options struct {
	// Brightness is the initial 0..100 brightness; nil means 100.
	Brightness *int
	Interval   time.Duration
	// WhiteCap enables the per-pixel power limiter when in (0,1).
	WhiteCap float64
	Recorder Recorder

	// Settings and SettingsKey are used by Close to persist brightness and the last device.
	Settings    *settings.Registry
	SettingsKey string
}

type activeDevice struct{ Device }

// Scheduler owns the active device and the latest-frame slot, and runs the loop that pushes
// the latest frame to the device once per interval.
type Scheduler struct {
	latest     atomic.Pointer[frame.Frame]
	active     atomic.Pointer[activeDevice]
	brightness atomic.Int32
	interval   atomic.Int64

	whiteCap    float64
	recorder    Recorder
	settings    *settings.Registry
	settingsKey string

	// mu serializes Start, Stop and SetActiveDevice. The loop never takes it.
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	sent   atomic.Uint64
	failed atomic.Uint64

	log    zerolog.Logger
	errLog zerolog.Logger
}

func NewScheduler(opts Options) *Scheduler {
	l := log.With().Str("component", "output").Logger()
	s := &Scheduler{
		whiteCap:    opts.WhiteCap,
		recorder:    opts.Recorder,
		settings:    opts.Settings,
		settingsKey: opts.SettingsKey,
		log:         l,
		errLog:      l.Sample(&zerolog.BurstSampler{Burst: 3, Period: 5 * time.Second}),
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	b := 100
	if opts.Brightness != nil {
		b = *opts.Brightness
	}
	s.SetBrightness(b)
	s.SetFrameInterval(opts.Interval)
	return s
}

// PublishFrame replaces the latest frame with a copy of f. The last writer wins.
func (s *Scheduler) PublishFrame(f frame.Frame) {
	c := f.Clone()
	s.latest.Store(&c)
}

// LatestFrame returns a copy of the most recently published frame, nil if none.
func (s *Scheduler) LatestFrame() frame.Frame {
	p := s.latest.Load()
	if p == nil {
		return nil
	}
	return p.Clone()
}

// SetBrightness clamps b to 0..100. The next iteration uses it.
func (s *Scheduler) SetBrightness(b int) {
	s.brightness.Store(int32(min(max(b, 0), 100)))
}

func (s *Scheduler) Brightness() int { return int(s.brightness.Load()) }

// SetFrameInterval sets the wait between frames, at least MinInterval.
func (s *Scheduler) SetFrameInterval(d time.Duration) {
	s.interval.Store(int64(max(d, MinInterval)))
}

func (s *Scheduler) FrameInterval() time.Duration { return time.Duration(s.interval.Load()) }

// ActiveDevice returns the active device, nil when none.
func (s *Scheduler) ActiveDevice() Device {
	if a := s.active.Load(); a != nil {
		return a.Device
	}
	return nil
}

// PixelCount is the active device's pixel count, 0 without a device.
func (s *Scheduler) PixelCount() int {
	if d := s.ActiveDevice(); d != nil {
		return d.PixelCount()
	}
	return 0
}

type Stats struct {
	Running bool
	Sent    uint64
	Failed  uint64
}

func (s *Scheduler) Stats() Stats {
	return Stats{Running: s.Running(), Sent: s.sent.Load(), Failed: s.failed.Load()}
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// SetActiveDevice halts the loop, swaps the device and restarts the loop. The previous device
// is deactivated only when its id differs from d's; a same-id swap is a parameter refresh.
// A nil d clears the active device. The returned error is d's activation failure, if any;
// d stays active in the Failed state either way.
func (s *Scheduler) SetActiveDevice(d Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.halt()
	defer s.start()

	prev := s.ActiveDevice()
	if prev != nil {
		switch {
		case d == nil || prev.ID() != d.ID():
			if err := prev.Deactivate(); err != nil {
				s.log.Warn().Err(err).Str("device", prev.ID()).Msg("deactivate previous device")
			}
		default:
			s.log.Info().Str("device", d.ID()).Msg("same device id, keeping connection")
		}
	}

	if d == nil {
		s.active.Store(nil)
		return nil
	}
	s.active.Store(&activeDevice{d})

	if d.State() == Connected {
		return nil
	}
	if err := d.Activate(); err != nil {
		s.log.Error().Err(err).Str("device", d.ID()).Msg("activate device")
		return fmt.Errorf("activate %s: %w", d.ID(), err)
	}
	s.log.Info().Str("device", d.ID()).Int("pixels", d.PixelCount()).Msg("device active")
	return nil
}

// Start spawns the loop goroutine unless it is already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start()
}

// Stop halts the loop and waits for it to exit. If a device is active it is sent black
// frames and deactivated. Stop is safe to call repeatedly from any goroutine.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.halt()

	d := s.ActiveDevice()
	if d == nil {
		return
	}
	black := frame.Fill(frame.Black, d.PixelCount())
	for i := 0; i < blackFrames; i++ {
		if err := s.send(d, black); err != nil {
			s.log.Warn().Err(err).Str("device", d.ID()).Msg("send black frame")
		}
	}
	if err := d.Deactivate(); err != nil {
		s.log.Warn().Err(err).Str("device", d.ID()).Msg("deactivate device")
	}
}

// Close stops the scheduler and persists the brightness and last device id.
func (s *Scheduler) Close() error {
	s.Stop()
	if s.settings == nil {
		return nil
	}
	s.settings.Register(settings.Setting{
		ID: SettingBrightness, Name: "Brightness", Category: settings.General,
		Value: settings.Int{V: 100, Min: 0, Max: 100, Step: 1},
	})
	if err := s.settings.SetValue(SettingBrightness, settings.Int{V: s.Brightness()}); err != nil {
		return fmt.Errorf("persist brightness: %w", err)
	}
	if d := s.ActiveDevice(); d != nil {
		s.settings.Register(settings.Setting{
			ID: SettingLastDevice, Name: "Last device", Category: settings.Internal, Value: settings.Object{},
		})
		if err := s.settings.SetValue(SettingLastDevice, settings.Object{V: d.ID()}); err != nil {
			return fmt.Errorf("persist last device: %w", err)
		}
	}
	if s.settingsKey == "" {
		return nil
	}
	return s.settings.Save(s.settingsKey)
}

// start and halt expect s.mu to be held.
func (s *Scheduler) start() {
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	go s.run(ctx, done)
}

func (s *Scheduler) halt() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(s.step())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}
		timer.Reset(s.step())
	}
}

// step sends one frame when both a frame and a device are present and returns the wait until the next step.
func (s *Scheduler) step() time.Duration {
	p := s.latest.Load()
	d := s.ActiveDevice()
	if p == nil || d == nil {
		return IdleWait
	}

	t0 := time.Now()
	out := p.Scale(s.Brightness()).Fit(d.PixelCount())
	frame.WhiteCap(out, s.whiteCap)

	if err := s.send(d, out); err != nil {
		s.failed.Add(1)
		s.errLog.Warn().Err(err).Str("device", d.ID()).Msg("output frame")
		if s.recorder != nil {
			s.recorder.FrameFailed(d.ID(), err)
		}
	} else {
		s.sent.Add(1)
		if s.recorder != nil {
			s.recorder.FrameSent(d.ID(), time.Since(t0))
		}
	}
	return s.FrameInterval()
}

func (s *Scheduler) send(d Device, f frame.Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDevicePanic, r)
		}
	}()
	return d.Output(f)
}

// Recorders fans loop events out to several recorders.
type Recorders []Recorder

func (rs Recorders) FrameSent(deviceID string, took time.Duration) {
	for _, r := range rs {
		r.FrameSent(deviceID, took)
	}
}

func (rs Recorders) FrameFailed(deviceID string, err error) {
	for _, r := range rs {
		r.FrameFailed(deviceID, err)
	}
}
