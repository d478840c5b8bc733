package device

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/layout"
	"github.com/coreman2200/funtimes-lightstream/internal/led"
	"github.com/coreman2200/funtimes-lightstream/internal/output"
	"github.com/coreman2200/funtimes-lightstream/internal/transport/mqtt"
)

type flakyDriver struct {
	mu     sync.Mutex
	writes [][]byte
	fail   error
	closed bool
}

func (d *flakyDriver) Write(rgb []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.writes = append(d.writes, append([]byte(nil), rgb...))
	return nil
}

func (d *flakyDriver) Close() error {
	d.closed = true
	return nil
}

func TestStripLifecycleAndRemap(t *testing.T) {
	drv := &flakyDriver{}
	s := NewStrip("desk", led.Config{Kind: "sim", Count: 4},
		layout.Layout{Dim: layout.Dim{X: 2, Y: 2}, Order: layout.Serpentine{XFlipEveryRow: true}})
	s.Open = func(led.Config) (led.Driver, error) { return drv, nil }

	// Not connected: dropped silently.
	require.NoError(t, s.Output(frame.Fill(frame.Red, 4)))
	assert.Empty(t, drv.writes)

	require.NoError(t, s.Activate())
	assert.Equal(t, output.Connected, s.State())
	require.NoError(t, s.Output(frame.Frame{{R: 1}, {R: 2}, {R: 3}, {R: 4}}))
	require.Len(t, drv.writes, 1)
	assert.Equal(t, []byte{1, 0, 0, 2, 0, 0, 4, 0, 0, 3, 0, 0}, drv.writes[0])

	require.NoError(t, s.Deactivate())
	assert.True(t, drv.closed)
	assert.Equal(t, output.Disconnected, s.State())
}

func TestStripWriteFailureMarksFailed(t *testing.T) {
	drv := &flakyDriver{fail: errors.New("bus error")}
	s := NewStrip("", led.Config{Count: 2}, layout.Layout{})
	s.Open = func(led.Config) (led.Driver, error) { return drv, nil }
	assert.NotEmpty(t, s.ID())

	require.NoError(t, s.Activate())
	assert.Error(t, s.Output(frame.Fill(frame.Red, 2)))
	assert.Equal(t, output.Failed, s.State())
	// Failed devices drop frames without error.
	assert.NoError(t, s.Output(frame.Fill(frame.Red, 2)))

	drv.fail = nil
	require.NoError(t, s.Activate())
	assert.Equal(t, output.Connected, s.State())
}

func TestStripOpenFailure(t *testing.T) {
	s := NewStrip("x", led.Config{Kind: "spidev", Count: 3}, layout.Layout{})
	s.Open = func(led.Config) (led.Driver, error) { return nil, errors.New("no spidev") }
	assert.Error(t, s.Activate())
	assert.Equal(t, output.Failed, s.State())
}

func TestStripWithScheduler(t *testing.T) {
	s := NewStrip("sim", led.Config{Kind: "sim", Count: 3}, layout.Layout{})
	var sim *led.Sim
	s.Open = func(cfg led.Config) (led.Driver, error) {
		sim = led.NewSim(cfg.Count)
		return sim, nil
	}
	sch := output.NewScheduler(output.Options{Interval: 2 * time.Millisecond})
	sch.PublishFrame(frame.Fill(frame.Color{G: 9}, 3))
	require.NoError(t, sch.SetActiveDevice(s))
	require.Eventually(t, func() bool { _, n := sim.Last(); return n > 0 }, time.Second, time.Millisecond)
	sch.Stop()

	last, _ := sim.Last()
	assert.Equal(t, make([]byte, 9), last)
	assert.Equal(t, output.Disconnected, s.State())
}

type fakePublisher struct {
	connected bool
	mu        sync.Mutex
	sent      map[string][]byte
	asyncErr  error
}

func (p *fakePublisher) IsConnected() bool    { return p.connected }
func (p *fakePublisher) Topics() mqtt.Topics { return mqtt.Topics{Prefix: "t"} }
func (p *fakePublisher) Publish(topic string, payload []byte, _ byte, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[string][]byte{}
	}
	p.sent[topic] = payload
	return nil
}
func (p *fakePublisher) PublishAsync(topic string, payload []byte) error {
	if p.asyncErr != nil {
		return p.asyncErr
	}
	return p.Publish(topic, payload, 0, false)
}

func TestMQTTDevice(t *testing.T) {
	pub := &fakePublisher{}
	m := NewMQTT("porch", 2, pub)
	assert.ErrorIs(t, m.Activate(), mqtt.ErrNotConnected)
	assert.Equal(t, output.Failed, m.State())

	pub.connected = true
	require.NoError(t, m.Activate())
	assert.Equal(t, "Connected", string(pub.sent["t/device/porch/state"]))

	require.NoError(t, m.Output(frame.Frame{frame.Red}))
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 0}, pub.sent["t/device/porch/frame"])

	pub.asyncErr = mqtt.ErrNotConnected
	assert.Error(t, m.Output(frame.Frame{frame.Red}))
	assert.Equal(t, output.Failed, m.State())

	pub.asyncErr = nil
	require.NoError(t, m.Activate())
	require.NoError(t, m.Deactivate())
	assert.Equal(t, "Disconnected", string(pub.sent["t/device/porch/state"]))
}

type fakeHub struct {
	got map[string]frame.Frame
}

func (h *fakeHub) BroadcastFrame(id string, f frame.Frame) {
	if h.got == nil {
		h.got = map[string]frame.Frame{}
	}
	h.got[id] = f
}

func TestPreview(t *testing.T) {
	hub := &fakeHub{}
	p := NewPreview("browser", 3, hub)
	require.NoError(t, p.Output(frame.Fill(frame.Red, 3)))
	assert.Empty(t, hub.got)

	require.NoError(t, p.Activate())
	require.NoError(t, p.Output(frame.Fill(frame.Red, 1)))
	assert.Equal(t, frame.Frame{frame.Red, frame.Black, frame.Black}, hub.got["browser"])

	var states []output.State
	p.Observe(func(s output.State, _ error) { states = append(states, s) })
	require.NoError(t, p.Deactivate())
	assert.Equal(t, []output.State{output.Disconnected}, states)
}

func TestConsoleMinPixels(t *testing.T) {
	c := NewConsole("tty", 0)
	assert.Equal(t, output.MinPixels, c.PixelCount())
	var _ Observable = c
}

func TestStripRetryReleasesDriver(t *testing.T) {
	var opened []*flakyDriver
	s := NewStrip("bench", led.Config{Count: 2}, layout.Layout{})
	s.Open = func(led.Config) (led.Driver, error) {
		d := &flakyDriver{fail: errors.New("bus error")}
		opened = append(opened, d)
		return d, nil
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Activate())
		assert.Error(t, s.Output(frame.Fill(frame.Red, 2)))
		assert.Equal(t, output.Failed, s.State())
	}
	require.NoError(t, s.Deactivate())

	require.Len(t, opened, 3)
	for i, d := range opened {
		assert.True(t, d.closed, "driver %d left open", i)
	}
	assert.Equal(t, output.Disconnected, s.State())
}
