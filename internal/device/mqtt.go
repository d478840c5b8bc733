package device

import (
	"fmt"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/output"
	"github.com/coreman2200/funtimes-lightstream/internal/transport/mqtt"
)

// Publisher is the part of the MQTT client a network strip needs.
type Publisher interface {
	IsConnected() bool
	Topics() mqtt.Topics
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishAsync(topic string, payload []byte) error
}

// MQTT streams raw RGB frames to a network strip listening on <prefix>/device/<id>/frame.
type MQTT struct {
	*output.Lifecycle
	id     string
	pixels int
	pub    Publisher
}

func NewMQTT(id string, pixels int, pub Publisher) *MQTT {
	m := &MQTT{id: idOrNew(id), pixels: checkPixels(pixels), pub: pub}
	m.Lifecycle = output.NewLifecycle(m.connect, m.disconnect)
	return m
}

func (m *MQTT) ID() string      { return m.id }
func (m *MQTT) PixelCount() int { return m.pixels }

func (m *MQTT) connect() error {
	if m.pub == nil || !m.pub.IsConnected() {
		return mqtt.ErrNotConnected
	}
	return m.pub.Publish(m.pub.Topics().DeviceState(m.id), []byte(output.Connected.String()), 1, true)
}

func (m *MQTT) disconnect() error {
	if m.pub == nil || !m.pub.IsConnected() {
		return nil
	}
	return m.pub.Publish(m.pub.Topics().DeviceState(m.id), []byte(output.Disconnected.String()), 1, true)
}

// Output publishes without waiting for the broker. A lost broker link marks the device Failed.
func (m *MQTT) Output(f frame.Frame) error {
	if !m.Connected() {
		return nil
	}
	if err := m.pub.PublishAsync(m.pub.Topics().Frame(m.id), f.Fit(m.pixels).RGB()); err != nil {
		m.Fail(err)
		return fmt.Errorf("mqtt device %s: %w", m.id, err)
	}
	return nil
}
