package diagnostics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversAndKeepsRecent(t *testing.T) {
	b := NewBus(2)
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Push(Diagnostic{Code: "A"})
	b.Push(Diagnostic{Code: "B"})
	b.Push(Diagnostic{Code: "C"})

	got := <-ch
	assert.Equal(t, "A", got.Code)
	assert.False(t, got.Time.IsZero())

	recent := b.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "B", recent[0].Code)
	assert.Equal(t, "C", recent[1].Code)
}

func TestBusCancelClosesChannel(t *testing.T) {
	b := NewBus(1)
	ch, cancel := b.Subscribe()
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	b.Push(Diagnostic{Code: "after"})
}

func TestDeviceState(t *testing.T) {
	d := DeviceState("desk", "Connected", nil)
	assert.Equal(t, Info, d.Severity)
	assert.Equal(t, "desk: Connected", d.Summary)

	d = DeviceState("desk", "Connection failed", errors.New("no port"))
	assert.Equal(t, Warn, d.Severity)
	assert.Equal(t, "DEVICE.FAILED", d.Code)
	assert.Equal(t, "no port", d.Detail)
}
