package output

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleTransitions(t *testing.T) {
	var connects, disconnects int
	fail := true
	l := NewLifecycle(func() error {
		connects++
		if fail {
			return errors.New("refused")
		}
		return nil
	}, func() error {
		disconnects++
		return nil
	})
	var seen []State
	l.Observe(func(s State, _ error) { seen = append(seen, s) })

	assert.Equal(t, Disconnected, l.State())
	assert.NoError(t, l.Deactivate())
	assert.Zero(t, disconnects)

	assert.Error(t, l.Activate())
	assert.Equal(t, Failed, l.State())

	fail = false
	assert.NoError(t, l.Activate())
	assert.NoError(t, l.Activate())
	assert.Equal(t, 2, connects)
	assert.True(t, l.Connected())

	l.Fail(errors.New("cable pulled"))
	assert.Equal(t, Failed, l.State())
	assert.NoError(t, l.Activate())

	// each retry from Failed released the previous connection first
	assert.Equal(t, 2, disconnects)
	assert.Equal(t, 3, connects)

	assert.NoError(t, l.Deactivate())
	assert.NoError(t, l.Deactivate())
	assert.Equal(t, 3, disconnects)

	assert.Equal(t, []State{Failed, Connected, Failed, Connected, Disconnected}, seen)
}

func TestStateText(t *testing.T) {
	assert.Equal(t, "Connected", Connected.String())
	assert.Equal(t, "Disconnected", Disconnected.String())
	assert.Equal(t, "Connection failed", Failed.String())
}

func TestDeactivateReleasesFailedDevice(t *testing.T) {
	var disconnects int
	l := NewLifecycle(nil, func() error { disconnects++; return nil })
	require.NoError(t, l.Activate())
	l.Fail(errors.New("write error"))

	require.NoError(t, l.Deactivate())
	assert.Equal(t, 1, disconnects)
	assert.Equal(t, Disconnected, l.State())
}

func TestStateDoesNotWaitOnConnect(t *testing.T) {
	entered, release := make(chan struct{}), make(chan struct{})
	l := NewLifecycle(func() error {
		close(entered)
		<-release
		return nil
	}, nil)
	done := make(chan error, 1)
	go func() { done <- l.Activate() }()
	<-entered

	got := make(chan State, 1)
	go func() { got <- l.State() }()
	select {
	case s := <-got:
		assert.Equal(t, Disconnected, s)
	case <-time.After(time.Second):
		t.Fatal("State blocked while connecting")
	}
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Connected, l.State())
}
