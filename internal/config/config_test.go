package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightstream.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output:
  device: console
  pixels: 144
spi:
  driver: nrz
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "console", c.Output.Device)
	assert.Equal(t, 144, c.Output.Pixels)
	assert.Equal(t, "nrz", c.SPI.Driver)
	// untouched sections keep defaults
	assert.Equal(t, 20, c.Output.IntervalMs)
	assert.Equal(t, 1883, c.MQTT.Port)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	c := Default()
	c.Output.Brightness = 33
	c.Layout = Layout{Dim: Dim{X: 6, Y: 10, Z: 1}, XFlipEveryRow: true}
	require.NoError(t, Save(path, c))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Output.Pixels = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalid)

	c = Default()
	c.Output.Device = "hologram"
	assert.ErrorIs(t, c.Validate(), ErrInvalid)

	c = Default()
	c.Layout.Dim = Dim{X: 100, Y: 100}
	assert.ErrorIs(t, c.Validate(), ErrInvalid)
}
