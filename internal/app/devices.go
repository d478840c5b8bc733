package app

import (
	"fmt"

	"github.com/coreman2200/funtimes-lightstream/internal/config"
	"github.com/coreman2200/funtimes-lightstream/internal/device"
	"github.com/coreman2200/funtimes-lightstream/internal/diagnostics"
	"github.com/coreman2200/funtimes-lightstream/internal/layout"
	"github.com/coreman2200/funtimes-lightstream/internal/led"
	"github.com/coreman2200/funtimes-lightstream/internal/output"
)

// ErrNeedsMQTT is returned when the mqtt output is configured without a broker connection.
var ErrNeedsMQTT = fmt.Errorf("%w: output.device mqtt needs a connected mqtt client", config.ErrInvalid)

func layoutFrom(l config.Layout) layout.Layout {
	return layout.Layout{
		Dim:   layout.Dim{X: l.Dim.X, Y: l.Dim.Y, Z: l.Dim.Z},
		Order: layout.Serpentine{XFlipEveryRow: l.XFlipEveryRow, YFlipEveryPanel: l.YFlipEveryPanel},
	}
}

// buildDevice creates the configured output device and reports its state changes as diagnostics.
func (c *Core) buildDevice() (output.Device, error) {
	o := c.Cfg.Output
	var d output.Device
	switch o.Device {
	case "strip":
		d = device.NewStrip(o.ID, led.Config{
			Kind:       c.Cfg.SPI.Driver,
			Dev:        c.Cfg.SPI.Dev,
			Count:      o.Pixels,
			ColorOrder: c.Cfg.SPI.ColorOrder,
			SpeedHz:    c.Cfg.SPI.SpeedHz,
			ResetUs:    c.Cfg.SPI.ResetUs,
		}, layoutFrom(c.Cfg.Layout))
	case "console":
		d = device.NewConsole(o.ID, o.Pixels)
	case "mqtt":
		if c.mqtt == nil {
			return nil, ErrNeedsMQTT
		}
		d = device.NewMQTT(o.ID, o.Pixels, c.mqtt)
	case "preview":
		d = device.NewPreview(o.ID, o.Pixels, c.Hub)
	default:
		return nil, fmt.Errorf("%w: unknown output.device %q", config.ErrInvalid, o.Device)
	}
	if obs, ok := d.(device.Observable); ok {
		id := d.ID()
		obs.Observe(func(s output.State, err error) {
			c.Diag.Push(diagnostics.DeviceState(id, s.String(), err))
		})
	}
	return d, nil
}
