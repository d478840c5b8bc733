package app

import (
	"encoding/json"
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/output"
	"github.com/coreman2200/funtimes-lightstream/internal/sequence"
	"github.com/coreman2200/funtimes-lightstream/internal/server"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

func (c *Core) SetBrightness(b int)              { c.Output.SetBrightness(b) }
func (c *Core) Brightness() int                  { return c.Output.Brightness() }
func (c *Core) SetFrameInterval(d time.Duration) { c.Output.SetFrameInterval(d) }
func (c *Core) FrameInterval() time.Duration     { return c.Output.FrameInterval() }
func (c *Core) LatestFrame() frame.Frame         { return c.Output.LatestFrame() }
func (c *Core) Stats() output.Stats              { return c.Output.Stats() }
func (c *Core) Effects() []string                { return c.Catalog.Names() }
func (c *Core) ActiveSettings() []settings.Setting {
	return c.Runner.ActiveSettings()
}

func (c *Core) ActiveEffect() string {
	if p := c.Runner.Active(); p != nil {
		return p.Name()
	}
	return ""
}

// StartEffect switches effects by hand, which also stops a running playlist.
func (c *Core) StartEffect(name string) error {
	c.Conductor.Seq.With(func(p *sequence.Player) { p.Stop() })
	return c.Runner.StartNamed(name)
}

func (c *Core) AssignSetting(id string, raw any) error { return c.Settings.Assign(id, raw) }

func (c *Core) Device() (string, output.State, bool) {
	d := c.Output.ActiveDevice()
	if d == nil {
		return "", output.Disconnected, false
	}
	return d.ID(), d.State(), true
}

// publishSettingChanges mirrors every setting change to its retained MQTT topic.
func (c *Core) publishSettingChanges() {
	if c.mqtt == nil {
		return
	}
	c.Settings.OnChange(func(s settings.Setting) {
		rec, err := settings.ToRecord(s)
		if err != nil {
			return
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return
		}
		if err := c.mqtt.Publish(c.mqtt.Topics().Setting(s.ID), b, c.mqtt.QoS(), true); err != nil {
			c.log.Debug().Err(err).Str("setting", s.ID).Msg("publish setting")
		}
	})
}

// subscribeCommands applies control messages arriving on the MQTT command topic.
func (c *Core) subscribeCommands() {
	if c.mqtt == nil {
		return
	}
	err := c.mqtt.Subscribe(c.mqtt.Topics().Command(), c.mqtt.QoS(), func(_ string, payload []byte) error {
		var msg server.ControlMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return err
		}
		c.Server.Apply(msg)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("subscribe command topic")
	}
}

var _ server.Controller = (*Core)(nil)
