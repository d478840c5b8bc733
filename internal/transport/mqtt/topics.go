package mqtt

import "strings"

// Topics builds the topic tree under a prefix, e.g. "lightstream".
type Topics struct{ Prefix string }

func (t Topics) join(parts ...string) string {
	p := strings.TrimSuffix(t.Prefix, "/")
	if p == "" {
		p = "lightstream"
	}
	return p + "/" + strings.Join(parts, "/")
}

// Status is the retained online/offline topic of this controller.
func (t Topics) Status(clientID string) string { return t.join("status", clientID) }

// Frame carries raw RGB frames for a network strip.
func (t Topics) Frame(deviceID string) string { return t.join("device", deviceID, "frame") }

// DeviceState is the retained connection state of a network strip.
func (t Topics) DeviceState(deviceID string) string { return t.join("device", deviceID, "state") }

// Audio carries analysis frames from an external capture process.
func (t Topics) Audio() string { return t.join("audio") }

// Setting publishes the current value of one setting, retained.
func (t Topics) Setting(id string) string { return t.join("settings", id) }

// Command receives control commands, same shape as the websocket control surface.
func (t Topics) Command() string { return t.join("command") }
