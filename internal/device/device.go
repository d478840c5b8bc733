// Package device holds the output.Device transports: LED strips, the console, MQTT network strips
// and the websocket preview.
package device

import (
	"github.com/google/uuid"

	"github.com/coreman2200/funtimes-lightstream/internal/output"
)

// Observable is implemented by every device in this package through its embedded Lifecycle.
type Observable interface {
	output.Device
	Observe(fn func(output.State, error))
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func checkPixels(n int) int {
	return max(n, output.MinPixels)
}
