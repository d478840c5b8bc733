package output

import "errors"

var (
	ErrDevicePanic  = errors.New("output: device panicked")
	ErrNotConnected = errors.New("output: device not connected")
)
