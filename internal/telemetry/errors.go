package telemetry

import "errors"

var (
	ErrDisabled         = errors.New("telemetry: influxdb disabled")
	ErrConnectionFailed = errors.New("telemetry: influxdb connection failed")
)
