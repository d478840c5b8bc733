package diagnostics

import "fmt"

// DeviceState describes a device connection change for configuration surfaces.
func DeviceState(id, state string, err error) Diagnostic {
	d := Diagnostic{
		Severity: Info,
		Code:     "DEVICE.STATE",
		Summary:  fmt.Sprintf("%s: %s", id, state),
		Evidence: map[string]any{"device": id, "state": state},
	}
	if err != nil {
		d.Severity = Warn
		d.Code = "DEVICE.FAILED"
		d.Detail = err.Error()
		d.LikelyCauses = []string{"device unplugged or powered off", "wrong port or address in config"}
		d.SuggestedFixes = []string{"check wiring and power", "verify output settings, then reselect the device"}
	}
	return d
}
