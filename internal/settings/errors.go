package settings

import "errors"

var (
	ErrNotFound     = errors.New("settings: not found")
	ErrKindMismatch = errors.New("settings: kind mismatch")
	ErrInvalidValue = errors.New("settings: invalid value")
	ErrNoData       = errors.New("settings: no stored data")
	ErrNoStore      = errors.New("settings: no store configured")
)
