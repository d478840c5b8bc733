package effect

import "errors"

// ErrProducerPanic wraps a panic recovered from a producer's Loop.
var ErrProducerPanic = errors.New("effect: producer panicked")

// ErrNoSettings is returned by Enable when the environment carries no registry.
var ErrNoSettings = errors.New("effect: environment has no settings registry")
