package organize

import "imglabel/internal/config"

// MoverFactory is a function that creates a Mover
// This allows for dependency injection in tests
type MoverFactory func(cfg *config.Config) Mover

// DefaultMoverFactory creates a real engine
var DefaultMoverFactory MoverFactory = func(cfg *config.Config) Mover {
	return NewWithConfig(cfg)
}

// CurrentMoverFactory is the currently active factory
// This can be swapped in tests
var CurrentMoverFactory = DefaultMoverFactory

// SetMoverFactory sets a custom mover factory for dependency injection
func SetMoverFactory(factory MoverFactory) {
	CurrentMoverFactory = factory
}

// ResetMoverFactory resets to the default mover factory
func ResetMoverFactory() {
	CurrentMoverFactory = DefaultMoverFactory
}
