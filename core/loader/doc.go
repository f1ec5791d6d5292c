// Package loader registers HTTP features and loads the enabled ones.
//
// Each feature implements Feature:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager.LoadAll loads features in registration order and stops at the first error.
package loader
