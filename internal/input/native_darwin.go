//go:build darwin && cgo

package input

// Native returns the platform injector.
func Native() (Injector, error) {
	return NewCGEventInjector(), nil
}
