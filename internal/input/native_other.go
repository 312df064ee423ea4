//go:build !darwin || !cgo

package input

// Native returns the platform injector. No native injector is built on
// this platform.
func Native() (Injector, error) {
	return nil, ErrUnsupported
}
