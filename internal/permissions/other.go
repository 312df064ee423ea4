//go:build !darwin || !cgo

package permissions

// Platforms without a permission model always report access.

func HasAccessibility() bool       { return true }
func RequestAccessibility() bool   { return true }
func HasScreenRecording() bool     { return true }
func RequestScreenRecording() bool { return true }
