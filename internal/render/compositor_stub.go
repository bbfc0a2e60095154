//go:build !linux

package render

// DetectCompositor reports CompositorActive; Windows and macOS always
// composite.
func DetectCompositor() CompositorStatus {
	return CompositorActive
}

// IsWayland is false outside Linux.
func IsWayland() bool {
	return false
}
