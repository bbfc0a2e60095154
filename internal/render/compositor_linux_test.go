//go:build linux

package render

import (
	"testing"
)

func TestDetectCompositor_Wayland(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "Wayland")
	if got := DetectCompositor(); got != CompositorActive {
		t.Errorf("DetectCompositor() on Wayland = %v, want active", got)
	}
}

func TestDetectCompositor_ProcessFallback(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "x11")
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("DISPLAY", "")

	orig := processRunning
	defer func() { processRunning = orig }()

	tests := []struct {
		name    string
		running string
		want    CompositorStatus
	}{
		{"picom running", "picom", CompositorActive},
		{"nothing running", "", CompositorInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processRunning = func(name string) bool { return name == tt.running }
			if got := DetectCompositor(); got != tt.want {
				t.Errorf("DetectCompositor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsWayland(t *testing.T) {
	tests := []struct {
		name    string
		session string
		display string
		want    bool
	}{
		{"x11", "x11", "", false},
		{"session type", "wayland", "", true},
		{"display only", "", "wayland-0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_SESSION_TYPE", tt.session)
			t.Setenv("WAYLAND_DISPLAY", tt.display)
			if got := IsWayland(); got != tt.want {
				t.Errorf("IsWayland() = %v, want %v", got, tt.want)
			}
		})
	}
}
