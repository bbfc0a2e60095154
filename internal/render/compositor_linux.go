//go:build linux

package render

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// knownCompositors are checked by process name when the X selection cannot
// be queried.
var knownCompositors = []string{
	"picom", "compton", "compiz", "mutter", "kwin_x11", "kwin_wayland",
	"xfwm4", "marco", "muffin",
}

// processRunning reports whether a process with the exact name runs.
var processRunning = func(name string) bool {
	return exec.Command("pgrep", "-x", name).Run() == nil
}

// DetectCompositor checks whether a compositor is running. Wayland sessions
// always composite. On X11 the owner of _NET_WM_CM_S<screen> is checked,
// then the process list.
func DetectCompositor() CompositorStatus {
	if IsWayland() {
		return CompositorActive
	}
	if status := detectCompositorSelection(); status != CompositorUnknown {
		return status
	}
	return detectCompositorProcess()
}

func detectCompositorSelection() CompositorStatus {
	conn, err := xgb.NewConn()
	if err != nil {
		return CompositorUnknown
	}
	defer conn.Close()

	name := fmt.Sprintf("_NET_WM_CM_S%d", conn.DefaultScreen)
	atom, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return CompositorUnknown
	}
	owner, err := xproto.GetSelectionOwner(conn, atom.Atom).Reply()
	if err != nil {
		return CompositorUnknown
	}
	if owner.Owner != xproto.WindowNone {
		return CompositorActive
	}
	return CompositorInactive
}

func detectCompositorProcess() CompositorStatus {
	for _, name := range knownCompositors {
		if processRunning(name) {
			return CompositorActive
		}
	}
	return CompositorInactive
}

// IsWayland reports whether the session runs on Wayland.
func IsWayland() bool {
	if strings.EqualFold(os.Getenv("XDG_SESSION_TYPE"), "wayland") {
		return true
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}
