//go:build linux

package render

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// x11Hints sets EWMH window state on the overlay window. The X connection
// and interned atoms are kept for the life of the process.
type x11Hints struct {
	mu    sync.Mutex
	conn  *xgb.Conn
	atoms map[string]xproto.Atom
}

var hintApplier = &x11Hints{atoms: make(map[string]xproto.Atom)}

// ApplyWindowHints adds the EWMH states selected by hints to the overlay
// window. It must run once the window is mapped. Without an X display
// (Wayland without XWayland, headless) it does nothing.
func ApplyWindowHints(hints WindowHints) error {
	names := stateAtomNames(hints)
	if len(names) == 0 {
		return nil
	}
	return hintApplier.apply(names)
}

// stateAtomNames lists the _NET_WM_STATE atoms for hints. Decorations are
// handled by Ebiten.
func stateAtomNames(hints WindowHints) []string {
	var names []string
	if hints.Above {
		names = append(names, "_NET_WM_STATE_ABOVE")
	}
	if hints.Sticky {
		names = append(names, "_NET_WM_STATE_STICKY")
	}
	if hints.SkipTaskbar {
		names = append(names, "_NET_WM_STATE_SKIP_TASKBAR")
	}
	if hints.SkipPager {
		names = append(names, "_NET_WM_STATE_SKIP_PAGER")
	}
	return names
}

func (h *x11Hints) apply(names []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		conn, err := xgb.NewConn()
		if err != nil {
			return nil
		}
		h.conn = conn
	}

	window, err := h.activeWindow()
	if err != nil {
		return fmt.Errorf("finding overlay window: %w", err)
	}
	if window == xproto.WindowNone {
		return nil
	}

	want := make([]xproto.Atom, 0, len(names))
	for _, name := range names {
		a, err := h.atom(name)
		if err != nil {
			return fmt.Errorf("interning %s: %w", name, err)
		}
		want = append(want, a)
	}
	state, err := h.atom("_NET_WM_STATE")
	if err != nil {
		return fmt.Errorf("interning _NET_WM_STATE: %w", err)
	}

	current, err := h.windowState(window, state)
	if err != nil {
		current = nil
	}
	merged := mergeAtoms(current, want)

	data := make([]byte, 4*len(merged))
	for i, a := range merged {
		xgb.Put32(data[4*i:], uint32(a))
	}
	return xproto.ChangePropertyChecked(h.conn, xproto.PropModeReplace, window,
		state, xproto.AtomAtom, 32, uint32(len(merged)), data).Check()
}

// mergeAtoms returns current followed by the atoms of want it lacks.
func mergeAtoms(current, want []xproto.Atom) []xproto.Atom {
	out := slices.Clone(current)
	for _, a := range want {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

func (h *x11Hints) atom(name string) (xproto.Atom, error) {
	if a, ok := h.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(h.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	h.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// activeWindow returns the window named by _NET_ACTIVE_WINDOW, falling back
// to the input focus. The overlay is active right after it is mapped.
func (h *x11Hints) activeWindow() (xproto.Window, error) {
	setup := xproto.Setup(h.conn)
	if len(setup.Roots) == 0 {
		return xproto.WindowNone, nil
	}
	root := setup.Roots[0].Root

	if active, err := h.atom("_NET_ACTIVE_WINDOW"); err == nil {
		reply, err := xproto.GetProperty(h.conn, false, root, active,
			xproto.AtomWindow, 0, 1).Reply()
		if err == nil && len(reply.Value) >= 4 {
			return xproto.Window(xgb.Get32(reply.Value)), nil
		}
	}

	focus, err := xproto.GetInputFocus(h.conn).Reply()
	if err != nil {
		return xproto.WindowNone, err
	}
	return focus.Focus, nil
}

func (h *x11Hints) windowState(window xproto.Window, state xproto.Atom) ([]xproto.Atom, error) {
	reply, err := xproto.GetProperty(h.conn, false, window, state,
		xproto.AtomAtom, 0, 256).Reply()
	if err != nil {
		return nil, err
	}
	atoms := make([]xproto.Atom, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		atoms = append(atoms, xproto.Atom(xgb.Get32(reply.Value[i:])))
	}
	return atoms, nil
}

func (h *x11Hints) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
	clear(h.atoms)
}

// CloseWindowHints releases the X connection used for window hints.
func CloseWindowHints() {
	hintApplier.close()
}
