package render

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/session"
)

// MouseDevice is the device name of the system pointer.
const MouseDevice session.DeviceID = "mouse"

// TouchDevice returns the device name of a touch contact. Bindings for the
// "touch" class apply to every contact.
func TouchDevice(id ebiten.TouchID) session.DeviceID {
	return session.DeviceID(fmt.Sprintf("touch:%d", id))
}

// Action is an overlay command triggered from the keyboard.
type Action int

const (
	ActionTogglePainting Action = iota
	ActionClear
	ActionToggleVisibility
	ActionQuit
	ActionUndo
	ActionRedo
	ActionSwitchColor
	ActionToolColor
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionTogglePainting:
		return "toggle-painting"
	case ActionClear:
		return "clear"
	case ActionToggleVisibility:
		return "toggle-visibility"
	case ActionQuit:
		return "quit"
	case ActionUndo:
		return "undo"
	case ActionRedo:
		return "redo"
	case ActionSwitchColor:
		return "switch-color"
	case ActionToolColor:
		return "tool-color"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// KeyEvent is one triggered action. Color indexes the switch colors for
// ActionSwitchColor.
type KeyEvent struct {
	Action Action
	Color  int
}

// PointerKind distinguishes the phases of a gesture.
type PointerKind int

const (
	PointerPress PointerKind = iota
	PointerMotion
	PointerRelease
)

// PointerEvent is one pointer sample of one device.
type PointerEvent struct {
	Kind        PointerKind
	Device      session.DeviceID
	X, Y        int
	Button      int
	Modifiers   paint.Modifiers
	Pressure    float64
	HasPressure bool
}

// InputFrame is the input gathered during one tick.
type InputFrame struct {
	Actions  []KeyEvent
	Pointers []PointerEvent
}

// InputSource delivers the input of each tick.
type InputSource interface {
	Poll() InputFrame
}

var mouseButtons = []struct {
	button ebiten.MouseButton
	number int
}{
	{ebiten.MouseButtonLeft, 1},
	{ebiten.MouseButtonMiddle, 2},
	{ebiten.MouseButtonRight, 3},
}

var colorKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3,
	ebiten.Key4, ebiten.Key5, ebiten.Key6,
}

// EbitenInput polls the keyboard, the mouse and touch contacts through
// Ebiten. Ebiten reports no pressure, so every sample uses the tool's
// default pressure.
type EbitenInput struct {
	hotkey  ebiten.Key
	undoKey ebiten.Key

	// button is the mouse button holding the current gesture, 0 when up.
	button       int
	lastX, lastY int

	touches map[ebiten.TouchID][2]int
	ids     []ebiten.TouchID
}

// NewEbitenInput polls with the given hotkeys.
func NewEbitenInput(hotkey, undoKey ebiten.Key) *EbitenInput {
	return &EbitenInput{
		hotkey:  hotkey,
		undoKey: undoKey,
		touches: make(map[ebiten.TouchID][2]int),
	}
}

// Poll implements InputSource.
func (in *EbitenInput) Poll() InputFrame {
	var f InputFrame
	mods := currentModifiers()
	in.pollKeys(&f, mods)
	in.pollMouse(&f, mods)
	in.pollTouches(&f, mods)
	return f
}

func currentModifiers() paint.Modifiers {
	var m paint.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= paint.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= paint.ModControl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= paint.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		m |= paint.ModMeta
	}
	return m
}

func (in *EbitenInput) pollKeys(f *InputFrame, mods paint.Modifiers) {
	if inpututil.IsKeyJustPressed(in.hotkey) {
		f.Actions = append(f.Actions, KeyEvent{Action: hotkeyAction(mods)})
	}
	if inpututil.IsKeyJustPressed(in.undoKey) {
		a := ActionUndo
		if mods&paint.ModShift != 0 {
			a = ActionRedo
		}
		f.Actions = append(f.Actions, KeyEvent{Action: a})
	}
	for i, k := range colorKeys {
		if inpututil.IsKeyJustPressed(k) {
			f.Actions = append(f.Actions, KeyEvent{Action: ActionSwitchColor, Color: i})
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.Key0) {
		f.Actions = append(f.Actions, KeyEvent{Action: ActionToolColor})
	}
}

// hotkeyAction maps the modifiers held with the hotkey to an action.
func hotkeyAction(mods paint.Modifiers) Action {
	switch {
	case mods&paint.ModAlt != 0:
		return ActionQuit
	case mods&paint.ModControl != 0:
		return ActionToggleVisibility
	case mods&paint.ModShift != 0:
		return ActionClear
	default:
		return ActionTogglePainting
	}
}

func (in *EbitenInput) pollMouse(f *InputFrame, mods paint.Modifiers) {
	x, y := ebiten.CursorPosition()
	defer func() { in.lastX, in.lastY = x, y }()

	if in.button == 0 {
		for _, mb := range mouseButtons {
			if inpututil.IsMouseButtonJustPressed(mb.button) {
				in.button = mb.number
				f.Pointers = append(f.Pointers, PointerEvent{
					Kind: PointerPress, Device: MouseDevice,
					X: x, Y: y, Button: mb.number, Modifiers: mods,
				})
				return
			}
		}
		return
	}

	if x != in.lastX || y != in.lastY {
		f.Pointers = append(f.Pointers, PointerEvent{
			Kind: PointerMotion, Device: MouseDevice, X: x, Y: y,
		})
	}
	held := mouseButtons[in.button-1].button
	if !ebiten.IsMouseButtonPressed(held) {
		f.Pointers = append(f.Pointers, PointerEvent{
			Kind: PointerRelease, Device: MouseDevice, X: x, Y: y,
		})
		in.button = 0
	}
}

func (in *EbitenInput) pollTouches(f *InputFrame, mods paint.Modifiers) {
	in.ids = inpututil.AppendJustPressedTouchIDs(in.ids[:0])
	for _, id := range in.ids {
		x, y := ebiten.TouchPosition(id)
		in.touches[id] = [2]int{x, y}
		f.Pointers = append(f.Pointers, PointerEvent{
			Kind: PointerPress, Device: TouchDevice(id),
			X: x, Y: y, Button: 1, Modifiers: mods,
		})
	}

	in.ids = ebiten.AppendTouchIDs(in.ids[:0])
	for _, id := range in.ids {
		last, ok := in.touches[id]
		if !ok {
			continue
		}
		x, y := ebiten.TouchPosition(id)
		if x != last[0] || y != last[1] {
			in.touches[id] = [2]int{x, y}
			f.Pointers = append(f.Pointers, PointerEvent{
				Kind: PointerMotion, Device: TouchDevice(id), X: x, Y: y,
			})
		}
	}

	in.ids = inpututil.AppendJustReleasedTouchIDs(in.ids[:0])
	for _, id := range in.ids {
		last, ok := in.touches[id]
		if !ok {
			continue
		}
		delete(in.touches, id)
		f.Pointers = append(f.Pointers, PointerEvent{
			Kind: PointerRelease, Device: TouchDevice(id), X: last[0], Y: last[1],
		})
	}
}
