package display

import (
	"errors"
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/junsooki/tvremote/internal/protocol"
)

// WheelStep is the zoom factor per wheel notch.
const WheelStep = 1.1

var keyCommands = []struct {
	key ebiten.Key
	cmd protocol.Command
}{
	{ebiten.KeyEscape, protocol.Back()},
	{ebiten.KeyBackspace, protocol.Back()},
	{ebiten.KeyHome, protocol.Home()},
	{ebiten.KeyH, protocol.Home()},
	{ebiten.KeyEqual, protocol.VolumeUp()},
	{ebiten.KeyPageUp, protocol.VolumeUp()},
	{ebiten.KeyMinus, protocol.VolumeDown()},
	{ebiten.KeyPageDown, protocol.VolumeDown()},
}

// Window renders the remote screen with Ebitengine and captures input.
// SetFrame may be called from any goroutine; everything else runs on the
// game loop.
type Window struct {
	mu      sync.Mutex
	frame   *image.RGBA
	fresh   bool
	stopped bool
	stopErr error

	sender CommandSender
	input  *Input
	image  *ebiten.Image
	title  string
	width  int
	height int

	layoutW, layoutH int

	touchID   ebiten.TouchID
	touching  bool
	pinchDist float64
}

// NewWindow creates a window of the given initial size.
func NewWindow(title string, width, height int, input *Input, sender CommandSender) *Window {
	return &Window{
		title:  title,
		width:  width,
		height: height,
		input:  input,
		sender: sender,
	}
}

// SetFrame replaces the displayed frame.
func (w *Window) SetFrame(img *image.RGBA) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frame = img
	w.fresh = true
}

// Run starts the game loop. It must be called from the main goroutine and
// returns when the window is closed.
func (w *Window) Run() error {
	ebiten.SetWindowSize(w.width, w.height)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(w)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Stop ends the game loop at the next tick. Run returns err, or nil when
// err is nil.
func (w *Window) Stop(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stopped {
		w.stopped, w.stopErr = true, err
	}
}

func (w *Window) Update() error {
	w.mu.Lock()
	frame, fresh := w.frame, w.fresh
	stopped, stopErr := w.stopped, w.stopErr
	w.fresh = false
	w.mu.Unlock()

	if stopped {
		if stopErr != nil {
			return stopErr
		}
		return ebiten.Termination
	}

	if frame != nil {
		b := frame.Bounds()
		w.input.Resize(float64(w.layoutW), float64(w.layoutH), float64(b.Dx()), float64(b.Dy()))
		if fresh {
			w.upload(frame)
		}
	}

	w.updateMouse()
	w.updateTouches()
	w.updateKeys()
	return nil
}

func (w *Window) upload(frame *image.RGBA) {
	b := frame.Bounds()
	if w.image == nil || w.image.Bounds().Dx() != b.Dx() || w.image.Bounds().Dy() != b.Dy() {
		if w.image != nil {
			w.image.Deallocate()
		}
		w.image = ebiten.NewImage(b.Dx(), b.Dy())
	}
	w.image.WritePixels(frame.Pix)
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.image != nil {
		tf := w.input.DrawTransform()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(tf.Scale, tf.Scale)
		op.GeoM.Translate(tf.OffsetX, tf.OffsetY)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(w.image, op)
	}
	if w.sender != nil && !w.sender.Connected() {
		ebitenutil.DebugPrint(screen, "not connected")
	}
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.layoutW, w.layoutH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (w *Window) updateMouse() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		w.input.PointerDown(x, y)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		w.input.PointerUp(x, y)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		w.input.PointerMove(x, y)
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		w.input.Pinch(math.Pow(WheelStep, wy))
	}
}

func (w *Window) updateTouches() {
	ids := ebiten.AppendTouchIDs(nil)

	if len(ids) >= 2 {
		if w.touching {
			w.input.PointerCancel()
			w.touching = false
		}
		ax, ay := ebiten.TouchPosition(ids[0])
		bx, by := ebiten.TouchPosition(ids[1])
		dist := math.Hypot(float64(bx-ax), float64(by-ay))
		if w.pinchDist > 0 && dist > 0 {
			w.input.Pinch(dist / w.pinchDist)
		}
		w.pinchDist = dist
		return
	}
	w.pinchDist = 0

	if w.touching && inpututil.IsTouchJustReleased(w.touchID) {
		x, y := inpututil.TouchPositionInPreviousTick(w.touchID)
		w.input.PointerUp(float64(x), float64(y))
		w.touching = false
	}
	if len(ids) != 1 {
		return
	}
	x, y := ebiten.TouchPosition(ids[0])
	switch {
	case !w.touching && inpututil.TouchPressDuration(ids[0]) == 1:
		w.touchID, w.touching = ids[0], true
		w.input.PointerDown(float64(x), float64(y))
	case w.touching && ids[0] == w.touchID:
		w.input.PointerMove(float64(x), float64(y))
	}
}

func (w *Window) updateKeys() {
	for _, kc := range keyCommands {
		if inpututil.IsKeyJustPressed(kc.key) {
			w.input.Key(kc.cmd)
		}
	}
}
