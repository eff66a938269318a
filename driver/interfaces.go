package driver

import (
	"image"
	"time"

	"cloudsky/noise"
	"cloudsky/rendering"
)

// Key is a logical key the driver reacts to.
type Key int

const (
	// KeyExit ends the loop. Windowed inputs also report it when the window
	// is asked to close.
	KeyExit Key = iota
	// KeyExport toggles frame export. Inputs report it once per press.
	KeyExport
)

// Input delivers key state and cursor drags once per frame.
type Input interface {
	Poll()
	KeyDown(k Key) bool
	// DragDelta returns the cursor movement with a button held since the
	// previous call and resets it.
	DragDelta() (dx, dy float32)
}

// UI is the source of parameter edits and discrete requests.
type UI interface {
	// Events drains everything queued since the previous call.
	Events() []Event
	// Focused reports whether the UI currently owns the cursor.
	Focused() bool
	Report(s Status)
}

// Pipeline bakes noise volumes and draws frames with them.
type Pipeline interface {
	Bake(layer noise.Layer, s noise.BakeSettings) error
	Render(f rendering.FrameState) error
	// Capture reads back the colour buffer of the last rendered frame.
	Capture() (*image.RGBA, error)
	Present() error
	Size() (width, height int)
}

// Exporter encodes a stream of rendered frames.
type Exporter interface {
	Start(width, height int, fps float64) error
	WriteFrame(img *image.RGBA) error
	Stop() error
}

// Clock abstracts wall time so pacing can be tested.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// NopUI never produces events and never has focus.
type NopUI struct{}

func (NopUI) Events() []Event { return nil }
func (NopUI) Focused() bool   { return false }
func (NopUI) Report(Status)   {}
