package main

import (
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/softras/pkg/math3d"
)

// Input is everything the user asked for during one frame. The frame loop
// builds a fresh one from the pending terminal events and hands it to the
// scene, so nothing outside the loop reads keyboard state.
type Input struct {
	Move math3d.Vec3 // x right, y up, z forward; one unit per key press or wheel notch
	Look math3d.Vec2 // x yaw, y pitch; one unit per key press

	SpeedUp, SpeedDown int

	Spin            bool
	ToggleWireframe bool
	Reset           bool
	Quit            bool

	// Resized is set when the terminal changed size; Cols and Rows hold the
	// new size in cells.
	Resized    bool
	Cols, Rows int
}

// Apply folds one terminal event into the input.
func (in *Input) Apply(ev uv.Event) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		in.Resized = true
		in.Cols, in.Rows = ev.Width, ev.Height

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("esc", "ctrl+c"):
			in.Quit = true
		case ev.MatchString("w"):
			in.Move.Z++
		case ev.MatchString("s"):
			in.Move.Z--
		case ev.MatchString("d"):
			in.Move.X++
		case ev.MatchString("a"):
			in.Move.X--
		case ev.MatchString("e"):
			in.Move.Y++
		case ev.MatchString("q"):
			in.Move.Y--
		case ev.MatchString("up"):
			in.Look.Y++
		case ev.MatchString("down"):
			in.Look.Y--
		case ev.MatchString("left"):
			in.Look.X++
		case ev.MatchString("right"):
			in.Look.X--
		case ev.MatchString("r"):
			in.SpeedUp++
		case ev.MatchString("f"):
			in.SpeedDown++
		case ev.MatchString("space"):
			in.Spin = true
		case ev.MatchString("x"):
			in.ToggleWireframe = !in.ToggleWireframe
		case ev.MatchString("c"):
			in.Reset = true
		}
	}
}

// dragLook converts a drag of one cell into look units.
const dragLook = 0.6

// Mouse remembers the drag in progress between frames.
type Mouse struct {
	down bool
	x, y int
}

// Apply folds one mouse event into in. Dragging with the left button turns
// the camera and the wheel moves it forward or back.
func (m *Mouse) Apply(in *Input, ev uv.Event) {
	switch ev := ev.(type) {
	case uv.MouseClickEvent:
		if ev.Button == uv.MouseLeft {
			m.down = true
			m.x, m.y = ev.X, ev.Y
		}

	case uv.MouseReleaseEvent:
		m.down = false

	case uv.MouseMotionEvent:
		if !m.down {
			return
		}
		// Screen y grows downward.
		in.Look.X -= float64(ev.X-m.x) * dragLook
		in.Look.Y -= float64(ev.Y-m.y) * dragLook
		m.x, m.y = ev.X, ev.Y

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			in.Move.Z++
		case uv.MouseWheelDown:
			in.Move.Z--
		}
	}
}

// PollInput drains the events that are already waiting without blocking.
// A closed channel reads as a request to quit. Mouse events are ignored when
// mouse is nil.
func PollInput(events <-chan uv.Event, mouse *Mouse) Input {
	var in Input
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				in.Quit = true
				return in
			}
			in.Apply(ev)
			if mouse != nil {
				mouse.Apply(&in, ev)
			}
		default:
			return in
		}
	}
}
