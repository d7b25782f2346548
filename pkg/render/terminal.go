package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// halfBlock is the upper half block. Its foreground paints the top half of
// a cell and its background the bottom half.
const halfBlock = "▀"

// Draw converts the render target to terminal cells and draws them on the
// screen, implementing uv.Drawable. Each cell shows two pixel rows, so the
// target should be twice as tall as area. Rows are flipped so the top of
// the image lands on the top of area.
func (rt *RenderTarget) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := 0; row < area.Dy(); row++ {
		topY := rt.Height - 1 - row*2
		botY := topY - 1

		for col := 0; col < area.Dx() && col < rt.Width; col++ {
			scr.SetCell(area.Min.X+col, area.Min.Y+row, &uv.Cell{
				Content: halfBlock,
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(rt.PixelColor(col, topY)),
					Bg: cellColor(rt.PixelColor(col, botY)),
				},
			})
		}
	}
}

// cellColor converts a pixel to a terminal color. Fully transparent pixels
// map to nil, the terminal's default color.
func cellColor(c Color) color.Color {
	n := c.NRGBA()
	if n.A == 0 {
		return nil
	}
	return n
}

// TerminalRenderer shows render targets on a terminal.
type TerminalRenderer struct {
	term       *uv.Terminal
	cols, rows int
}

// NewTerminalRenderer creates a renderer for a terminal of cols × rows
// cells.
func NewTerminalRenderer(term *uv.Terminal, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{term: term, cols: cols, rows: rows}
}

// TargetSize returns the render target size that fills the terminal: one
// pixel per column and two per row.
func (r *TerminalRenderer) TargetSize() (width, height int) {
	return r.cols, r.rows * 2
}

// Render draws rt into the terminal's screen buffer. Nothing is shown until
// Flush.
func (r *TerminalRenderer) Render(rt *RenderTarget) {
	r.term.Draw(rt)
}

// Flush writes the pending frame to the terminal.
func (r *TerminalRenderer) Flush() error {
	return r.term.Display()
}
