// Package display shows progressive frames in a terminal using half-block
// cells: each cell carries two vertically stacked pixels.
package display

import (
	"fmt"
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// statusRows is the number of rows below the image kept for the status line
const statusRows = 1

var statusStyle = uv.Style{
	Fg: color.RGBA{220, 220, 220, 255},
	Bg: color.RGBA{30, 30, 40, 255},
}

// CellSetter is the part of a screen the display draws on
type CellSetter interface {
	SetCell(x, y int, c *uv.Cell)
}

// CameraSize returns the render width and aspect ratio that fill a terminal
// of cols x rows cells, leaving room for the status line
func CameraSize(cols, rows int) (int, float64) {
	cols = max(cols, 1)
	imageRows := max(rows-statusRows, 1)
	return cols, float64(cols) / float64(2*imageRows)
}

// ImageArea returns the cells the image occupies
func ImageArea(cols, rows int) uv.Rectangle {
	return uv.Rectangle(image.Rect(0, 0, cols, max(rows-statusRows, 1)))
}

// Draw paints frame into area. The frame is sampled nearest-neighbor, so a
// frame rendered for the previous terminal size still fills the area.
func Draw(scr CellSetter, area uv.Rectangle, frame renderer.FrameResult) {
	cols, rows := area.Dx(), area.Dy()
	if frame.Width == 0 || frame.Height == 0 || cols <= 0 || rows <= 0 {
		return
	}

	pixel := func(col, y int) color.Color {
		px := col * frame.Width / cols
		py := y * frame.Height / (2 * rows)
		r, g, b := renderer.UnpackColor(frame.Pixels[py*frame.Width+px])
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			scr.SetCell(area.Min.X+col, area.Min.Y+row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: pixel(col, 2*row),
					Bg: pixel(col, 2*row+1),
				},
			})
		}
	}
}

// DrawStatus writes text on row y, padded with blanks to width cols
func DrawStatus(scr CellSetter, y, cols int, text string) {
	runes := []rune(text)
	for x := 0; x < cols; x++ {
		content := " "
		if x < len(runes) {
			content = string(runes[x])
		}
		scr.SetCell(x, y, &uv.Cell{Content: content, Width: 1, Style: statusStyle})
	}
}

// Status formats the status line for a frame
func Status(sceneName string, stats renderer.FrameStats) string {
	return fmt.Sprintf(" %s | frame %d | %v | %.0f samples/s | wasd/eq camera, arrows/[] sphere, esc quit",
		sceneName, stats.Frame, stats.Duration.Round(1e6), stats.SamplesPerSecond())
}
