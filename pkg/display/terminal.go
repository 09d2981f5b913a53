package display

import (
	"context"
	"fmt"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/df07/go-progressive-pathtracer/pkg/control"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// Terminal is a full-screen terminal display
type Terminal struct {
	term          *uv.Terminal
	width, height int
}

// Open takes over the terminal: alternate screen, hidden cursor
func Open() (*Terminal, error) {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return nil, fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return nil, fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()

	t := &Terminal{term: term}
	if err := t.Resize(width, height); err != nil {
		_ = term.Shutdown(context.Background())
		return nil, err
	}
	return t, nil
}

// Size returns the terminal size in cells
func (t *Terminal) Size() (int, int) {
	return t.width, t.height
}

// Events returns the terminal's input events
func (t *Terminal) Events() <-chan uv.Event {
	return t.term.Events()
}

// Resize adopts a new terminal size and clears the screen
func (t *Terminal) Resize(width, height int) error {
	t.width, t.height = width, height
	t.term.Erase()
	if err := t.term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}
	return nil
}

// Show draws a frame and its status line and flushes them to the terminal
func (t *Terminal) Show(frame renderer.FrameResult, status string) error {
	Draw(t.term, ImageArea(t.width, t.height), frame)
	if t.height > statusRows {
		DrawStatus(t.term, t.height-statusRows, t.width, status)
	}
	return t.term.Display()
}

// Close restores the terminal
func (t *Terminal) Close(ctx context.Context) error {
	t.term.Erase()
	t.term.ExitAltScreen()
	t.term.ShowCursor()
	return t.term.Shutdown(ctx)
}

// ActionFor maps a key press to a control action
func ActionFor(ev uv.KeyPressEvent) control.Action {
	for _, b := range control.Bindings {
		if ev.MatchString(b.Keys...) {
			return b.Action
		}
	}
	return control.None
}

// IsQuit reports whether a key press asks to leave
func IsQuit(ev uv.KeyPressEvent) bool {
	return ev.MatchString("escape", "ctrl+c")
}
