package display

import (
	"bytes"
	"strings"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

func TestTerminalShowWritesFrame(t *testing.T) {
	var out bytes.Buffer
	term := &Terminal{term: uv.NewTerminal(strings.NewReader(""), &out, []string{"TERM=xterm-256color"})}
	if err := term.Resize(4, 3); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if w, h := term.Size(); w != 4 || h != 3 {
		t.Fatalf("Expected size 4x3, got %dx%d", w, h)
	}

	frame := renderer.FrameResult{Width: 4, Height: 4, Pixels: make([]uint32, 16)}
	for i := range frame.Pixels {
		frame.Pixels[i] = 0xFF8000
	}
	if err := term.Show(frame, "ok"); err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	written := out.String()
	if !strings.Contains(written, "▀") {
		t.Errorf("Expected half blocks in terminal output, got %q", written)
	}
	if !strings.Contains(written, "ok") {
		t.Errorf("Expected status line in terminal output, got %q", written)
	}
}
