package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// quadrants is a 2x2 image: white red / green blue, row 0 on top
func quadrants() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})
	img.Set(1, 0, color.RGBA{255, 0, 0, 255})
	img.Set(0, 1, color.RGBA{0, 255, 0, 255})
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})
	return img
}

func colorNear(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quadrants.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, quadrants()); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if data.Width() != 2 || data.Height() != 2 {
		t.Fatalf("Expected 2x2 image, got %dx%d", data.Width(), data.Height())
	}

	tests := []struct {
		name     string
		x, y     int
		expected core.Vec3
	}{
		{"top left", 0, 0, core.NewVec3(1, 1, 1)},
		{"top right", 1, 0, core.NewVec3(1, 0, 0)},
		{"bottom left", 0, 1, core.NewVec3(0, 1, 0)},
		{"bottom right", 1, 1, core.NewVec3(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := data.PixelAt(tt.x, tt.y); !colorNear(got, tt.expected, 1e-9) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	// v=1 is the top row once wrapped in a texture
	texture := material.NewImageTexture(data)
	if got := texture.Evaluate(core.NewVec2(0.9, 0.9), core.Vec3{}); !colorNear(got, core.NewVec3(1, 0, 0), 1e-9) {
		t.Errorf("Expected red at the top right of the texture, got %v", got)
	}
}

func TestDecodeImageJPEG(t *testing.T) {
	// A flat color survives JPEG compression closely enough
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{128, 64, 192, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	data, err := DecodeImage(&buf)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	expected := core.NewVec3(128.0/255, 64.0/255, 192.0/255)
	if got := data.PixelAt(4, 4); !colorNear(got, expected, 0.03) {
		t.Errorf("Expected about %v, got %v", expected, got)
	}
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	if _, err := DecodeImage(strings.NewReader("definitely not an image")); err == nil {
		t.Error("Expected decode error, got nil")
	}
}

func TestLoadImageNotFound(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
