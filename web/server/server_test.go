package server

import (
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewServer(Options{Workers: 2, Frames: 1, SamplesPerPixel: 1}, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: expected status %d, got %d: %s", url, wantStatus, resp.StatusCode, body)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	getJSON(t, ts.URL+"/api/health", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestHandleScenes(t *testing.T) {
	ts := newTestServer(t)
	var body scene.ScenesResponse
	getJSON(t, ts.URL+"/api/scenes", http.StatusOK, &body)

	if body.Default != scene.DefaultScene {
		t.Errorf("Expected default %s, got %s", scene.DefaultScene, body.Default)
	}
	count := 0
	for _, g := range body.Groups {
		count += len(g.Scenes)
	}
	if count != len(scene.Names()) {
		t.Errorf("Expected %d scenes, got %d", len(scene.Names()), count)
	}
}

func TestHandleRenderPNG(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/render/two-spheres?width=16&frames=2")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	if frames := resp.Header.Get("X-Frames"); frames != "2" {
		t.Errorf("Expected X-Frames 2, got %s", frames)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("Decode PNG failed: %v", err)
	}
	// 16 wide at 16:9
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 9 {
		t.Errorf("Expected 16x9 image, got %v", b)
	}
}

func TestHandleRenderErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown scene", "/api/render/no-such-scene?width=16", http.StatusNotFound},
		{"width too small", "/api/render/two-spheres?width=2", http.StatusBadRequest},
		{"width not a number", "/api/render/two-spheres?width=wide", http.StatusBadRequest},
		{"too many frames", "/api/render/two-spheres?frames=0", http.StatusBadRequest},
		{"inspect without x", "/api/inspect/cornell?y=3", http.StatusBadRequest},
		{"inspect out of bounds", "/api/inspect/cornell?width=16&x=16&y=0", http.StatusBadRequest},
		{"inspect unknown scene", "/api/inspect/nope?x=1&y=1", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			getJSON(t, ts.URL+tt.path, tt.status, &body)
			if body["error"] == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestHandleInspect(t *testing.T) {
	ts := newTestServer(t)

	// The center of the Cornell box view is covered by the glass sphere
	var body InspectResponse
	getJSON(t, ts.URL+"/api/inspect/cornell?width=32&x=16&y=16", http.StatusOK, &body)

	if !body.Hit {
		t.Fatal("Expected a hit")
	}
	if body.GeometryType != "sphere" || body.MaterialType != "dielectric" {
		t.Errorf("Expected dielectric sphere, got %s %s", body.MaterialType, body.GeometryType)
	}
	if _, err := scene.ParseHandle(body.Handle); err != nil {
		t.Errorf("Expected a primitive handle, got %q: %v", body.Handle, err)
	}
	if body.Distance <= 0 || !body.FrontFace {
		t.Errorf("Expected front face hit in front of the camera, got t=%f front=%t", body.Distance, body.FrontFace)
	}
	geom, ok := body.Properties["geometry"].(map[string]any)
	if !ok || geom["radius"] != 80.0 {
		t.Errorf("Expected radius 80 in geometry properties, got %v", body.Properties["geometry"])
	}
}
