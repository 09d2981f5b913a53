package server

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"time"
)

// handleRender renders a fixed number of frames and returns the averaged
// image as PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	frames, err := parseIntParam(r.URL.Query(), "frames", s.opts.Frames, 1, 10000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, ok := s.newSession(w, r, s.logger)
	if !ok {
		return
	}
	defer session.Close()

	// Client disconnects cancel the frame in flight
	ctx := r.Context()
	start := time.Now()
	for i := 0; i < frames; i++ {
		if _, err := session.RenderFrame(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.Debug("render cancelled", "scene", session.SceneName(), "frames", i)
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	s.logger.Info("render complete", "scene", session.SceneName(), "frames", frames, "elapsed", time.Since(start))

	var buf bytes.Buffer
	if err := png.Encode(&buf, session.Image()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Frames", strconv.Itoa(frames))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
