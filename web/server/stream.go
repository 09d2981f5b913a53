package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/df07/go-progressive-pathtracer/pkg/control"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait  = 10 * time.Second
	maxMsgSize = 64 * 1024
	controlFPS = 30
)

// errViewerLeft ends a stream when the browser closes the socket
var errViewerLeft = errors.New("viewer left")

// Message is the envelope of every websocket message in both directions
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Server to browser
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeConsole = "console"
	TypeError   = "error"

	// Browser to server
	TypeKey        = "key"
	TypeCamera     = "camera"
	TypeSphereMove = "sphere.move"
)

type WelcomePayload struct {
	ViewerID string        `json:"viewerId"`
	Scene    string        `json:"scene"`
	Focus    string        `json:"focus,omitempty"`
	Camera   CameraPayload `json:"camera"`
}

type FramePayload struct {
	Frame     int    `json:"frame"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Samples   int    `json:"samples"`
	ElapsedMs int64  `json:"elapsedMs"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
}

type KeyPayload struct {
	Key string `json:"key"`
}

type CameraPayload struct {
	Center [3]float64 `json:"center"`
	LookAt [3]float64 `json:"lookAt"`
}

type SphereMovePayload struct {
	Handle string     `json:"handle"`
	Center [3]float64 `json:"center"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func toVec3(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}

// viewer is one browser connection with its own session
type viewer struct {
	id      string
	conn    *websocket.Conn
	session *renderer.Session
	send    chan []byte
	logger  *slog.Logger

	mu         sync.Mutex // Guards controller
	controller *control.Controller
}

// handleStream upgrades to a websocket and streams progressive frames of a
// private copy of the scene. The browser steers it with key, camera and
// sphere.move messages.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	maxFrames, err := parseIntParam(r.URL.Query(), "frames", 0, 0, 1_000_000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	viewerID := uuid.New().String()
	console := make(chan ConsoleMessage, 64)
	logger := slog.New(NewConsoleHandler(s.logger.Handler(), console, slog.LevelInfo)).With("viewer", viewerID)

	session, ok := s.newSession(w, r, logger)
	if !ok {
		return
	}
	defer session.Close()

	controller, err := control.New(session, controlFPS)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.Origins,
	})
	if err != nil {
		s.logger.Error("websocket accept", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(maxMsgSize)

	v := &viewer{
		id:         viewerID,
		conn:       conn,
		session:    session,
		send:       make(chan []byte, 16),
		logger:     logger,
		controller: controller,
	}

	logger.Info("viewer connected", "scene", session.SceneName())
	err = v.run(r.Context(), maxFrames, console)
	s.logger.Info("viewer disconnected", "viewer", viewerID, "reason", err)
}

func (v *viewer) run(ctx context.Context, maxFrames int, console <-chan ConsoleMessage) error {
	welcome := WelcomePayload{ViewerID: v.id, Scene: v.session.SceneName()}
	if h, ok := v.session.Focus(); ok {
		welcome.Focus = h.String()
	}
	camera := v.session.CameraConfig()
	welcome.Camera = CameraPayload{Center: vec(camera.Center), LookAt: vec(camera.LookAt)}
	v.queue(TypeWelcome, welcome)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return v.writePump(ctx) })
	g.Go(func() error { return v.readPump(ctx) })
	g.Go(func() error { return v.renderLoop(ctx, maxFrames) })
	g.Go(func() error { return v.tickLoop(ctx) })
	g.Go(func() error { return v.forwardConsole(ctx, console) })

	err := g.Wait()
	if errors.Is(err, errViewerLeft) {
		return nil
	}
	return err
}

// queue marshals a message for the writer, dropping it if the viewer is
// too far behind
func (v *viewer) queue(msgType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		v.logger.Error("marshal payload", "type", msgType, "error", err)
		return
	}
	data, err := json.Marshal(Message{Type: msgType, Payload: body})
	if err != nil {
		v.logger.Error("marshal message", "type", msgType, "error", err)
		return
	}

	select {
	case v.send <- data:
	default:
		v.logger.Debug("send buffer full, dropping message", "type", msgType)
	}
}

func (v *viewer) sendError(err error) {
	v.queue(TypeError, ErrorPayload{Message: err.Error()})
}

func (v *viewer) writePump(ctx context.Context) error {
	for {
		select {
		case message := <-v.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := v.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return fmt.Errorf("write: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (v *viewer) readPump(ctx context.Context) error {
	for {
		_, data, err := v.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return errViewerLeft
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			v.sendError(fmt.Errorf("invalid message: %w", err))
			continue
		}
		if err := v.handleMessage(msg); err != nil {
			v.sendError(err)
		}
	}
}

func (v *viewer) handleMessage(msg Message) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch msg.Type {
	case TypeKey:
		var p KeyPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
		}
		action := control.ActionForKey(p.Key)
		if action == control.None {
			return fmt.Errorf("unbound key %q", p.Key)
		}
		return v.controller.Handle(action)

	case TypeCamera:
		var p CameraPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
		}
		return v.controller.SetView(toVec3(p.Center), toVec3(p.LookAt))

	case TypeSphereMove:
		var p SphereMovePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
		}
		h, err := scene.ParseHandle(p.Handle)
		if err != nil {
			return err
		}
		return v.controller.MoveSphere(h, toVec3(p.Center))
	}
	return fmt.Errorf("unknown message type %q", msg.Type)
}

func (v *viewer) renderLoop(ctx context.Context, maxFrames int) error {
	frames, errs := v.session.RenderProgressive(ctx, maxFrames)
	for result := range frames {
		imageData, err := imageToBase64PNG(result.Image())
		if err != nil {
			return fmt.Errorf("encode frame: %w", err)
		}
		v.queue(TypeFrame, FramePayload{
			Frame:     result.Stats.Frame,
			Width:     result.Width,
			Height:    result.Height,
			Samples:   result.Stats.Samples,
			ElapsedMs: result.Stats.Duration.Milliseconds(),
			ImageData: imageData,
		})
	}
	return <-errs
}

// tickLoop drives the camera springs
func (v *viewer) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / controlFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			v.mu.Lock()
			_, err := v.controller.Tick()
			v.mu.Unlock()
			if err != nil {
				v.sendError(err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (v *viewer) forwardConsole(ctx context.Context, console <-chan ConsoleMessage) error {
	for {
		select {
		case msg := <-console:
			v.queue(TypeConsole, msg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
