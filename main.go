package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/df07/go-progressive-pathtracer/pkg/config"
	"github.com/df07/go-progressive-pathtracer/pkg/control"
	"github.com/df07/go-progressive-pathtracer/pkg/display"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"golang.org/x/sync/errgroup"
)

const controlFPS = 30

var errQuit = errors.New("quit")

// runOptions holds the settings shared by both output modes
type runOptions struct {
	Scene           string
	Frames          int
	Width           int
	SamplesPerPixel int
	MaxDepth        int
	Workers         int
	Output          string
	EarthTexture    string
	MeshPath        string
}

func (o runOptions) sceneOptions(logger *slog.Logger) scene.Options {
	return scene.Options{
		Width:           o.Width,
		SamplesPerPixel: o.SamplesPerPixel,
		MaxDepth:        o.MaxDepth,
		EarthTexture:    o.EarthTexture,
		MeshPath:        o.MeshPath,
		Logger:          logger,
	}
}

func (o runOptions) progressiveConfig() renderer.ProgressiveConfig {
	pc := renderer.DefaultProgressiveConfig()
	pc.NumWorkers = o.Workers
	return pc
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	mode := flag.String("mode", "png", "Output mode: 'png' or 'terminal'")
	sceneName := flag.String("scene", cfg.Scene, "Scene to render")
	frames := flag.Int("frames", cfg.Frames, "Frames to average in png mode")
	width := flag.Int("width", cfg.Width, "Image width in pixels (0 keeps the scene's)")
	spp := flag.Int("spp", cfg.SamplesPerPixel, "Samples per pixel per frame (0 keeps the scene's)")
	output := flag.String("output", cfg.Output, "Output directory for png mode")
	list := flag.Bool("list", false, "List the available scenes and exit")
	flag.Parse()

	if *list {
		for _, group := range scene.ListAllScenes().Groups {
			fmt.Println(group.Name)
			for _, info := range group.Scenes {
				fmt.Printf("  %-16s %s\n", info.ID, info.Description)
			}
		}
		return
	}

	opts := runOptions{
		Scene:           *sceneName,
		Frames:          *frames,
		Width:           *width,
		SamplesPerPixel: *spp,
		MaxDepth:        cfg.MaxDepth,
		Workers:         cfg.Workers,
		Output:          *output,
		EarthTexture:    cfg.EarthTexture,
		MeshPath:        cfg.MeshPath,
	}
	level, _ := cfg.Level()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "png":
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		filename, err := renderPNG(ctx, opts, logger)
		if err != nil {
			logger.Error("render failed", "error", err)
			os.Exit(1)
		}
		logger.Info("render saved", "file", filename)

	case "terminal":
		// The screen belongs to the image, so logs go to a file
		logger, closeLog, err := fileLogger(opts.Output, level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()
		slog.SetDefault(logger)

		if err := runTerminal(ctx, opts, logger); err != nil {
			closeLog()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q, expected 'png' or 'terminal'\n", *mode)
		os.Exit(2)
	}
}

// renderPNG averages opts.Frames frames and saves them under
// <output>/<scene>/render_<timestamp>.png
func renderPNG(ctx context.Context, opts runOptions, logger *slog.Logger) (string, error) {
	if opts.Frames <= 0 {
		return "", fmt.Errorf("frames must be positive, got %d", opts.Frames)
	}

	sc, err := scene.ByName(opts.Scene, opts.sceneOptions(logger))
	if err != nil {
		return "", err
	}

	session := renderer.NewSession(sc, opts.progressiveConfig(), logger)
	defer session.Close()

	logger.Info("rendering", "scene", sc.Name, "primitives", sc.GetPrimitiveCount(),
		"width", sc.CameraConfig.Width, "frames", opts.Frames)

	start := time.Now()
	results, errs := session.RenderProgressive(ctx, opts.Frames)
	var last renderer.FrameResult
	for result := range results {
		last = result
		logger.Info("frame", result.Stats.LogAttrs()...)
	}
	if err := <-errs; err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger.Info("render completed", "elapsed", time.Since(start), "frames", last.Stats.Frame)

	outputDir := filepath.Join(opts.Output, sc.Name)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, last.Image()); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return filename, nil
}

// runTerminal renders the scene into the terminal until the user quits,
// steering the camera and focus sphere from the keyboard
func runTerminal(ctx context.Context, opts runOptions, logger *slog.Logger) error {
	term, err := display.Open()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := term.Close(shutdownCtx); err != nil {
			logger.Warn("terminal shutdown", "error", err)
		}
	}()

	cols, rows := term.Size()
	sceneOpts := opts.sceneOptions(logger)
	sceneOpts.Width, sceneOpts.AspectRatio = display.CameraSize(cols, rows)

	sc, err := scene.ByName(opts.Scene, sceneOpts)
	if err != nil {
		return err
	}

	session := renderer.NewSession(sc, opts.progressiveConfig(), logger)
	defer session.Close()

	controller, err := control.New(session, controlFPS)
	if err != nil {
		return err
	}

	// mu serializes terminal drawing and controller updates
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		results, errs := session.RenderProgressive(ctx, 0)
		for result := range results {
			mu.Lock()
			err := term.Show(result, display.Status(session.SceneName(), result.Stats))
			mu.Unlock()
			if err != nil {
				return err
			}
		}
		return <-errs
	})

	g.Go(func() error {
		events := term.Events()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return errQuit
				}
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					mu.Lock()
					err := term.Resize(ev.Width, ev.Height)
					if err == nil {
						width, aspect := display.CameraSize(ev.Width, ev.Height)
						err = controller.Resize(width, aspect)
					}
					mu.Unlock()
					if err != nil {
						logger.Warn("resize rejected", "error", err)
					}
				case uv.KeyPressEvent:
					if display.IsQuit(ev) {
						return errQuit
					}
					action := display.ActionFor(ev)
					if action == control.None {
						continue
					}
					mu.Lock()
					err := controller.Handle(action)
					mu.Unlock()
					if err != nil {
						logger.Debug("action refused", "action", action, "error", err)
					}
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Second / controlFPS)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				_, err := controller.Tick()
				mu.Unlock()
				if err != nil {
					logger.Warn("camera update rejected", "error", err)
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	err = g.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// fileLogger logs to <dir>/terminal.log
func fileLogger(dir string, level slog.Level) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "terminal.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), func() { once.Do(func() { f.Close() }) }, nil
}
