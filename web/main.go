package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-progressive-pathtracer/pkg/config"
	"github.com/df07/go-progressive-pathtracer/web/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.Addr, "Address to serve on")
	staticDir := flag.String("static", cfg.StaticDir, "Directory of static viewer files")
	flag.Parse()

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	srv := server.NewServer(server.Options{
		Width:           cfg.Width,
		SamplesPerPixel: cfg.SamplesPerPixel,
		MaxDepth:        cfg.MaxDepth,
		Workers:         cfg.Workers,
		Frames:          cfg.Frames,
		EarthTexture:    cfg.EarthTexture,
		MeshPath:        cfg.MeshPath,
		Origins:         cfg.Origins(),
		StaticDir:       *staticDir,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("progressive path tracer web server", "addr", *addr)
	if err := srv.ListenAndServe(ctx, *addr); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
