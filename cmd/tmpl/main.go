package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/depth"
	"github.com/tmplworks/tmpl/internal/logger"
	"github.com/tmplworks/tmpl/internal/pipeline"
)

func main() {
	var (
		panoramaID      = flag.String("panorama", "", "Panorama id (default: first entry in the mask mapping)")
		replayPath      = flag.String("replay", "", "Replay depth frames from a JSONL recording")
		loop            = flag.Bool("loop", true, "Loop the replay recording")
		monitor         = flag.Bool("monitor", true, "Generate masks from sustained presence")
		debug           = flag.Bool("debug", false, "Enable debug mode")
		noVisualization = flag.Bool("no-visualization", false, "Disable depth visualization")
		mirror          = flag.Bool("mirror", false, "Enable mirror mode")
	)
	flag.Parse()

	cfg := config.Load()
	cfg.PanoramaID = *panoramaID
	cfg.Features.MaskGeneration = *monitor
	cfg.Features.Debug = *debug
	cfg.Features.Visualization = !*noVisualization
	if *mirror {
		cfg.Depth.MirrorMode = true
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger.Init(logger.Config{Level: level, Format: "text", Output: os.Stderr})

	if err := run(cfg, *replayPath, *loop); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, replayPath string, loop bool) error {
	if replayPath == "" {
		return fmt.Errorf("no depth source: pass --replay (the camera runner connects through the daemon)")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	sys, err := pipeline.Bootstrap(cfg)
	if err != nil {
		return err
	}
	defer sys.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	if err := sys.Start(ctx); err != nil {
		return err
	}

	source := depth.NewReplaySource(replayPath, cfg.Timing.UIRefreshInterval, loop)
	defer source.Close()

	engine := pipeline.New(cfg, source, sys.Tracker, sys.Worker)
	if err := engine.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	fmt.Println(engine.Playback().Format())
	return nil
}
