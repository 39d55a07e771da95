package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tmplworks/tmpl/internal/command"
	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/daemon"
	"github.com/tmplworks/tmpl/internal/logger"
	"github.com/tmplworks/tmpl/internal/pipeline"
)

func main() {
	var (
		panoramaID = flag.String("panorama", "", "Panorama id (default: first entry in the mask mapping)")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := config.Load()
	cfg.PanoramaID = *panoramaID

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fatalf("Failed to ensure directories: %v", err)
	}

	logFile, err := logger.InitFile(logDir(), "tmpl", level)
	if err != nil {
		fatalf("Failed to init log file: %v", err)
	}
	defer logFile.Close()

	pidFile := daemon.NewPIDFile(filepath.Join(filepath.Dir(cfg.SocketPath), "daemon.pid"))
	if pidFile.IsProcessAlive() {
		fmt.Println("Daemon already running")
		os.Exit(0)
	}
	if err := pidFile.Write(); err != nil {
		fatalf("Failed to write PID file: %v", err)
	}
	defer pidFile.Remove()

	sys, err := pipeline.Bootstrap(cfg)
	if err != nil {
		fatalf("Failed to bootstrap pipeline: %v", err)
	}
	defer sys.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sys.Start(ctx); err != nil {
		fatalf("Failed to start pipeline: %v", err)
	}

	registry := command.NewRegistry()
	runtime := &command.Runtime{
		Config:    cfg,
		Store:     sys.Store,
		Worker:    sys.Worker,
		StartTime: time.Now(),
	}
	if err := command.RegisterAll(registry, runtime); err != nil {
		fatalf("Failed to register commands: %v", err)
	}

	d := daemon.New(cfg.SocketPath, registry)
	if err := d.Start(); err != nil {
		fatalf("Failed to start daemon: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	d.Shutdown()
}

func logDir() string {
	if root, err := config.ProjectRoot(); err == nil {
		return filepath.Join(root, "logs")
	}
	return "logs"
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
