package spade

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tmplworks/tmpl/internal/logger"
)

var log = logger.ForComponent("spade")

// ErrNoModelRunner means bypass is off but no external model command
// was configured.
var ErrNoModelRunner = errors.New("no model command configured and bypass disabled")

// Generator renders a composed mask into imagery.
type Generator interface {
	ProcessMask(ctx context.Context, maskPath, outPath string) error
}

// New selects the renderer for the given options: the colormap bypass,
// or the external model runner.
func New(opts Options) (Generator, error) {
	if opts.Bypass {
		return NewColorizer(opts.Colormap)
	}
	if opts.ModelCommand == "" {
		return nil, ErrNoModelRunner
	}
	return &ExternalGenerator{opts: opts}, nil
}

// ExternalGenerator shells out to the model runner, passing the mask
// and output paths plus checkpoint selection as arguments.
type ExternalGenerator struct {
	opts Options
}

func (g *ExternalGenerator) ProcessMask(ctx context.Context, maskPath, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, g.opts.ModelCommand,
		"--checkpoints-dir", g.opts.CheckpointsDir,
		"--name", g.opts.Name,
		"--device", g.opts.Device,
		"--mask", maskPath,
		"--out", outPath,
	)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	log.Debug("invoking model runner", "command", g.opts.ModelCommand, "mask", maskPath)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("model runner: %w", err)
	}

	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("model runner produced no output at %s", outPath)
	}
	return nil
}
