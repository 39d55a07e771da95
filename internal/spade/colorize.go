package spade

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "image/png"
)

// jpegQuality matches the synthesis output encoding.
const jpegQuality = 95

type colorStop struct {
	pos     float64
	r, g, b uint8
}

// Gradient anchors sampled from the matplotlib colormaps the
// installation uses.
var colormaps = map[string][]colorStop{
	"viridis": {
		{0.00, 68, 1, 84},
		{0.25, 59, 82, 139},
		{0.50, 33, 145, 140},
		{0.75, 94, 201, 98},
		{1.00, 253, 231, 37},
	},
	"magma": {
		{0.00, 0, 0, 4},
		{0.25, 81, 18, 124},
		{0.50, 183, 55, 121},
		{0.75, 252, 137, 97},
		{1.00, 252, 253, 191},
	},
	"gray": {
		{0.00, 0, 0, 0},
		{1.00, 255, 255, 255},
	},
}

// Colorizer is the bypass renderer: it maps a grayscale mask through a
// colormap instead of running the model.
type Colorizer struct {
	stops []colorStop
}

func NewColorizer(colormap string) (*Colorizer, error) {
	stops, ok := colormaps[colormap]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q", colormap)
	}
	return &Colorizer{stops: stops}, nil
}

func (c *Colorizer) ProcessMask(ctx context.Context, maskPath, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mask, err := loadGrayscale(maskPath)
	if err != nil {
		return fmt.Errorf("load mask: %w", err)
	}

	rendered := c.render(mask)

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, rendered, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// render min-max normalizes the mask and maps every pixel through the
// gradient. A flat mask maps to the gradient's low end.
func (c *Colorizer) render(mask *image.Gray) *image.RGBA {
	bounds := mask.Bounds()

	minVal, maxVal := uint8(255), uint8(0)
	for _, v := range mask.Pix {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	span := float64(maxVal) - float64(minVal)
	out := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := mask.GrayAt(x, y).Y

			norm := 0.0
			if span > 0 {
				norm = (float64(v) - float64(minVal)) / span
			}

			r, g, b := c.sample(norm)
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out
}

func (c *Colorizer) sample(pos float64) (uint8, uint8, uint8) {
	stops := c.stops
	if pos <= stops[0].pos {
		return stops[0].r, stops[0].g, stops[0].b
	}

	for i := 1; i < len(stops); i++ {
		if pos > stops[i].pos {
			continue
		}
		lo, hi := stops[i-1], stops[i]
		t := (pos - lo.pos) / (hi.pos - lo.pos)
		return lerp(lo.r, hi.r, t), lerp(lo.g, hi.g, t), lerp(lo.b, hi.b, t)
	}

	last := stops[len(stops)-1]
	return last.r, last.g, last.b
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

func loadGrayscale(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	if gray, ok := img.(*image.Gray); ok {
		return gray, nil
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray, nil
}
