package mask

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// loadGray decodes a PNG mask into 8-bit grayscale, converting other
// color models as needed.
func loadGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
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

// unionInto ors src into dst as a per-pixel max, clipped to dst.
func unionInto(dst, src *image.Gray) {
	bounds := src.Bounds().Intersect(dst.Bounds())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := src.GrayAt(x, y).Y
			if v > dst.GrayAt(x, y).Y {
				dst.SetGray(x, y, src.GrayAt(x, y))
			}
		}
	}
}
