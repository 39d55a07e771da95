package depth

import "fmt"

// Analyzer reduces a distance grid to per-column presence bits.
type Analyzer struct {
	config Config
}

func NewAnalyzer(config Config) *Analyzer {
	return &Analyzer{config: config}
}

// AnalyzeColumns reports, for each grid column, whether any cell in it
// holds a distance inside the configured thresholds. Distances arrive
// row-major, GridV rows of GridH samples. Mirroring flips columns
// horizontally.
func (a *Analyzer) AnalyzeColumns(distances []float64, mirror bool) ([]int, error) {
	nH, nV := a.config.GridH, a.config.GridV
	if len(distances) != nH*nV {
		return nil, fmt.Errorf("expected %d distances, got %d", nH*nV, len(distances))
	}

	presence := make([]int, nH)
	for row := 0; row < nV; row++ {
		for col := 0; col < nH; col++ {
			d := distances[row*nH+col]
			if d < a.config.MinThreshold || d > a.config.MaxThreshold {
				continue
			}

			target := col
			if mirror {
				target = nH - 1 - col
			}
			presence[target] = 1
		}
	}

	return presence, nil
}
