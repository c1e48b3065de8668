// Package mapgen generates island maps from layered simplex noise.
// An elevation layer separates sea, lowland and mountains; a moisture
// layer splits lowland into desert, savannah and jungle. The outer ring of
// every generated map is ocean.
package mapgen

import (
	"errors"
	"fmt"
	"math"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// ErrInvalidOptions is returned for options that cannot produce a map.
var ErrInvalidOptions = errors.New("invalid map options")

// Options holds map generation parameters. Noise values and levels are in
// [0, 1].
type Options struct {
	Seed          int64
	Rows          int
	Cols          int
	Scale         float64 // Base noise frequency
	Octaves       int     // Number of noise layers
	SeaLevel      float64 // Elevation below this: Ocean
	MountainLevel float64 // Elevation at or above this: Mountain
	DesertLevel   float64 // Moisture below this: Desert
	JungleLevel   float64 // Moisture at or above this: Jungle
}

// DefaultOptions returns a reasonable starting configuration.
func DefaultOptions() Options {
	return Options{
		Seed:          1,
		Rows:          15,
		Cols:          25,
		Scale:         0.12,
		Octaves:       4,
		SeaLevel:      0.35,
		MountainLevel: 0.75,
		DesertLevel:   0.35,
		JungleLevel:   0.55,
	}
}

// Validate reports the first unusable option.
func (o Options) Validate() error {
	switch {
	case o.Rows < 3 || o.Cols < 3:
		return fmt.Errorf("size %dx%d below 3x3: %w", o.Rows, o.Cols, ErrInvalidOptions)
	case o.Octaves < 1:
		return fmt.Errorf("octaves = %d: %w", o.Octaves, ErrInvalidOptions)
	case o.Scale <= 0:
		return fmt.Errorf("scale = %g: %w", o.Scale, ErrInvalidOptions)
	case o.SeaLevel > o.MountainLevel:
		return fmt.Errorf("sea level %g above mountain level %g: %w", o.SeaLevel, o.MountainLevel, ErrInvalidOptions)
	case o.DesertLevel > o.JungleLevel:
		return fmt.Errorf("desert level %g above jungle level %g: %w", o.DesertLevel, o.JungleLevel, ErrInvalidOptions)
	}
	return nil
}

// Generate returns a map in the island map format: one line per row, one
// landscape code per cell.
func Generate(opts Options) (string, error) {
	grid, err := Grid(opts)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n"), nil
}

// Grid returns the landscape codes of a generated map, row by row.
func Grid(opts Options) ([][]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Independent layers from neighbouring seeds.
	elevNoise := opensimplex.NewNormalized(opts.Seed)
	moistNoise := opensimplex.NewNormalized(opts.Seed + 1)

	cy := float64(opts.Rows-1) / 2
	cx := float64(opts.Cols-1) / 2

	grid := make([][]byte, opts.Rows)
	for r := range grid {
		grid[r] = make([]byte, opts.Cols)
		for c := range grid[r] {
			if r == 0 || c == 0 || r == opts.Rows-1 || c == opts.Cols-1 {
				grid[r][c] = 'O'
				continue
			}
			x, y := float64(c), float64(r)

			elev := octaveNoise(elevNoise, x, y, opts.Octaves, opts.Scale, 0.5)
			moist := octaveNoise(moistNoise, x, y, opts.Octaves, opts.Scale*0.8, 0.5)

			// Island shaping: lower elevation towards the edges.
			dx := (x - cx) / cx
			dy := (y - cy) / cy
			dist := math.Sqrt(dx*dx+dy*dy) / math.Sqrt2
			elev *= max(0, 1-math.Pow(dist, 3))

			grid[r][c] = classify(elev, moist, opts)
		}
	}
	return grid, nil
}

// classify derives a landscape code from elevation and moisture.
func classify(elev, moist float64, opts Options) byte {
	switch {
	case elev < opts.SeaLevel:
		return 'O'
	case elev >= opts.MountainLevel:
		return 'M'
	case moist < opts.DesertLevel:
		return 'D'
	case moist >= opts.JungleLevel:
		return 'J'
	}
	return 'S'
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
