package mapgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/pthm-cable/biosim/island"
)

func TestGenerateOceanBorder(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		opts := DefaultOptions()
		opts.Seed = seed
		grid, err := Grid(opts)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(grid) != opts.Rows {
			t.Fatalf("seed %d: %d rows, want %d", seed, len(grid), opts.Rows)
		}
		for r, row := range grid {
			if len(row) != opts.Cols {
				t.Fatalf("seed %d row %d: %d cols, want %d", seed, r, len(row), opts.Cols)
			}
			for c, code := range row {
				edge := r == 0 || c == 0 || r == opts.Rows-1 || c == opts.Cols-1
				if edge && code != 'O' {
					t.Errorf("seed %d: edge cell (%d, %d) = %c, want O", seed, r, c, code)
				}
				if !strings.ContainsRune("OMDJS", rune(code)) {
					t.Errorf("seed %d: cell (%d, %d) has code %c", seed, r, c, code)
				}
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	opts := DefaultOptions()
	a, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(opts)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("same options produced different maps")
	}
}

func TestGenerateParsesAsIsland(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		opts := DefaultOptions()
		opts.Seed = seed
		m, err := Generate(opts)
		if err != nil {
			t.Fatal(err)
		}
		terrain, err := island.ParseMap(m)
		if err != nil {
			t.Fatalf("seed %d: generated map rejected: %v\n%s", seed, err, m)
		}
		if len(terrain) != opts.Rows || len(terrain[0]) != opts.Cols {
			t.Errorf("seed %d: parsed %dx%d, want %dx%d", seed, len(terrain), len(terrain[0]), opts.Rows, opts.Cols)
		}
	}
}

func TestClassify(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		elev, moist float64
		want        byte
	}{
		{0.1, 0.9, 'O'},
		{0.9, 0.1, 'M'},
		{0.5, 0.1, 'D'},
		{0.5, 0.9, 'J'},
		{0.5, 0.45, 'S'},
	}
	for _, tt := range tests {
		if got := classify(tt.elev, tt.moist, opts); got != tt.want {
			t.Errorf("classify(%v, %v) = %c, want %c", tt.elev, tt.moist, got, tt.want)
		}
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"too small", func(o *Options) { o.Rows = 2 }},
		{"no octaves", func(o *Options) { o.Octaves = 0 }},
		{"zero scale", func(o *Options) { o.Scale = 0 }},
		{"sea above mountains", func(o *Options) { o.SeaLevel = 0.9 }},
		{"desert above jungle", func(o *Options) { o.DesertLevel = 0.8 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			if _, err := Generate(opts); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("Generate() error = %v, want ErrInvalidOptions", err)
			}
		})
	}
}
