// Command mapgen prints a noise-generated island map, ready to paste into
// simulation.map of a config file.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/pthm-cable/biosim/island"
	"github.com/pthm-cable/biosim/mapgen"
)

func main() {
	def := mapgen.DefaultOptions()
	rows := flag.Int("rows", def.Rows, "Map rows")
	cols := flag.Int("cols", def.Cols, "Map columns")
	seed := flag.Int64("seed", def.Seed, "Noise seed")
	scale := flag.Float64("scale", def.Scale, "Noise frequency")
	octaves := flag.Int("octaves", def.Octaves, "Noise octaves")
	sea := flag.Float64("sea", def.SeaLevel, "Sea level")
	mountain := flag.Float64("mountain", def.MountainLevel, "Mountain level")
	desert := flag.Float64("desert", def.DesertLevel, "Desert moisture level")
	jungle := flag.Float64("jungle", def.JungleLevel, "Jungle moisture level")
	asYAML := flag.Bool("yaml", false, "Print as a simulation.map YAML block")
	flag.Parse()

	m, err := mapgen.Generate(mapgen.Options{
		Seed:          *seed,
		Rows:          *rows,
		Cols:          *cols,
		Scale:         *scale,
		Octaves:       *octaves,
		SeaLevel:      *sea,
		MountainLevel: *mountain,
		DesertLevel:   *desert,
		JungleLevel:   *jungle,
	})
	if err != nil {
		log.Fatalf("generating map: %v", err)
	}

	grid, err := island.ParseMap(m)
	if err != nil {
		log.Fatalf("generated map is invalid: %v", err)
	}
	counts := make(map[island.Terrain]int)
	for _, row := range grid {
		for _, t := range row {
			counts[t]++
		}
	}

	if *asYAML {
		fmt.Println("simulation:")
		fmt.Println("  map: |")
		for _, line := range strings.Split(m, "\n") {
			fmt.Println("    " + line)
		}
	} else {
		fmt.Println(m)
	}
	log.Printf("jungle=%d savannah=%d desert=%d mountain=%d ocean=%d",
		counts[island.Jungle], counts[island.Savannah], counts[island.Desert],
		counts[island.Mountain], counts[island.Ocean])
}
