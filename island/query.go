package island

// CellCount is the per-species head count of one cell.
type CellCount struct {
	Year       int     `csv:"year"`
	Row        int     `csv:"row"`
	Col        int     `csv:"col"`
	Terrain    string  `csv:"terrain"`
	Fodder     float64 `csv:"fodder"`
	Herbivores int     `csv:"herbivores"`
	Carnivores int     `csv:"carnivores"`
}

// NumAnimals returns the number of animals on the island.
func (isl *Island) NumAnimals() int {
	n := 0
	for _, c := range isl.cells {
		n += len(c.herbivores) + len(c.carnivores)
	}
	return n
}

// NumAnimalsPerSpecies returns the head count of every species, zero
// counts included.
func (isl *Island) NumAnimalsPerSpecies() map[Species]int {
	counts := make(map[Species]int, len(AllSpecies))
	for _, s := range AllSpecies {
		counts[s] = 0
	}
	for _, c := range isl.cells {
		counts[Herbivore] += len(c.herbivores)
		counts[Carnivore] += len(c.carnivores)
	}
	return counts
}

// Distribution returns the per-cell head counts of every habitable cell in
// row-major order.
func (isl *Island) Distribution() []CellCount {
	out := make([]CellCount, 0, len(isl.cells))
	for i, c := range isl.cells {
		if !c.Habitable() {
			continue
		}
		out = append(out, CellCount{
			Year:       isl.year,
			Row:        i / isl.cols,
			Col:        i % isl.cols,
			Terrain:    c.terrain.String(),
			Fodder:     c.fodder,
			Herbivores: len(c.herbivores),
			Carnivores: len(c.carnivores),
		})
	}
	return out
}

// TotalFodder returns the fodder summed over every cell.
func (isl *Island) TotalFodder() float64 {
	total := 0.0
	for _, c := range isl.cells {
		total += c.fodder
	}
	return total
}

// Occupied returns the number of cells holding at least one animal of s.
func (isl *Island) Occupied(s Species) int {
	n := 0
	for _, c := range isl.cells {
		if len(*c.list(s)) > 0 {
			n++
		}
	}
	return n
}
