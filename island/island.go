// Package island models the simulated island: a rectangular grid of
// landscape cells, the animals living on them and the behaviour of those
// animals over one simulated year.
package island

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/pthm-cable/biosim/ledger"
	"github.com/pthm-cable/biosim/params"
)

var (
	// ErrMalformedMap is returned for map specifications that are empty,
	// not rectangular, not bordered by ocean or contain unknown codes.
	ErrMalformedMap = errors.New("malformed map")
	// ErrPlacement is returned when an animal is placed outside the island
	// or on uninhabitable terrain.
	ErrPlacement = errors.New("invalid placement")
	// ErrInvalidAnimal is returned for population records with missing or
	// out-of-range fields.
	ErrInvalidAnimal = errors.New("invalid animal record")
	// ErrUnknownSpecies is returned for species names other than
	// Herbivore and Carnivore.
	ErrUnknownSpecies = errors.New("unknown species")
	// ErrNegativeFodder signals a cell observed with negative fodder while
	// an animal fed. It indicates a modelling bug.
	ErrNegativeFodder = errors.New("negative fodder")
	// ErrNotOnIsland is returned when removing an animal that is not on
	// the cell it claims to live on.
	ErrNotOnIsland = errors.New("animal not on island")
)

// DefaultMap is the island used when no map is configured.
const DefaultMap = `
OOOOOOOOOOOOOOOOOOOOO
OOOOOOOOSMMMMJJJJJJJO
OSSSSSJJJJMMJJJJJJJOO
OSSSSSSSSSMMJJJJJJOOO
OSSSSSJJJJJJJJJJJJOOO
OSSSSSJJJDDJJJSJJJOOO
OSSJJJJJDDDJJJSSSSOOO
OOSSSSJJJDDJJJSOOOOOO
OSSSJJJJJDDJJJJJJJOOO
OSSSSJJJJDDJJJJOOOOOO
OOSSSSJJJJJJJJOOOOOOO
OOOSSSSJJJJJJJOOOOOOO
OOOOOOOOOOOOOOOOOOOOO`

// Island is the grid of cells and everything living on it.
type Island struct {
	rows, cols int
	cells      []*Cell // row-major

	params params.Table
	rng    *rand.Rand
	ledger *ledger.Ledger
	obs    Observer
	year   int
}

// Option configures an Island at construction.
type Option func(*Island)

// WithObserver installs o to receive population events from the start,
// including the placement of initial animals.
func WithObserver(o Observer) Option {
	return func(isl *Island) { isl.SetObserver(o) }
}

// New builds an island from a map specification. The island draws every
// random decision from rng; a nil rng is replaced by a fixed-seed source.
func New(mapSpec string, tbl params.Table, rng *rand.Rand, opts ...Option) (*Island, error) {
	if err := tbl.Validate(); err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	grid, err := ParseMap(mapSpec)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}

	isl := &Island{
		rows:   len(grid),
		cols:   len(grid[0]),
		params: tbl,
		rng:    rng,
		ledger: ledger.New(),
		obs:    noopObserver{},
	}
	isl.cells = make([]*Cell, 0, isl.rows*isl.cols)
	for _, row := range grid {
		for _, t := range row {
			isl.cells = append(isl.cells, NewCell(t, tbl.Landscape))
		}
	}
	for _, opt := range opts {
		opt(isl)
	}
	return isl, nil
}

// ParseMap converts a multi-line map specification into a terrain grid.
// Common leading indentation and blank leading/trailing lines are ignored.
// Every row must have the same length and every border cell must be Ocean.
func ParseMap(spec string) ([][]Terrain, error) {
	lines := dedent(spec)
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty map: %w", ErrMalformedMap)
	}

	cols := len([]rune(lines[0]))
	grid := make([][]Terrain, len(lines))
	for r, line := range lines {
		codes := []rune(line)
		if len(codes) != cols {
			return nil, fmt.Errorf("row %d has %d cells, want %d (map must be rectangular): %w",
				r, len(codes), cols, ErrMalformedMap)
		}
		grid[r] = make([]Terrain, cols)
		for c, code := range codes {
			t, err := ParseTerrain(code)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r, c, err)
			}
			grid[r][c] = t
		}
	}

	last := len(grid) - 1
	for r, row := range grid {
		for c, t := range row {
			border := r == 0 || r == last || c == 0 || c == cols-1
			if border && t != Ocean {
				return nil, fmt.Errorf("border cell (%d, %d) is %v, must be Ocean: %w", r, c, t, ErrMalformedMap)
			}
		}
	}
	return grid, nil
}

// dedent splits spec into lines, drops blank lines at either end, strips
// trailing whitespace and removes the indentation common to all lines.
func dedent(spec string) []string {
	lines := strings.Split(strings.ReplaceAll(spec, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}

	indent := -1
	for _, line := range lines {
		if line == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		}
	}
	return lines
}

// Rows returns the number of map rows.
func (isl *Island) Rows() int { return isl.rows }

// Cols returns the number of map columns.
func (isl *Island) Cols() int { return isl.cols }

// Contains reports whether loc lies on the map.
func (isl *Island) Contains(loc Coord) bool {
	return loc.Row >= 0 && loc.Row < isl.rows && loc.Col >= 0 && loc.Col < isl.cols
}

// Cell returns the cell at loc, or nil if loc is off the map.
func (isl *Island) Cell(loc Coord) *Cell {
	if !isl.Contains(loc) {
		return nil
	}
	return isl.cells[loc.Row*isl.cols+loc.Col]
}

// Locations returns every coordinate of the map in row-major order.
func (isl *Island) Locations() []Coord {
	out := make([]Coord, 0, len(isl.cells))
	for r := 0; r < isl.rows; r++ {
		for c := 0; c < isl.cols; c++ {
			out = append(out, Coord{Row: r, Col: c})
		}
	}
	return out
}

// Terrain returns the landscape type at loc.
func (isl *Island) Terrain(loc Coord) (Terrain, error) {
	c := isl.Cell(loc)
	if c == nil {
		return Ocean, fmt.Errorf("location %v is outside the %dx%d map: %w", loc, isl.rows, isl.cols, ErrPlacement)
	}
	return c.terrain, nil
}

// Fodder returns the fodder at loc (0 off the map).
func (isl *Island) Fodder(loc Coord) float64 {
	if c := isl.Cell(loc); c != nil {
		return c.fodder
	}
	return 0
}

// SetFodder sets the fodder at loc. Only Jungle and Savannah carry fodder.
func (isl *Island) SetFodder(loc Coord, amount float64) error {
	c := isl.Cell(loc)
	switch {
	case c == nil:
		return fmt.Errorf("location %v: %w", loc, ErrPlacement)
	case amount < 0:
		return fmt.Errorf("fodder %g at %v: %w", amount, loc, ErrNegativeFodder)
	case c.terrain != Jungle && c.terrain != Savannah && amount != 0:
		return fmt.Errorf("%v at %v carries no fodder: %w", c.terrain, loc, ErrPlacement)
	}
	c.fodder = amount
	return nil
}

// Herbivores returns the herbivore list at loc (nil off the map).
func (isl *Island) Herbivores(loc Coord) []*Animal {
	if c := isl.Cell(loc); c != nil {
		return c.herbivores
	}
	return nil
}

// Carnivores returns the carnivore list at loc (nil off the map).
func (isl *Island) Carnivores(loc Coord) []*Animal {
	if c := isl.Cell(loc); c != nil {
		return c.carnivores
	}
	return nil
}

// HerbivoreBiomass returns the total herbivore weight at loc.
func (isl *Island) HerbivoreBiomass(loc Coord) float64 {
	if c := isl.Cell(loc); c != nil {
		return c.HerbivoreBiomass()
	}
	return 0
}

// Animals returns a snapshot of every animal of species s, cell by cell in
// row-major order and in list order within a cell.
func (isl *Island) Animals(s Species) []*Animal {
	var out []*Animal
	for _, c := range isl.cells {
		out = append(out, *c.list(s)...)
	}
	return out
}

// RegrowFodder applies one year of fodder growth to every cell.
func (isl *Island) RegrowFodder() {
	for _, c := range isl.cells {
		c.RegrowFodder(isl.params.Landscape)
	}
}

// SortByFitness orders every cell's populations by descending fitness.
func (isl *Island) SortByFitness() {
	for _, c := range isl.cells {
		c.SortByFitness()
	}
}

// Params returns the parameter table in use.
func (isl *Island) Params() params.Table { return isl.params }

// SetSpeciesParameters replaces the parameters of one species. Every key
// is validated before any is applied; on error nothing changes. Fitness of
// living animals of the species is recomputed.
func (isl *Island) SetSpeciesParameters(s Species, overrides map[string]float64) error {
	var (
		next params.Table
		err  error
	)
	switch s {
	case Herbivore:
		next, err = isl.params.WithHerbivore(overrides)
	case Carnivore:
		next, err = isl.params.WithCarnivore(overrides)
	default:
		return fmt.Errorf("%v: %w", s, ErrUnknownSpecies)
	}
	if err != nil {
		return err
	}
	isl.params = next

	p := isl.speciesParams(s)
	for _, c := range isl.cells {
		for _, a := range *c.list(s) {
			a.RecomputeFitness(p)
		}
	}
	return nil
}

// SetLandscapeParameters replaces the parameters of one landscape type
// ("J" or "S"). Existing fodder is left as it is until the next regrowth.
func (isl *Island) SetLandscapeParameters(code string, overrides map[string]float64) error {
	next, err := isl.params.WithLandscape(code, overrides)
	if err != nil {
		return err
	}
	isl.params = next
	return nil
}

// SetObserver installs o to receive population events. A nil o disables
// notifications.
func (isl *Island) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	isl.obs = o
}

// Ledger returns the lifetime records of the living animals.
func (isl *Island) Ledger() *ledger.Ledger { return isl.ledger }

// Rand returns the random source shared by every stochastic decision.
func (isl *Island) Rand() *rand.Rand { return isl.rng }

// Year returns the number of completed years.
func (isl *Island) Year() int { return isl.year }

// AdvanceYear marks the end of a simulated year.
func (isl *Island) AdvanceYear() { isl.year++ }

// AddAnimal places a new animal on the island.
func (isl *Island) AddAnimal(s Species, loc Coord, age int, weight float64) (*Animal, error) {
	if err := isl.checkHabitable(loc); err != nil {
		return nil, err
	}
	if err := checkAnimal(s, age, weight); err != nil {
		return nil, err
	}
	a := isl.spawn(s, loc, age, weight)
	isl.obs.AnimalBorn(a, nil)
	return a, nil
}

// RemoveAnimal takes a off the island.
func (isl *Island) RemoveAnimal(a *Animal) error {
	c := isl.Cell(a.loc)
	if c == nil || !slices.Contains(*c.list(a.species), a) {
		return fmt.Errorf("%v at %v: %w", a.species, a.loc, ErrNotOnIsland)
	}
	isl.remove(a, CauseRemoved)
	return nil
}

func (isl *Island) checkHabitable(loc Coord) error {
	t, err := isl.Terrain(loc)
	if err != nil {
		return err
	}
	if !t.Habitable() {
		return fmt.Errorf("location %v is %v: %w", loc, t, ErrPlacement)
	}
	return nil
}

func checkAnimal(s Species, age int, weight float64) error {
	if s != Herbivore && s != Carnivore {
		return fmt.Errorf("%v: %w", s, ErrUnknownSpecies)
	}
	if age < 0 {
		return fmt.Errorf("age %d: %w", age, ErrInvalidAnimal)
	}
	if !(weight >= 0) || math.IsInf(weight, 1) {
		return fmt.Errorf("weight %g: %w", weight, ErrInvalidAnimal)
	}
	return nil
}

func (isl *Island) speciesParams(s Species) *params.Species {
	return s.paramsIn(&isl.params)
}

// spawn creates an animal, registers its lifetime record and adds it to
// the cell at loc. loc must be habitable.
func (isl *Island) spawn(s Species, loc Coord, age int, weight float64) *Animal {
	a := &Animal{
		species: s,
		age:     age,
		weight:  weight,
		loc:     loc,
		id:      isl.ledger.Register(uint8(s), isl.year),
	}
	a.RecomputeFitness(isl.speciesParams(s))
	isl.Cell(loc).add(a)
	return a
}

// remove deletes a from its cell and retires its lifetime record.
func (isl *Island) remove(a *Animal, cause Cause) {
	isl.Cell(a.loc).remove(a)
	rec, _ := isl.ledger.Retire(a.id)
	isl.obs.AnimalDied(a, rec, cause)
}

// relocate moves a to dest: removal, insertion and the location update
// happen together.
func (isl *Island) relocate(a *Animal, dest Coord) {
	from := a.loc
	isl.Cell(from).remove(a)
	isl.Cell(dest).add(a)
	a.loc = dest
	isl.ledger.RecordMigration(a.id)
	isl.obs.AnimalMoved(a, from, dest)
}
