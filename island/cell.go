package island

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/biosim/params"
)

// Cell is one landscape cell of the island. It owns the animals living on it.
type Cell struct {
	terrain    Terrain
	fodder     float64
	herbivores []*Animal
	carnivores []*Animal
}

// NewCell creates a cell of the given terrain. Jungle and Savannah start
// fully grown; every other terrain carries no fodder.
func NewCell(t Terrain, p params.Landscapes) *Cell {
	c := &Cell{terrain: t}
	switch t {
	case Jungle:
		c.fodder = p.Jungle.FMax
	case Savannah:
		c.fodder = p.Savannah.FMax
	}
	return c
}

// Terrain returns the landscape type of the cell.
func (c *Cell) Terrain() Terrain { return c.terrain }

// Habitable reports whether animals may live on the cell.
func (c *Cell) Habitable() bool { return c.terrain.Habitable() }

// Fodder returns the plant biomass available on the cell.
func (c *Cell) Fodder() float64 { return c.fodder }

// RegrowFodder applies one year of fodder growth.
// Jungle is reset to its maximum regardless of past grazing; Savannah grows
// towards its maximum by a fraction alpha of the deficit.
func (c *Cell) RegrowFodder(p params.Landscapes) {
	switch c.terrain {
	case Jungle:
		c.fodder = p.Jungle.FMax
	case Savannah:
		c.fodder += p.Savannah.Alpha * (p.Savannah.FMax - c.fodder)
		if c.fodder > p.Savannah.FMax {
			c.fodder = p.Savannah.FMax
		}
	}
}

// ConsumeFodder removes amount from the cell. The caller never asks for
// more than is available.
func (c *Cell) ConsumeFodder(amount float64) {
	c.fodder -= amount
}

// Herbivores returns the herbivores on the cell. The slice is owned by the
// cell and must not be modified.
func (c *Cell) Herbivores() []*Animal { return c.herbivores }

// Carnivores returns the carnivores on the cell. The slice is owned by the
// cell and must not be modified.
func (c *Cell) Carnivores() []*Animal { return c.carnivores }

// Count returns the number of animals of species s on the cell.
func (c *Cell) Count(s Species) int { return len(*c.list(s)) }

// HerbivoreBiomass returns the summed weight of all herbivores on the cell.
func (c *Cell) HerbivoreBiomass() float64 {
	total := 0.0
	for _, h := range c.herbivores {
		total += h.weight
	}
	return total
}

// SortByFitness orders both populations by descending fitness.
// Animals of equal fitness keep their relative order.
func (c *Cell) SortByFitness() {
	byFitnessDesc := func(a, b *Animal) int { return cmp.Compare(b.fitness, a.fitness) }
	slices.SortStableFunc(c.herbivores, byFitnessDesc)
	slices.SortStableFunc(c.carnivores, byFitnessDesc)
}

func (c *Cell) list(s Species) *[]*Animal {
	if s == Carnivore {
		return &c.carnivores
	}
	return &c.herbivores
}

func (c *Cell) add(a *Animal) {
	l := c.list(a.species)
	*l = append(*l, a)
}

// remove deletes a from the cell, preserving the order of the others.
// It reports whether a was found.
func (c *Cell) remove(a *Animal) bool {
	l := c.list(a.species)
	i := slices.Index(*l, a)
	if i < 0 {
		return false
	}
	*l = slices.Delete(*l, i, i+1)
	return true
}
