package island

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Coord is a (row, col) grid position. Row 0 is the top of the map.
type Coord struct {
	Row int
	Col int
}

// directions lists the 4-connected neighbour offsets in draw order:
// north, south, west, east.
var directions = [4]Coord{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// Add returns c offset by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

// Neighbors returns the four 4-connected neighbours of c in draw order.
func (c Coord) Neighbors() [4]Coord {
	var out [4]Coord
	for i, d := range directions {
		out[i] = c.Add(d)
	}
	return out
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Col)
}

// UnmarshalYAML decodes a coordinate written as a [row, col] sequence.
func (c *Coord) UnmarshalYAML(value *yaml.Node) error {
	var pair []int
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("location must be [row, col]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("location must be [row, col], got %d values: %w", len(pair), ErrPlacement)
	}
	c.Row, c.Col = pair[0], pair[1]
	return nil
}

// MarshalYAML encodes the coordinate as a [row, col] sequence.
func (c Coord) MarshalYAML() (interface{}, error) {
	return []int{c.Row, c.Col}, nil
}
