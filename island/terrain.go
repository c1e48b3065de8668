package island

import "fmt"

// Terrain is the landscape type of a cell.
type Terrain uint8

const (
	Ocean Terrain = iota
	Mountain
	Jungle
	Savannah
	Desert
)

var terrainNames = [...]string{
	Ocean:    "Ocean",
	Mountain: "Mountain",
	Jungle:   "Jungle",
	Savannah: "Savannah",
	Desert:   "Desert",
}

var terrainCodes = [...]byte{
	Ocean:    'O',
	Mountain: 'M',
	Jungle:   'J',
	Savannah: 'S',
	Desert:   'D',
}

// String returns the terrain name.
func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("Terrain(%d)", uint8(t))
}

// Code returns the single-letter map code of the terrain.
func (t Terrain) Code() byte {
	if int(t) < len(terrainCodes) {
		return terrainCodes[t]
	}
	return '?'
}

// Habitable reports whether animals may live on the terrain.
func (t Terrain) Habitable() bool {
	return t != Ocean && t != Mountain
}

// ParseTerrain maps a map code (case-insensitive) to its terrain.
func ParseTerrain(code rune) (Terrain, error) {
	switch code {
	case 'O', 'o':
		return Ocean, nil
	case 'M', 'm':
		return Mountain, nil
	case 'J', 'j':
		return Jungle, nil
	case 'S', 's':
		return Savannah, nil
	case 'D', 'd':
		return Desert, nil
	}
	return Ocean, fmt.Errorf("unknown terrain code %q: %w", code, ErrMalformedMap)
}
