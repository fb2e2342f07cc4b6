package models

// Position is a point in decimal degrees
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bounds is the smallest box containing a set of positions
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BoundsOf returns the bounds of the given positions. ok is false when the
// slice is empty.
func BoundsOf(positions []Position) (b Bounds, ok bool) {
	if len(positions) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		South: positions[0].Latitude,
		North: positions[0].Latitude,
		West:  positions[0].Longitude,
		East:  positions[0].Longitude,
	}
	for _, p := range positions[1:] {
		if p.Latitude < b.South {
			b.South = p.Latitude
		}
		if p.Latitude > b.North {
			b.North = p.Latitude
		}
		if p.Longitude < b.West {
			b.West = p.Longitude
		}
		if p.Longitude > b.East {
			b.East = p.Longitude
		}
	}
	return b, true
}

// Pad grows the bounds by ratio of their size on every side
func (b Bounds) Pad(ratio float64) Bounds {
	latPad := (b.North - b.South) * ratio
	lngPad := (b.East - b.West) * ratio
	return Bounds{
		South: b.South - latPad,
		West:  b.West - lngPad,
		North: b.North + latPad,
		East:  b.East + lngPad,
	}
}

// Center returns the midpoint of the bounds
func (b Bounds) Center() Position {
	return Position{
		Latitude:  (b.South + b.North) / 2,
		Longitude: (b.West + b.East) / 2,
	}
}
