package world

import "fmt"

// Position is a tile coordinate. Z is the floor: 0-7 above ground, 8-15
// underground.
type Position struct {
	X int32
	Y int32
	Z uint8
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// OffsetX returns p.X - from.X (signed).
func (p Position) OffsetX(from Position) int32 { return p.X - from.X }
func (p Position) OffsetY(from Position) int32 { return p.Y - from.Y }

func (p Position) DistanceX(to Position) int32 { return abs32(p.X - to.X) }
func (p Position) DistanceY(to Position) int32 { return abs32(p.Y - to.Y) }
func (p Position) DistanceZ(to Position) int32 {
	return abs32(int32(p.Z) - int32(to.Z))
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is a step heading. Cardinal directions are 0-3; the diagonal
// bit (4) marks the four diagonals.
type Direction uint8

const (
	North Direction = 0
	East  Direction = 1
	South Direction = 2
	West  Direction = 3

	diagonalMask Direction = 4

	SouthWest Direction = 4
	SouthEast Direction = 5
	NorthWest Direction = 6
	NorthEast Direction = 7

	DirectionNone Direction = 8
)

func (d Direction) Diagonal() bool { return d&diagonalMask != 0 && d != DirectionNone }

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	case SouthWest:
		return "south-west"
	case SouthEast:
		return "south-east"
	case NorthWest:
		return "north-west"
	case NorthEast:
		return "north-east"
	}
	return "none"
}

// Step returns the position one tile from p in direction d.
func (p Position) Step(d Direction) Position {
	switch d {
	case North:
		p.Y--
	case East:
		p.X++
	case South:
		p.Y++
	case West:
		p.X--
	case SouthWest:
		p.X--
		p.Y++
	case SouthEast:
		p.X++
		p.Y++
	case NorthWest:
		p.X--
		p.Y--
	case NorthEast:
		p.X++
		p.Y--
	}
	return p
}
