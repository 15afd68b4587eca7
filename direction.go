package junction

import (
	"fmt"
	"strings"
)

// Direction identifies a side of the intersection. It names both the lane a
// car enters on and the road it leaves by.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// NumDirections is the number of lanes at the intersection
const NumDirections = 4

// Directions lists every direction in lane order
var Directions = [NumDirections]Direction{North, South, East, West}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

func (d Direction) String() string {
	switch d {
	case North:
		return "NORTH"
	case South:
		return "SOUTH"
	case East:
		return "EAST"
	case West:
		return "WEST"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Opposite returns the direction across the intersection from d
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return d
	}
}

// ParseDirection accepts a direction name (NORTH, north, N) or its numeric
// encoding (0-3).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "0", "N", "NORTH":
		return North, nil
	case "1", "S", "SOUTH":
		return South, nil
	case "2", "E", "EAST":
		return East, nil
	case "3", "W", "WEST":
		return West, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Quadrant identifies one of the four lockable regions of the junction.
// Quadrants are numbered 1 through 4 and are ordered by that number.
type Quadrant uint8

const (
	Quadrant1 Quadrant = iota + 1
	Quadrant2
	Quadrant3
	Quadrant4
)

// NumQuadrants is the number of quadrants in the junction
const NumQuadrants = 4

// Quadrants lists every quadrant in acquisition order
var Quadrants = [NumQuadrants]Quadrant{Quadrant1, Quadrant2, Quadrant3, Quadrant4}

// Valid reports whether q is one of the four quadrants
func (q Quadrant) Valid() bool {
	return q >= Quadrant1 && q <= Quadrant4
}

func (q Quadrant) index() int {
	return int(q) - 1
}

func (q Quadrant) String() string {
	return fmt.Sprintf("Q%d", uint8(q))
}

// Maneuver is the kind of movement a car makes through the junction
type Maneuver int

const (
	ManeuverRight Maneuver = iota
	ManeuverStraight
	ManeuverLeft
	ManeuverUTurn
)

func (m Maneuver) String() string {
	switch m {
	case ManeuverRight:
		return "right"
	case ManeuverStraight:
		return "straight"
	case ManeuverLeft:
		return "left"
	case ManeuverUTurn:
		return "u-turn"
	default:
		return fmt.Sprintf("Maneuver(%d)", int(m))
	}
}

// rightOf maps an entry direction to the exit reached by turning right.
// Traffic keeps to the right; a car entering from the north travels south
// and its right is the west.
var rightOf = [NumDirections]Direction{
	North: West,
	South: East,
	East:  North,
	West:  South,
}

// Classify returns the maneuver that takes a car from entry to exit.
func Classify(entry, exit Direction) Maneuver {
	switch {
	case entry == exit:
		return ManeuverUTurn
	case exit == entry.Opposite():
		return ManeuverStraight
	case entry.Valid() && exit == rightOf[entry]:
		return ManeuverRight
	default:
		return ManeuverLeft
	}
}
