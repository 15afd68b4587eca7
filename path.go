package junction

import "strings"

// MaxPathLength is the largest number of quadrants any movement occupies
const MaxPathLength = 3

// Path is the ordered set of quadrants a movement occupies. Paths are small
// values; they are returned by copy and never shared between workers.
type Path struct {
	quadrants [MaxPathLength]Quadrant
	n         int
}

func pathOf(qs ...Quadrant) Path {
	var p Path
	p.n = copy(p.quadrants[:], qs)
	return p
}

// Len returns the number of quadrants in the path
func (p Path) Len() int {
	return p.n
}

// At returns the i-th quadrant of the path
func (p Path) At(i int) Quadrant {
	if i < 0 || i >= p.n {
		panic("junction: path index out of range")
	}
	return p.quadrants[i]
}

// Quadrants returns a copy of the path as a slice
func (p Path) Quadrants() []Quadrant {
	out := make([]Quadrant, p.n)
	copy(out, p.quadrants[:p.n])
	return out
}

// Contains reports whether the path occupies q
func (p Path) Contains(q Quadrant) bool {
	for i := 0; i < p.n; i++ {
		if p.quadrants[i] == q {
			return true
		}
	}
	return false
}

// Ordered reports whether the quadrants are valid and strictly increasing.
// Every path produced by ResolvePath is ordered.
func (p Path) Ordered() bool {
	var prev Quadrant
	for i := 0; i < p.n; i++ {
		q := p.quadrants[i]
		if !q.Valid() || q <= prev {
			return false
		}
		prev = q
	}
	return true
}

func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < p.n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.quadrants[i].String())
	}
	b.WriteByte(']')
	return b.String()
}

// pathTable is indexed by [entry][exit]. Right turns take one quadrant,
// straight movements and U-turns two, left turns three.
var pathTable = [NumDirections][NumDirections]Path{
	North: {
		North: pathOf(Quadrant1, Quadrant2),
		South: pathOf(Quadrant2, Quadrant3),
		East:  pathOf(Quadrant2, Quadrant3, Quadrant4),
		West:  pathOf(Quadrant2),
	},
	South: {
		North: pathOf(Quadrant1, Quadrant4),
		South: pathOf(Quadrant3, Quadrant4),
		East:  pathOf(Quadrant4),
		West:  pathOf(Quadrant1, Quadrant2, Quadrant4),
	},
	East: {
		North: pathOf(Quadrant1),
		South: pathOf(Quadrant1, Quadrant2, Quadrant3),
		East:  pathOf(Quadrant1, Quadrant4),
		West:  pathOf(Quadrant1, Quadrant2),
	},
	West: {
		North: pathOf(Quadrant1, Quadrant3, Quadrant4),
		South: pathOf(Quadrant3),
		East:  pathOf(Quadrant3, Quadrant4),
		West:  pathOf(Quadrant2, Quadrant3),
	},
}

// ResolvePath returns the quadrants a car occupies travelling from entry to
// exit, in increasing quadrant order. It is a pure table lookup and safe for
// concurrent use. Directions outside the enumeration yield an empty path.
func ResolvePath(entry, exit Direction) Path {
	if !entry.Valid() || !exit.Valid() {
		return Path{}
	}
	return pathTable[entry][exit]
}
