package junction

import "fmt"

// Car is a single vehicle travelling through the intersection. Cars are
// immutable once created.
type Car struct {
	ID    int
	Entry Direction
	Exit  Direction
}

// NewCar creates a car, rejecting directions outside the enumeration
func NewCar(id int, entry, exit Direction) (Car, error) {
	c := Car{ID: id, Entry: entry, Exit: exit}
	if err := c.Validate(); err != nil {
		return Car{}, err
	}
	return c, nil
}

// Validate checks that both directions of the car are known
func (c Car) Validate() error {
	if !c.Entry.Valid() {
		return NewInvalidDirectionError(c.ID, "entry", c.Entry)
	}
	if !c.Exit.Valid() {
		return NewInvalidDirectionError(c.ID, "exit", c.Exit)
	}
	return nil
}

// Path returns the quadrants the car occupies while crossing
func (c Car) Path() Path {
	return ResolvePath(c.Entry, c.Exit)
}

// Maneuver returns the movement the car makes
func (c Car) Maneuver() Maneuver {
	return Classify(c.Entry, c.Exit)
}

func (c Car) String() string {
	return fmt.Sprintf("car %d %s->%s", c.ID, c.Entry, c.Exit)
}
