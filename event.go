package junction

import (
	"fmt"
	"time"
)

// CrossingEvent is emitted exactly once per car, while the car holds every
// quadrant of its path.
type CrossingEvent struct {
	RunID string
	Car   Car
	Path  Path

	// Sequence is the car's position in its lane, starting at 1
	Sequence int

	// WaitStarted is when the crossing worker began acquiring quadrants
	WaitStarted time.Time
	// Entered is when the last quadrant of the path was acquired
	Entered time.Time
}

// Entry returns the direction the car came from
func (e CrossingEvent) Entry() Direction {
	return e.Car.Entry
}

// Exit returns the direction the car leaves by
func (e CrossingEvent) Exit() Direction {
	return e.Car.Exit
}

// Wait returns how long the car waited for its quadrants
func (e CrossingEvent) Wait() time.Duration {
	return e.Entered.Sub(e.WaitStarted)
}

// String renders the event as "<entry> <exit> <id>" using the numeric
// direction encoding.
func (e CrossingEvent) String() string {
	return fmt.Sprintf("%d %d %d", int(e.Car.Entry), int(e.Car.Exit), e.Car.ID)
}

// Symbolic renders the event with direction names, e.g. "NORTH SOUTH 1"
func (e CrossingEvent) Symbolic() string {
	return fmt.Sprintf("%s %s %d", e.Car.Entry, e.Car.Exit, e.Car.ID)
}

// AdmissionEvent is emitted when a car moves from the pending list into
// its lane buffer.
type AdmissionEvent struct {
	RunID     string
	Car       Car
	Occupancy int
	Capacity  int
	At        time.Time
}

// RunSummary describes a finished run
type RunSummary struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Lanes     [NumDirections]LaneStats
	Quadrants [NumQuadrants]QuadrantStats
}

// Duration returns the wall time of the run
func (s RunSummary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}

// TotalCrossed returns the number of cars that crossed in all lanes
func (s RunSummary) TotalCrossed() int {
	total := 0
	for _, l := range s.Lanes {
		total += l.Crossed
	}
	return total
}
