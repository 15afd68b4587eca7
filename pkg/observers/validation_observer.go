package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/junction"
)

// ValidationObserver checks crossing events against the intersection's
// rules and records every violation it sees
type ValidationObserver struct {
	junction.BaseObserver

	expectedCars map[junction.Car]int
	crossedCars  map[junction.Car]int
	laneOrder    [junction.NumDirections][]junction.Car
	laneNext     [junction.NumDirections]int
	violations   []string
	mutex        sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		expectedCars: make(map[junction.Car]int),
		crossedCars:  make(map[junction.Car]int),
		violations:   make([]string, 0),
	}
}

// ExpectCars registers cars that must cross before the run finishes. Cars
// of one entry lane must cross in the order they are registered.
func (o *ValidationObserver) ExpectCars(cars ...junction.Car) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	for _, car := range cars {
		o.expectedCars[car]++
		if car.Entry.Valid() {
			o.laneOrder[car.Entry] = append(o.laneOrder[car.Entry], car)
		}
	}
}

// OnCrossing validates the path, lane order and crossing count of a car
func (o *ValidationObserver) OnCrossing(event junction.CrossingEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	car := event.Car
	if want := junction.ResolvePath(car.Entry, car.Exit); event.Path != want {
		o.violations = append(o.violations, fmt.Sprintf(
			"car %d from %s to %s held %s, expected %s", car.ID, car.Entry, car.Exit, event.Path, want))
	}
	if !event.Path.Ordered() {
		o.violations = append(o.violations, fmt.Sprintf(
			"car %d held quadrants out of order: %s", car.ID, event.Path))
	}

	if car.Entry.Valid() && len(o.laneOrder[car.Entry]) > 0 {
		lane := car.Entry
		if next := o.laneNext[lane]; next >= len(o.laneOrder[lane]) {
			o.violations = append(o.violations, fmt.Sprintf(
				"lane %s crossed %s after its last expected car", lane, car))
		} else if want := o.laneOrder[lane][next]; want != car {
			o.violations = append(o.violations, fmt.Sprintf(
				"lane %s crossed %s, expected %s", lane, car, want))
		}
		o.laneNext[lane]++
	}

	o.crossedCars[car]++
	if len(o.expectedCars) > 0 && o.crossedCars[car] > o.expectedCars[car] {
		o.violations = append(o.violations, fmt.Sprintf("%s crossed more often than expected", car))
	}

	if event.Entered.Before(event.WaitStarted) {
		o.violations = append(o.violations, fmt.Sprintf("car %d entered before it started waiting", car.ID))
	}
}

// OnAdmission validates the lane stays within its capacity
func (o *ValidationObserver) OnAdmission(event junction.AdmissionEvent) {
	if event.Occupancy < 1 || event.Occupancy > event.Capacity {
		o.addViolation(fmt.Sprintf("lane %s admitted car %d at occupancy %d of %d",
			event.Car.Entry, event.Car.ID, event.Occupancy, event.Capacity))
	}
}

// OnLaneDrained validates a drained lane is empty and fully crossed
func (o *ValidationObserver) OnLaneDrained(lane junction.Direction, stats junction.LaneStats) {
	if stats.Occupancy != 0 || stats.Pending != 0 || stats.Crossed != stats.Expected {
		o.addViolation(fmt.Sprintf("lane %s drained with occupancy %d, pending %d, crossed %d of %d",
			lane, stats.Occupancy, stats.Pending, stats.Crossed, stats.Expected))
	}
}

// OnError records observer failures
func (o *ValidationObserver) OnError(err error) {
	o.addViolation(fmt.Sprintf("Error occurred: %v", err))
}

// addViolation adds a violation
func (o *ValidationObserver) addViolation(message string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, message)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetMissingCars returns expected cars that have not crossed yet
func (o *ValidationObserver) GetMissingCars() []junction.Car {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var missing []junction.Car
	for car, n := range o.expectedCars {
		for i := o.crossedCars[car]; i < n; i++ {
			missing = append(missing, car)
		}
	}

	return missing
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset clears crossing state and violations, keeping expected cars
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.crossedCars = make(map[junction.Car]int)
	o.laneNext = [junction.NumDirections]int{}
	o.violations = make([]string, 0)
}
