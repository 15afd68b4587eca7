// Package junction simulates a four-way intersection whose incoming lanes
// feed a junction of four lockable quadrants.
//
// Each lane runs two goroutines: an arrival worker that admits cars into a
// bounded buffer, and a crossing worker that takes them out in order,
// resolves the quadrants the movement occupies, and holds those quadrants
// while the car crosses. Quadrants are always locked in increasing order,
// which rules out deadlock between the four crossing workers.
//
//	cars := []junction.Car{{ID: 1, Entry: junction.North, Exit: junction.South}}
//	x, err := junction.NewIntersection(cars, junction.WithObserver(obs))
//	if err != nil {
//	    return err
//	}
//	return x.Run()
package junction
