package junction

import "sync"

// DefaultLaneCapacity is the number of cars a lane buffer holds when no
// capacity is configured
const DefaultLaneCapacity = 10

// Lane is the queueing pipeline for one entry direction. Its buffer is
// shared by exactly two goroutines: the lane's arrival worker, which admits
// pending cars, and its crossing worker, which takes them out in order.
type Lane struct {
	direction Direction

	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	pending []*Car

	buffer    []*Car
	capacity  int
	head      int
	tail      int
	occupancy int
	peak      int

	expected  int
	crossed   int
	completed []*Car
}

// LaneStats is a point-in-time view of a lane
type LaneStats struct {
	Direction     Direction
	Capacity      int
	Expected      int
	Crossed       int
	Pending       int
	Occupancy     int
	PeakOccupancy int
}

func newLane(direction Direction, capacity int, cars []*Car) *Lane {
	l := &Lane{
		direction: direction,
		pending:   cars,
		buffer:    make([]*Car, capacity),
		capacity:  capacity,
		expected:  len(cars),
		completed: make([]*Car, 0, len(cars)),
	}
	l.notEmpty = sync.NewCond(&l.mu)
	l.notFull = sync.NewCond(&l.mu)
	return l
}

// Direction returns the entry direction served by the lane
func (l *Lane) Direction() Direction {
	return l.direction
}

// admitNext moves the next pending car into the buffer, waiting while the
// buffer is full. It returns false once the pending list is exhausted.
func (l *Lane) admitNext() (car *Car, occupancy int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 {
		return nil, l.occupancy, false
	}
	car = l.pending[0]

	for l.occupancy >= l.capacity {
		l.notFull.Wait()
	}

	l.buffer[l.tail] = car
	l.occupancy++
	l.tail = (l.tail + 1) % l.capacity
	if l.occupancy > l.peak {
		l.peak = l.occupancy
	}
	l.checkBounds()

	l.pending[0] = nil
	l.pending = l.pending[1:]

	l.notEmpty.Signal()
	return car, l.occupancy, true
}

// hasPending reports whether cars are still waiting to be admitted
func (l *Lane) hasPending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending) > 0
}

// take removes the oldest buffered car, waiting while the buffer is empty
func (l *Lane) take() *Car {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.occupancy == 0 {
		l.notEmpty.Wait()
	}

	car := l.buffer[l.head]
	if car == nil {
		violate(ErrCodeBufferUnderflow, l.direction, "empty slot %d with occupancy %d", l.head, l.occupancy)
	}
	l.buffer[l.head] = nil
	l.head = (l.head + 1) % l.capacity
	l.occupancy--
	l.checkBounds()
	return car
}

// complete records a crossed car. The caller holds the car's quadrants.
func (l *Lane) complete(car *Car) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.crossed >= l.expected {
		violate(ErrCodeCrossingOverrun, l.direction, "car %d crossed after %d of %d", car.ID, l.crossed, l.expected)
	}
	l.completed = append(l.completed, car)
	l.crossed++
}

// signalSpace wakes the arrival worker if it waits for room
func (l *Lane) signalSpace() {
	l.mu.Lock()
	l.notFull.Signal()
	l.mu.Unlock()
}

// remaining returns how many cars have yet to cross
func (l *Lane) remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.expected - l.crossed
}

func (l *Lane) checkBounds() {
	switch {
	case l.occupancy > l.capacity:
		violate(ErrCodeBufferOverflow, l.direction, "occupancy %d exceeds capacity %d", l.occupancy, l.capacity)
	case l.occupancy < 0:
		violate(ErrCodeBufferUnderflow, l.direction, "negative occupancy %d", l.occupancy)
	case l.head < 0 || l.head >= l.capacity || l.tail < 0 || l.tail >= l.capacity:
		violate(ErrCodeBufferOverflow, l.direction, "head %d tail %d outside capacity %d", l.head, l.tail, l.capacity)
	}
}

// Stats returns a snapshot of the lane counters
func (l *Lane) Stats() LaneStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LaneStats{
		Direction:     l.direction,
		Capacity:      l.capacity,
		Expected:      l.expected,
		Crossed:       l.crossed,
		Pending:       len(l.pending),
		Occupancy:     l.occupancy,
		PeakOccupancy: l.peak,
	}
}

// Completed returns the cars that have crossed, in crossing order
func (l *Lane) Completed() []Car {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Car, len(l.completed))
	for i, c := range l.completed {
		out[i] = *c
	}
	return out
}

// CompletedNewestFirst returns the crossed cars with the most recent first
func (l *Lane) CompletedNewestFirst() []Car {
	out := l.Completed()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
