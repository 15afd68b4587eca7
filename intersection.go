package junction

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Intersection is the shared junction: four quadrant locks and the four
// lanes feeding them. It is built once from a complete schedule and run
// once; every worker receives a pointer to it.
type Intersection struct {
	id        string
	settings  settings
	lanes     [NumDirections]*Lane
	quadrants *quadrantSet
	observers *ObserverManager
	logger    *slog.Logger

	ran      atomic.Bool
	mutex    sync.RWMutex
	started  time.Time
	finished time.Time
}

// NewIntersection distributes cars into the lanes of their entry direction,
// preserving input order within each lane. Any invalid car or option fails
// the whole setup; no partially built intersection is returned.
func NewIntersection(cars []Car, opts ...Option) (*Intersection, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	var perLane [NumDirections][]*Car
	for i := range cars {
		if err := cars[i].Validate(); err != nil {
			return nil, err
		}
		car := cars[i]
		perLane[car.Entry] = append(perLane[car.Entry], &car)
	}

	id := uuid.New().String()
	x := &Intersection{
		id:        id,
		settings:  s,
		quadrants: newQuadrantSet(),
		observers: NewObserverManager(),
		logger:    s.logger.With("run_id", id),
	}
	for _, d := range Directions {
		x.lanes[d] = newLane(d, s.laneCapacity, perLane[d])
	}
	for _, o := range s.observers {
		x.observers.AddObserver(o)
	}
	return x, nil
}

// ID returns the unique identifier of this intersection run
func (x *Intersection) ID() string {
	return x.id
}

// Lane returns the lane for entry direction d
func (x *Intersection) Lane(d Direction) *Lane {
	if !d.Valid() {
		return nil
	}
	return x.lanes[d]
}

// QuadrantStats returns usage counters for quadrant q
func (x *Intersection) QuadrantStats(q Quadrant) QuadrantStats {
	if !q.Valid() {
		return QuadrantStats{Quadrant: q}
	}
	return x.quadrants.stats(q)
}

// AddObserver registers an observer
func (x *Intersection) AddObserver(observer Observer) {
	x.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (x *Intersection) RemoveObserver(observer Observer) {
	x.observers.RemoveObserver(observer)
}

// Run starts one arrival worker and one crossing worker per lane and blocks
// until every lane has crossed all of its cars. There is no cancellation:
// the workload is finite and every wait eventually succeeds. An
// intersection runs at most once.
func (x *Intersection) Run() error {
	if !x.ran.CompareAndSwap(false, true) {
		return NewAlreadyRanError("run")
	}

	x.mutex.Lock()
	x.started = time.Now()
	x.mutex.Unlock()

	x.logger.Debug("intersection starting", "cars", x.expected(), "lane_capacity", x.settings.laneCapacity)
	x.observers.NotifyRunStarted(x.id)

	var g errgroup.Group
	for _, lane := range x.lanes {
		arrival := newArrivalWorker(x, lane)
		crossing := newCrossingWorker(x, lane)
		g.Go(arrival.run)
		g.Go(crossing.run)
	}
	err := g.Wait()

	x.mutex.Lock()
	x.finished = time.Now()
	x.mutex.Unlock()

	summary := x.Summary()
	x.logger.Debug("intersection finished", "crossed", summary.TotalCrossed(), "duration", summary.Duration())
	x.observers.NotifyRunFinished(summary)
	return err
}

// Summary returns lane and quadrant statistics. Before Run returns the
// values reflect the run in progress.
func (x *Intersection) Summary() RunSummary {
	x.mutex.RLock()
	summary := RunSummary{
		RunID:    x.id,
		Started:  x.started,
		Finished: x.finished,
	}
	x.mutex.RUnlock()

	for _, d := range Directions {
		summary.Lanes[d] = x.lanes[d].Stats()
	}
	for _, q := range Quadrants {
		summary.Quadrants[q.index()] = x.quadrants.stats(q)
	}
	return summary
}

func (x *Intersection) expected() int {
	total := 0
	for _, l := range x.lanes {
		total += l.Stats().Expected
	}
	return total
}
