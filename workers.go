package junction

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// arrivalWorker admits a lane's pending cars into its buffer in order
type arrivalWorker struct {
	x       *Intersection
	lane    *Lane
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newArrivalWorker(x *Intersection, lane *Lane) *arrivalWorker {
	w := &arrivalWorker{
		x:      x,
		lane:   lane,
		logger: x.logger.With("lane", lane.direction.String(), "role", "arrival"),
	}
	if x.settings.arrivalInterval > 0 {
		w.limiter = rate.NewLimiter(rate.Every(x.settings.arrivalInterval), 1)
	}
	return w
}

func (w *arrivalWorker) run() error {
	w.logger.Debug("worker started")

	// pending only shrinks here, so a lane that reports a car still has one
	// after the pacing delay
	admitted := 0
	for w.lane.hasPending() {
		if w.limiter != nil {
			time.Sleep(w.limiter.Reserve().Delay())
		}
		car, occupancy, ok := w.lane.admitNext()
		if !ok {
			break
		}
		admitted++
		w.x.observers.NotifyAdmission(AdmissionEvent{
			RunID:     w.x.id,
			Car:       *car,
			Occupancy: occupancy,
			Capacity:  w.lane.capacity,
			At:        time.Now(),
		})
	}

	w.logger.Debug("worker finished", "admitted", admitted)
	return nil
}

// crossingWorker takes cars from a lane buffer and routes them through
// the junction one at a time
type crossingWorker struct {
	x      *Intersection
	lane   *Lane
	logger *slog.Logger
}

func newCrossingWorker(x *Intersection, lane *Lane) *crossingWorker {
	return &crossingWorker{
		x:      x,
		lane:   lane,
		logger: x.logger.With("lane", lane.direction.String(), "role", "crossing"),
	}
}

func (w *crossingWorker) run() error {
	w.logger.Debug("worker started")

	sequence := 0
	for w.lane.remaining() > 0 {
		car := w.lane.take()
		sequence++
		w.cross(car, sequence)
		w.lane.signalSpace()
	}

	stats := w.lane.Stats()
	w.logger.Debug("worker finished", "crossed", stats.Crossed)
	w.x.observers.NotifyLaneDrained(w.lane.direction, stats)
	return nil
}

// cross holds every quadrant of the car's path for the duration of the
// crossing. The lane lock is never held while waiting for a quadrant.
func (w *crossingWorker) cross(car *Car, sequence int) {
	path := car.Path()

	waitStarted := time.Now()
	w.x.quadrants.acquire(w.lane.direction, path)

	event := CrossingEvent{
		RunID:       w.x.id,
		Car:         *car,
		Path:        path,
		Sequence:    sequence,
		WaitStarted: waitStarted,
		Entered:     time.Now(),
	}
	if d := w.x.settings.crossingDuration; d > 0 {
		time.Sleep(d)
	}
	w.x.observers.NotifyCrossing(event)
	w.lane.complete(car)

	w.x.quadrants.release(path)
}
