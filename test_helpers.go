package junction

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestObserver is a recording observer for tests that captures every event
type TestObserver struct {
	mutex      sync.RWMutex
	Crossings  []CrossingEvent
	Admissions []AdmissionEvent
	Drained    []LaneStats
	Started    []string
	Finished   []RunSummary
	Errors     []error
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{
		Crossings:  make([]CrossingEvent, 0),
		Admissions: make([]AdmissionEvent, 0),
		Drained:    make([]LaneStats, 0),
		Started:    make([]string, 0),
		Finished:   make([]RunSummary, 0),
		Errors:     make([]error, 0),
	}
}

func (o *TestObserver) OnCrossing(event CrossingEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Crossings = append(o.Crossings, event)
}

func (o *TestObserver) OnAdmission(event AdmissionEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Admissions = append(o.Admissions, event)
}

func (o *TestObserver) OnLaneDrained(lane Direction, stats LaneStats) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Drained = append(o.Drained, stats)
}

func (o *TestObserver) OnRunStarted(runID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started = append(o.Started, runID)
}

func (o *TestObserver) OnRunFinished(summary RunSummary) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Finished = append(o.Finished, summary)
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// CrossingCount returns the number of recorded crossings
func (o *TestObserver) CrossingCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Crossings)
}

// LaneCrossings returns the crossings of one lane in emission order
func (o *TestObserver) LaneCrossings(lane Direction) []CrossingEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	var out []CrossingEvent
	for _, e := range o.Crossings {
		if e.Car.Entry == lane {
			out = append(out, e)
		}
	}
	return out
}

// Lines returns the numeric rendering of every crossing in emission order
func (o *TestObserver) Lines() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	out := make([]string, len(o.Crossings))
	for i, e := range o.Crossings {
		out[i] = e.String()
	}
	return out
}

// ErrorCount returns the number of recorded observer errors
func (o *TestObserver) ErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Errors)
}

// Reset clears all recorded events
func (o *TestObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Crossings = o.Crossings[:0]
	o.Admissions = o.Admissions[:0]
	o.Drained = o.Drained[:0]
	o.Started = o.Started[:0]
	o.Finished = o.Finished[:0]
	o.Errors = o.Errors[:0]
}

// OccupancyMonitor counts the cars it sees inside each quadrant. Because
// OnCrossing runs while the car holds its quadrants, a count above one means
// two cars shared road space.
type OccupancyMonitor struct {
	BaseObserver
	Dwell time.Duration

	inside     [NumQuadrants]atomic.Int32
	violations atomic.Int32
}

func (p *OccupancyMonitor) OnCrossing(event CrossingEvent) {
	path := event.Path
	for i := 0; i < path.Len(); i++ {
		if p.inside[path.At(i).index()].Add(1) > 1 {
			p.violations.Add(1)
		}
	}
	if p.Dwell > 0 {
		time.Sleep(p.Dwell)
	}
	for i := 0; i < path.Len(); i++ {
		p.inside[path.At(i).index()].Add(-1)
	}
}

// Violations returns the number of times a quadrant was seen shared
func (p *OccupancyMonitor) Violations() int {
	return int(p.violations.Load())
}

// RunWithTimeout runs x and fails the test if it does not finish in time
func RunWithTimeout(t *testing.T, x *Intersection, timeout time.Duration) {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- x.Run()
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(timeout):
		t.Fatalf("intersection did not finish within %v: %+v", timeout, x.Summary().Lanes)
	}
}

// AssertPath checks that a path holds exactly the given quadrants
func AssertPath(t *testing.T, p Path, want ...Quadrant) {
	t.Helper()
	if p.Len() != len(want) {
		t.Fatalf("Expected path %v, got %s", want, p)
	}
	for i, q := range want {
		if p.At(i) != q {
			t.Fatalf("Expected path %v, got %s", want, p)
		}
	}
}

// AssertLaneOrder checks that the crossings of a lane carry the given ids
// in order
func AssertLaneOrder(t *testing.T, o *TestObserver, lane Direction, ids ...int) {
	t.Helper()
	events := o.LaneCrossings(lane)
	if len(events) != len(ids) {
		t.Fatalf("Expected %d crossings on %s, got %d", len(ids), lane, len(events))
	}
	for i, e := range events {
		if e.Car.ID != ids[i] {
			t.Errorf("Expected crossing %d on %s to be car %d, got %d", i, lane, ids[i], e.Car.ID)
		}
	}
}
