package junction

import (
	"sync"
	"sync/atomic"
	"time"
)

// quadrant is one lockable region of the junction. The counters are
// instrumentation: occupants is incremented under mu and must never exceed
// one.
type quadrant struct {
	id Quadrant
	mu sync.Mutex

	occupants    atomic.Int32
	maxOccupants atomic.Int32
	crossings    atomic.Uint64
	waitNanos    atomic.Int64
}

// QuadrantStats summarizes the use of one quadrant
type QuadrantStats struct {
	Quadrant     Quadrant
	Crossings    uint64
	Occupants    int
	MaxOccupants int
	TotalWait    time.Duration
}

type quadrantSet [NumQuadrants]quadrant

func newQuadrantSet() *quadrantSet {
	s := &quadrantSet{}
	for _, q := range Quadrants {
		s[q.index()].id = q
	}
	return s
}

// acquire locks every quadrant of p. Locks are taken one at a time in
// strictly increasing quadrant order, the single global order shared by
// every crossing worker, so no cycle of waiting workers can form.
func (s *quadrantSet) acquire(lane Direction, p Path) {
	if !p.Ordered() {
		violate(ErrCodeLockOrder, lane, "path %s is not in increasing quadrant order", p)
	}
	for i := 0; i < p.Len(); i++ {
		qd := &s[p.At(i).index()]

		start := time.Now()
		qd.mu.Lock()
		qd.waitNanos.Add(int64(time.Since(start)))

		n := qd.occupants.Add(1)
		if n != 1 {
			violate(ErrCodeExclusionViolated, lane, "%s held by %d cars", qd.id, n)
		}
		for {
			peak := qd.maxOccupants.Load()
			if n <= peak || qd.maxOccupants.CompareAndSwap(peak, n) {
				break
			}
		}
		qd.crossings.Add(1)
	}
}

// release unlocks every quadrant of p
func (s *quadrantSet) release(p Path) {
	for i := p.Len() - 1; i >= 0; i-- {
		qd := &s[p.At(i).index()]
		qd.occupants.Add(-1)
		qd.mu.Unlock()
	}
}

func (s *quadrantSet) stats(q Quadrant) QuadrantStats {
	qd := &s[q.index()]
	return QuadrantStats{
		Quadrant:     q,
		Crossings:    qd.crossings.Load(),
		Occupants:    int(qd.occupants.Load()),
		MaxOccupants: int(qd.maxOccupants.Load()),
		TotalWait:    time.Duration(qd.waitNanos.Load()),
	}
}
