package junction

import (
	"fmt"
	"sync"
)

// Observer receives crossing events. Observers are called concurrently from
// all four crossing workers and must be safe for concurrent use.
type Observer interface {
	// OnCrossing is called once per car while the car holds its quadrants
	OnCrossing(event CrossingEvent)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnAdmission is called when a car enters its lane buffer
	OnAdmission(event AdmissionEvent)

	// OnLaneDrained is called when every car of a lane has crossed
	OnLaneDrained(lane Direction, stats LaneStats)

	// OnRunStarted is called before any worker starts
	OnRunStarted(runID string)

	// OnRunFinished is called after every worker has returned
	OnRunFinished(summary RunSummary)

	// OnError is called when another observer panics
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnCrossing implements the required Observer method
func (o *BaseObserver) OnCrossing(event CrossingEvent) {}

// OnAdmission implements the optional ExtendedObserver method
func (o *BaseObserver) OnAdmission(event AdmissionEvent) {}

// OnLaneDrained implements the optional ExtendedObserver method
func (o *BaseObserver) OnLaneDrained(lane Direction, stats LaneStats) {}

// OnRunStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnRunStarted(runID string) {}

// OnRunFinished implements the optional ExtendedObserver method
func (o *BaseObserver) OnRunFinished(summary RunSummary) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// ObserverManager manages a collection of observers. A panicking observer
// is reported to the extended observers and never reaches the worker that
// emitted the event.
type ObserverManager struct {
	mutex     sync.RWMutex
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

func (om *ObserverManager) guard(observers []Observer, index int, method string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("observer panic in %s: %v", method, r)
			for i, other := range observers {
				if i == index {
					continue
				}
				if extObs, ok := other.(ExtendedObserver); ok {
					func() {
						defer func() { recover() }()
						extObs.OnError(err)
					}()
				}
			}
		}
	}()
	fn()
}

// NotifyCrossing notifies all observers of a crossing
func (om *ObserverManager) NotifyCrossing(event CrossingEvent) {
	observers := om.snapshot()
	for i, observer := range observers {
		om.guard(observers, i, "OnCrossing", func() {
			observer.OnCrossing(event)
		})
	}
}

// NotifyAdmission notifies extended observers of an admission
func (om *ObserverManager) NotifyAdmission(event AdmissionEvent) {
	observers := om.snapshot()
	for i, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(observers, i, "OnAdmission", func() {
				extObs.OnAdmission(event)
			})
		}
	}
}

// NotifyLaneDrained notifies extended observers that a lane is empty
func (om *ObserverManager) NotifyLaneDrained(lane Direction, stats LaneStats) {
	observers := om.snapshot()
	for i, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(observers, i, "OnLaneDrained", func() {
				extObs.OnLaneDrained(lane, stats)
			})
		}
	}
}

// NotifyRunStarted notifies extended observers that a run is starting
func (om *ObserverManager) NotifyRunStarted(runID string) {
	observers := om.snapshot()
	for i, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(observers, i, "OnRunStarted", func() {
				extObs.OnRunStarted(runID)
			})
		}
	}
}

// NotifyRunFinished notifies extended observers that a run is complete
func (om *ObserverManager) NotifyRunFinished(summary RunSummary) {
	observers := om.snapshot()
	for i, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.guard(observers, i, "OnRunFinished", func() {
				extObs.OnRunFinished(summary)
			})
		}
	}
}
