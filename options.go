package junction

import (
	"fmt"
	"log/slog"
	"time"
)

type settings struct {
	laneCapacity     int
	arrivalInterval  time.Duration
	crossingDuration time.Duration
	observers        []Observer
	logger           *slog.Logger
}

func defaultSettings() settings {
	return settings{
		laneCapacity: DefaultLaneCapacity,
		logger:       slog.New(slog.DiscardHandler),
	}
}

// Option configures an Intersection
type Option func(*settings)

// WithLaneCapacity sets the number of cars each lane buffer holds
func WithLaneCapacity(capacity int) Option {
	return func(s *settings) {
		s.laneCapacity = capacity
	}
}

// WithArrivalInterval paces each arrival worker to admit at most one car
// per interval. Zero admits cars as fast as buffer room allows.
func WithArrivalInterval(interval time.Duration) Option {
	return func(s *settings) {
		s.arrivalInterval = interval
	}
}

// WithCrossingDuration makes every car hold its quadrants for d
func WithCrossingDuration(d time.Duration) Option {
	return func(s *settings) {
		s.crossingDuration = d
	}
}

// WithObserver registers an observer before the intersection runs
func WithObserver(observer Observer) Option {
	return func(s *settings) {
		s.observers = append(s.observers, observer)
	}
}

// WithLogger sets the logger used for worker lifecycle messages
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func (s settings) validate() error {
	if s.laneCapacity < 1 {
		return NewConfigurationError("lane", "capacity must be at least 1")
	}
	if s.arrivalInterval < 0 {
		return NewConfigurationError("arrival", "interval must not be negative")
	}
	if s.crossingDuration < 0 {
		return NewConfigurationError("crossing", "duration must not be negative")
	}
	if s.logger == nil {
		return NewConfigurationError("logger", "logger must not be nil")
	}
	for i, o := range s.observers {
		if o == nil {
			return NewConfigurationError("observer", fmt.Sprintf("observer %d is nil", i))
		}
	}
	return nil
}
