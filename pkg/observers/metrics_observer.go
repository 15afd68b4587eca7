package observers

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/anggasct/junction"
)

// MetricsObserver exports intersection activity as Prometheus metrics
type MetricsObserver struct {
	crossings      *prometheus.CounterVec
	admissions     *prometheus.CounterVec
	quadrantWait   *prometheus.HistogramVec
	laneOccupancy  *prometheus.GaugeVec
	lanesDrained   prometheus.Counter
	runsCompleted  prometheus.Counter
	observerErrors prometheus.Counter
}

// NewMetricsObserver creates the collectors and registers them with reg
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		// Labels: entry, exit, maneuver
		crossings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "junction",
			Name:      "crossings_total",
			Help:      "Cars that crossed the intersection",
		}, []string{"entry", "exit", "maneuver"}),

		// Labels: lane
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "junction",
			Subsystem: "lane",
			Name:      "admissions_total",
			Help:      "Cars admitted into a lane buffer",
		}, []string{"lane"}),

		// Labels: lane
		quadrantWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "junction",
			Subsystem: "quadrant",
			Name:      "wait_seconds",
			Help:      "Time a car waited to hold every quadrant of its path",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"lane"}),

		// Labels: lane
		laneOccupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "junction",
			Subsystem: "lane",
			Name:      "occupancy",
			Help:      "Cars in a lane buffer after the latest admission",
		}, []string{"lane"}),

		lanesDrained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "junction",
			Subsystem: "lane",
			Name:      "drained_total",
			Help:      "Lanes whose every car has crossed",
		}),

		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "junction",
			Name:      "runs_completed_total",
			Help:      "Intersection runs that finished",
		}),

		observerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "junction",
			Name:      "observer_errors_total",
			Help:      "Observer panics recovered during runs",
		}),
	}

	for _, c := range []prometheus.Collector{
		o.crossings, o.admissions, o.quadrantWait, o.laneOccupancy,
		o.lanesDrained, o.runsCompleted, o.observerErrors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *MetricsObserver) OnCrossing(event junction.CrossingEvent) {
	o.crossings.WithLabelValues(
		event.Car.Entry.String(),
		event.Car.Exit.String(),
		event.Car.Maneuver().String(),
	).Inc()
	o.quadrantWait.WithLabelValues(event.Car.Entry.String()).Observe(event.Wait().Seconds())
}

func (o *MetricsObserver) OnAdmission(event junction.AdmissionEvent) {
	lane := event.Car.Entry.String()
	o.admissions.WithLabelValues(lane).Inc()
	o.laneOccupancy.WithLabelValues(lane).Set(float64(event.Occupancy))
}

func (o *MetricsObserver) OnLaneDrained(lane junction.Direction, stats junction.LaneStats) {
	o.lanesDrained.Inc()
	o.laneOccupancy.WithLabelValues(lane.String()).Set(float64(stats.Occupancy))
}

func (o *MetricsObserver) OnRunStarted(runID string) {}

func (o *MetricsObserver) OnRunFinished(summary junction.RunSummary) {
	o.runsCompleted.Inc()
}

func (o *MetricsObserver) OnError(err error) {
	o.observerErrors.Inc()
}
