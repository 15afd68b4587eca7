package observers

import (
	"context"
	"log/slog"

	"github.com/anggasct/junction"
)

// LoggingObserver logs intersection events through slog. Per-car events
// are logged at debug level, run boundaries at info.
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a logging observer. A nil logger uses
// slog.Default().
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) OnCrossing(event junction.CrossingEvent) {
	if !o.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	o.logger.Debug("car crossed",
		"run_id", event.RunID,
		"car_id", event.Car.ID,
		"entry", event.Car.Entry.String(),
		"exit", event.Car.Exit.String(),
		"maneuver", event.Car.Maneuver().String(),
		"path", event.Path.String(),
		"sequence", event.Sequence,
		"wait", event.Wait(),
	)
}

func (o *LoggingObserver) OnAdmission(event junction.AdmissionEvent) {
	o.logger.Debug("car admitted",
		"run_id", event.RunID,
		"car_id", event.Car.ID,
		"lane", event.Car.Entry.String(),
		"occupancy", event.Occupancy,
		"capacity", event.Capacity,
	)
}

func (o *LoggingObserver) OnLaneDrained(lane junction.Direction, stats junction.LaneStats) {
	o.logger.Info("lane drained",
		"lane", lane.String(),
		"crossed", stats.Crossed,
		"peak_occupancy", stats.PeakOccupancy,
	)
}

func (o *LoggingObserver) OnRunStarted(runID string) {
	o.logger.Info("intersection run started", "run_id", runID)
}

func (o *LoggingObserver) OnRunFinished(summary junction.RunSummary) {
	o.logger.Info("intersection run finished",
		"run_id", summary.RunID,
		"crossed", summary.TotalCrossed(),
		"duration", summary.Duration(),
	)
}

func (o *LoggingObserver) OnError(err error) {
	o.logger.Error("observer failed", "error", err)
}
