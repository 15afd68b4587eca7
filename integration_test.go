package junction_test

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anggasct/junction"
	"github.com/anggasct/junction/pkg/config"
	"github.com/anggasct/junction/pkg/observers"
	"github.com/anggasct/junction/pkg/schedule"
)

func TestIntegration_ScheduleToOutput(t *testing.T) {
	input := `
# id entry exit
1 0 1
2 2 3
3 N E
4 west south
5 1 1
`
	cars, err := schedule.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var out bytes.Buffer
	recorder := junction.NewTestObserver()
	x, err := junction.NewIntersection(cars,
		junction.WithObserver(observers.NewPrintObserver(&out, false)),
		junction.WithObserver(recorder),
	)
	if err != nil {
		t.Fatalf("NewIntersection failed: %v", err)
	}
	junction.RunWithTimeout(t, x, 5*time.Second)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	slices.Sort(lines)
	want := []string{"0 1 1", "0 2 3", "1 1 5", "2 3 2", "3 1 4"}
	if !slices.Equal(lines, want) {
		t.Errorf("Expected lines %v in any order, got %v", want, lines)
	}
	junction.AssertLaneOrder(t, recorder, junction.North, 1, 3)
}

func TestIntegration_RushHour(t *testing.T) {
	cars := schedule.Generate(3000, 42)

	validator := observers.NewValidationObserver()
	validator.ExpectCars(cars...)
	monitor := &junction.OccupancyMonitor{}
	reg := prometheus.NewRegistry()
	metrics, err := observers.NewMetricsObserver(reg)
	if err != nil {
		t.Fatalf("NewMetricsObserver failed: %v", err)
	}

	x, err := junction.NewIntersection(cars,
		junction.WithLaneCapacity(3),
		junction.WithObserver(validator),
		junction.WithObserver(monitor),
		junction.WithObserver(metrics),
	)
	if err != nil {
		t.Fatalf("NewIntersection failed: %v", err)
	}
	junction.RunWithTimeout(t, x, 30*time.Second)

	if v := validator.GetViolations(); len(v) != 0 {
		t.Errorf("Expected no violations, got %v", v)
	}
	if missing := validator.GetMissingCars(); len(missing) != 0 {
		t.Errorf("Expected every car to cross, %d missing", len(missing))
	}
	if n := monitor.Violations(); n != 0 {
		t.Errorf("Expected no shared quadrants, got %d", n)
	}

	summary := x.Summary()
	if summary.TotalCrossed() != len(cars) {
		t.Errorf("Expected %d crossed, got %d", len(cars), summary.TotalCrossed())
	}

	held := 0
	for _, c := range cars {
		held += c.Path().Len()
	}
	var quadrantCrossings uint64
	for _, q := range summary.Quadrants {
		quadrantCrossings += q.Crossings
		if q.MaxOccupants > 1 {
			t.Errorf("%s held by %d cars at once", q.Quadrant, q.MaxOccupants)
		}
		if q.Occupants != 0 {
			t.Errorf("%s still held after run", q.Quadrant)
		}
	}
	if quadrantCrossings != uint64(held) {
		t.Errorf("Expected %d quadrant acquisitions, got %d", held, quadrantCrossings)
	}

	for _, d := range junction.Directions {
		lane := summary.Lanes[d]
		if lane.PeakOccupancy > 3 {
			t.Errorf("%s: peak occupancy %d exceeds capacity 3", d, lane.PeakOccupancy)
		}
		if lane.Crossed != lane.Expected {
			t.Errorf("%s: crossed %d of %d", d, lane.Crossed, lane.Expected)
		}
		if got := laneAdmissions(t, reg, d.String()); got != float64(lane.Expected) {
			t.Errorf("%s: expected %d admissions in metrics, got %v", d, lane.Expected, got)
		}
	}
}

// laneAdmissions reads one lane's admission counter from the registry
func laneAdmissions(t *testing.T, reg *prometheus.Registry, lane string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != "junction_lane_admissions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "lane" && l.GetValue() == lane {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestIntegration_ConfigDrivenRun(t *testing.T) {
	cfg := config.Default()
	cfg.LaneCapacity = 1
	cfg.CrossingDuration = time.Millisecond
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	cars := []junction.Car{
		{ID: 1, Entry: junction.North, Exit: junction.South},
		{ID: 2, Entry: junction.South, Exit: junction.North},
		{ID: 3, Entry: junction.East, Exit: junction.West},
		{ID: 4, Entry: junction.West, Exit: junction.East},
	}
	monitor := &junction.OccupancyMonitor{}

	x, err := junction.NewIntersection(cars, append(cfg.Options(), junction.WithObserver(monitor))...)
	if err != nil {
		t.Fatalf("NewIntersection failed: %v", err)
	}
	junction.RunWithTimeout(t, x, 5*time.Second)

	if n := monitor.Violations(); n != 0 {
		t.Errorf("Expected no shared quadrants, got %d", n)
	}
	for _, d := range junction.Directions {
		if peak := x.Lane(d).Stats().PeakOccupancy; peak != 1 {
			t.Errorf("%s: expected peak occupancy 1, got %d", d, peak)
		}
	}
}

func TestIntegration_InvalidScheduleRejected(t *testing.T) {
	cars := []junction.Car{
		{ID: 1, Entry: junction.North, Exit: junction.South},
		{ID: 2, Entry: junction.Direction(6), Exit: junction.South},
	}

	_, err := junction.NewIntersection(cars)
	if err == nil {
		t.Fatal("Expected error for invalid entry direction")
	}
	if code := junction.GetErrorCode(err); code != junction.ErrCodeInvalidDirection {
		t.Errorf("Expected %s, got %s", junction.ErrCodeInvalidDirection, code)
	}
}
