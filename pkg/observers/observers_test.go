package observers_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/anggasct/junction"
	"github.com/anggasct/junction/pkg/observers"
	"github.com/anggasct/junction/pkg/schedule"
)

var northScenario = []junction.Car{
	{ID: 1, Entry: junction.North, Exit: junction.South},
	{ID: 2, Entry: junction.North, Exit: junction.East},
	{ID: 3, Entry: junction.North, Exit: junction.West},
}

func run(t *testing.T, cars []junction.Car, obs ...junction.Observer) *junction.Intersection {
	t.Helper()
	opts := make([]junction.Option, 0, len(obs))
	for _, o := range obs {
		opts = append(opts, junction.WithObserver(o))
	}
	x, err := junction.NewIntersection(cars, opts...)
	require.NoError(t, err)
	junction.RunWithTimeout(t, x, 5*time.Second)
	return x
}

func TestPrintObserver(t *testing.T) {
	t.Run("numeric", func(t *testing.T) {
		var buf bytes.Buffer
		p := observers.NewPrintObserver(&buf, false)
		run(t, northScenario, p)

		assert.Equal(t, "0 1 1\n0 2 2\n0 3 3\n", buf.String())
		assert.NoError(t, p.Err())
	})

	t.Run("symbolic", func(t *testing.T) {
		var buf bytes.Buffer
		run(t, northScenario, observers.NewPrintObserver(&buf, true))

		assert.Equal(t, "NORTH SOUTH 1\nNORTH EAST 2\nNORTH WEST 3\n", buf.String())
	})
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func TestPrintObserver_WriteError(t *testing.T) {
	w := &failingWriter{}
	p := observers.NewPrintObserver(w, false)
	run(t, northScenario, p)

	assert.EqualError(t, p.Err(), "disk full")
	assert.Equal(t, 1, w.calls)
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	x := run(t, northScenario, observers.NewLoggingObserver(logger))

	out := buf.String()
	assert.Contains(t, out, `"msg":"intersection run started"`)
	assert.Contains(t, out, `"msg":"intersection run finished"`)
	assert.Equal(t, 3, strings.Count(out, `"msg":"car crossed"`))
	assert.Equal(t, 3, strings.Count(out, `"msg":"car admitted"`))
	assert.Contains(t, out, `"maneuver":"left"`)
	assert.Contains(t, out, x.ID())
}

func TestLoggingObserver_InfoLevelSkipsCars(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	run(t, northScenario, observers.NewLoggingObserver(logger))

	out := buf.String()
	assert.NotContains(t, out, "car crossed")
	assert.Contains(t, out, "lane drained")
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observers.NewMetricsObserver(reg)
	require.NoError(t, err)

	cars := append([]junction.Car{}, northScenario...)
	cars = append(cars, junction.Car{ID: 4, Entry: junction.East, Exit: junction.East})
	run(t, cars, m)

	expected := `
# HELP junction_crossings_total Cars that crossed the intersection
# TYPE junction_crossings_total counter
junction_crossings_total{entry="EAST",exit="EAST",maneuver="u-turn"} 1
junction_crossings_total{entry="NORTH",exit="EAST",maneuver="left"} 1
junction_crossings_total{entry="NORTH",exit="SOUTH",maneuver="straight"} 1
junction_crossings_total{entry="NORTH",exit="WEST",maneuver="right"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "junction_crossings_total"))

	gathered, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range gathered {
		switch mf.GetName() {
		case "junction_lane_drained_total":
			assert.Equal(t, float64(junction.NumDirections), mf.GetMetric()[0].GetCounter().GetValue())
		case "junction_runs_completed_total":
			assert.Equal(t, float64(1), mf.GetMetric()[0].GetCounter().GetValue())
		case "junction_quadrant_wait_seconds":
			var samples uint64
			for _, metric := range mf.GetMetric() {
				samples += metric.GetHistogram().GetSampleCount()
			}
			assert.Equal(t, uint64(4), samples)
		}
	}

	_, err = observers.NewMetricsObserver(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestTracingObserver(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	x := run(t, northScenario, observers.NewTracingObserver(context.Background(), tp))

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	for _, span := range spans {
		assert.Equal(t, "junction.cross", span.Name())

		attrs := map[string]string{}
		for _, kv := range span.Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		assert.Equal(t, x.ID(), attrs["junction.run_id"])
		assert.Equal(t, "NORTH", attrs["junction.entry"])

		require.Len(t, span.Events(), 1)
		assert.Equal(t, "quadrants.acquired", span.Events()[0].Name)
		assert.False(t, span.EndTime().Before(span.StartTime()))
	}
}

func TestValidationObserver(t *testing.T) {
	cars := schedule.Generate(400, 7)
	v := observers.NewValidationObserver()
	v.ExpectCars(cars...)

	x, err := junction.NewIntersection(cars, junction.WithLaneCapacity(2), junction.WithObserver(v))
	require.NoError(t, err)
	junction.RunWithTimeout(t, x, 10*time.Second)

	assert.False(t, v.HasViolations(), "violations: %v", v.GetViolations())
	assert.Empty(t, v.GetMissingCars())
}

func TestValidationObserver_DetectsViolations(t *testing.T) {
	v := observers.NewValidationObserver()
	car := junction.Car{ID: 9, Entry: junction.West, Exit: junction.North}
	v.ExpectCars(car)
	assert.Equal(t, []junction.Car{car}, v.GetMissingCars())

	now := time.Now()
	v.OnCrossing(junction.CrossingEvent{
		Car:         car,
		Path:        junction.ResolvePath(junction.North, junction.East),
		Sequence:    2,
		WaitStarted: now,
		Entered:     now.Add(-time.Millisecond),
	})
	v.OnAdmission(junction.AdmissionEvent{Car: car, Occupancy: 3, Capacity: 2})
	v.OnLaneDrained(junction.West, junction.LaneStats{Expected: 2, Crossed: 1})
	v.OnError(errors.New("boom"))

	violations := v.GetViolations()
	require.Len(t, violations, 5)
	assert.Contains(t, violations[0], "expected [Q1 Q3 Q4]")
	assert.Contains(t, violations[1], "entered before")
	assert.Contains(t, violations[2], "occupancy 3 of 2")
	assert.Contains(t, violations[3], "crossed 1 of 2")
	assert.Contains(t, violations[4], "boom")
	assert.Empty(t, v.GetMissingCars())

	v.Reset()
	assert.False(t, v.HasViolations())
	assert.Equal(t, []junction.Car{car}, v.GetMissingCars())
}

func TestValidationObserver_DetectsLaneReordering(t *testing.T) {
	first := junction.Car{ID: 1, Entry: junction.West, Exit: junction.North}
	second := junction.Car{ID: 2, Entry: junction.West, Exit: junction.East}
	other := junction.Car{ID: 3, Entry: junction.South, Exit: junction.North}

	v := observers.NewValidationObserver()
	v.ExpectCars(first, other, second)

	cross := func(car junction.Car, sequence int) {
		now := time.Now()
		v.OnCrossing(junction.CrossingEvent{
			Car:         car,
			Path:        car.Path(),
			Sequence:    sequence,
			WaitStarted: now,
			Entered:     now,
		})
	}

	// per-worker sequence numbers stay consecutive even when cars swap
	cross(other, 1)
	cross(second, 1)
	cross(first, 2)

	violations := v.GetViolations()
	require.Len(t, violations, 2)
	assert.Contains(t, violations[0], "crossed car 2")
	assert.Contains(t, violations[0], "expected car 1")
	assert.Contains(t, violations[1], "crossed car 1")
	assert.Contains(t, violations[1], "expected car 2")
	assert.Empty(t, v.GetMissingCars())

	cross(first, 3)
	violations = v.GetViolations()
	require.Len(t, violations, 4)
	assert.Contains(t, violations[2], "after its last expected car")
	assert.Contains(t, violations[3], "more often than expected")

	v.Reset()
	cross(other, 1)
	cross(first, 1)
	cross(second, 2)
	assert.False(t, v.HasViolations(), "in-order crossings after reset: %v", v.GetViolations())
}

func TestDefaultLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	run(t, northScenario, observers.NewDefaultLoggingObserver())
	assert.Contains(t, buf.String(), "component=intersection")
	assert.Contains(t, buf.String(), "intersection run finished")
}
