package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/junction"
	"github.com/anggasct/junction/pkg/schedule"
)

const northSchedule = "# three cars from the north\n1 0 1\n2 0 2\n3 0 3\n"

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeFile(t, "north.txt", northSchedule)

	stdout, _, err := execute(t, "", "run", path)
	require.NoError(t, err)
	assert.Equal(t, "0 1 1\n0 2 2\n0 3 3\n", stdout)
}

func TestRunCommand_StdinSymbolic(t *testing.T) {
	stdout, _, err := execute(t, northSchedule, "run", "-", "--symbolic", "--capacity", "1")
	require.NoError(t, err)
	assert.Equal(t, "NORTH SOUTH 1\nNORTH EAST 2\nNORTH WEST 3\n", stdout)
}

func TestRunCommand_YAMLSchedule(t *testing.T) {
	path := writeFile(t, "cars.yaml", `
cars:
  - {id: 7, entry: east, exit: north}
  - {id: 8, entry: WEST, exit: 1}
`)
	stdout, _, err := execute(t, "", "run", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.ElementsMatch(t, []string{"2 0 7", "3 1 8"}, lines)
}

func TestRunCommand_Diagnostics(t *testing.T) {
	path := writeFile(t, "cars.txt", northSchedule+"4 2 2\n5 3 1\n")

	stdout, stderr, err := execute(t, "", "run", path, "--metrics", "--summary", "--trace", "--log-level", "info", "--log-format", "json")
	require.NoError(t, err)

	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 5)
	assert.Contains(t, stderr, `junction_crossings_total{entry="NORTH",exit="EAST",maneuver="left"} 1`)
	assert.Contains(t, stderr, "junction_runs_completed_total 1")
	assert.Contains(t, stderr, `"Name": "junction.cross"`)
	assert.Contains(t, stderr, `"msg":"intersection run finished"`)
	assert.Contains(t, stderr, "QUADRANT")
	assert.Contains(t, stderr, "3/3")
}

func TestRunCommand_ConcurrentDiagnostics(t *testing.T) {
	var schedText bytes.Buffer
	require.NoError(t, schedule.Format(&schedText, schedule.Generate(400, 11)))
	path := writeFile(t, "busy.txt", schedText.String())

	// logs and spans from all four crossing workers share one stderr buffer
	stdout, stderr, err := execute(t, "", "run", path, "--trace", "--log-level", "debug", "--capacity", "2")
	require.NoError(t, err)

	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 400)
	assert.Equal(t, 400, strings.Count(stderr, `"Name": "junction.cross"`))
	assert.Equal(t, 400, strings.Count(stderr, "car crossed"))
	assert.Equal(t, junction.NumDirections, strings.Count(stderr, "lane drained"))
}

func TestRunCommand_ConfigFile(t *testing.T) {
	cfg := writeFile(t, "junction.yaml", `
lane_capacity: 2
crossing_duration: 1ms
output:
  symbolic: true
`)
	path := writeFile(t, "north.txt", northSchedule)

	stdout, _, err := execute(t, "", "run", path, "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "NORTH SOUTH 1\nNORTH EAST 2\nNORTH WEST 3\n", stdout)

	stdout, _, err = execute(t, "", "run", path, "--config", cfg, "--symbolic=false")
	require.NoError(t, err)
	assert.Equal(t, "0 1 1\n0 2 2\n0 3 3\n", stdout)
}

func TestRunCommand_Errors(t *testing.T) {
	path := writeFile(t, "north.txt", northSchedule)

	t.Run("bad capacity flag", func(t *testing.T) {
		_, _, err := execute(t, "", "run", path, "--capacity", "0")
		require.Error(t, err)
		assert.True(t, junction.IsConfigurationError(err))
	})

	t.Run("bad log level", func(t *testing.T) {
		_, _, err := execute(t, "", "run", path, "--log-level", "verbose")
		assert.True(t, junction.IsConfigurationError(err))
	})

	t.Run("bad config file", func(t *testing.T) {
		cfg := writeFile(t, "bad.yaml", "lane_capacity: -3\n")
		_, _, err := execute(t, "", "run", path, "--config", cfg)
		assert.True(t, junction.IsConfigurationError(err))
	})

	t.Run("malformed schedule", func(t *testing.T) {
		_, _, err := execute(t, "1 0 1\n2 north\n", "run", "-")
		require.Error(t, err)
		assert.Equal(t, junction.ErrCodeMalformedRecord, junction.GetErrorCode(err))
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("missing schedule", func(t *testing.T) {
		_, _, err := execute(t, "", "run", filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := execute(t, "", "run")
		assert.Error(t, err)
	})
}

func TestPathsCommand(t *testing.T) {
	stdout, _, err := execute(t, "", "paths")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, 16)
	assert.Contains(t, lines, "NORTH  EAST   left      [Q2 Q3 Q4]")
	assert.Contains(t, lines, "WEST   WEST   u-turn    [Q2 Q3]")

	stdout, _, err = execute(t, "", "paths", "--entry", "s")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 4)
	assert.Contains(t, stdout, "SOUTH  EAST   right     [Q4]")

	_, _, err = execute(t, "", "paths", "--entry", "up")
	assert.Error(t, err)
}

func TestPathsCommand_DOT(t *testing.T) {
	stdout, _, err := execute(t, "", "paths", "--dot", "--entry", "EAST")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "digraph Intersection {"))
	assert.Contains(t, stdout, "\"in_EAST\" -> \"Q1\"")
	assert.NotContains(t, stdout, "\"in_NORTH\" ->")
}

func TestGenerateCommand(t *testing.T) {
	first, _, err := execute(t, "", "generate", "25", "--seed", "3")
	require.NoError(t, err)
	second, _, err := execute(t, "", "generate", "25", "--seed", "3")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cars, err := schedule.Parse(strings.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, schedule.Generate(25, 3), cars)

	_, _, err = execute(t, "", "generate", "many")
	assert.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	x, err := junction.NewIntersection([]junction.Car{
		{ID: 1, Entry: junction.South, Exit: junction.West},
	})
	require.NoError(t, err)
	require.NoError(t, x.Run())

	out := renderSummary(x.Summary(), false)
	assert.Contains(t, out, x.ID())
	assert.Contains(t, out, "1 cars")
	assert.Contains(t, out, "SOUTH")
	assert.Contains(t, out, "1/1")
	assert.NotContains(t, out, "\x1b[")
}
