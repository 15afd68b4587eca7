// Package schedule reads and writes the list of cars that arrive at the
// intersection.
//
// The text form has one car per line, three whitespace-separated fields:
//
//	<id> <entry> <exit>
//
// Directions are written numerically (0 north, 1 south, 2 east, 3 west) or
// by name. Blank lines and lines starting with '#' are ignored.
package schedule

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/anggasct/junction"
)

// ParseError reports a schedule record that could not be read
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("schedule line %d %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("schedule: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorCode classifies the error for junction.GetErrorCode
func (e *ParseError) ErrorCode() junction.ErrorCode {
	return junction.ErrCodeMalformedRecord
}

// Parse reads the text schedule form. Cars are returned in input order.
func Parse(r io.Reader) ([]junction.Car, error) {
	var cars []junction.Car

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		car, err := parseRecord(text)
		if err != nil {
			return nil, &ParseError{Line: line, Text: text, Err: err}
		}
		cars = append(cars, car)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	return cars, nil
}

func parseRecord(text string) (junction.Car, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return junction.Car{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return junction.Car{}, fmt.Errorf("invalid id: %w", err)
	}
	entry, err := junction.ParseDirection(fields[1])
	if err != nil {
		return junction.Car{}, fmt.Errorf("entry: %w", err)
	}
	exit, err := junction.ParseDirection(fields[2])
	if err != nil {
		return junction.Car{}, fmt.Errorf("exit: %w", err)
	}
	return junction.NewCar(id, entry, exit)
}

type yamlCar struct {
	ID    int    `yaml:"id"`
	Entry string `yaml:"entry"`
	Exit  string `yaml:"exit"`
}

type yamlSchedule struct {
	Cars []yamlCar `yaml:"cars"`
}

// ParseYAML reads a schedule of the form
//
//	cars:
//	  - {id: 1, entry: north, exit: south}
func ParseYAML(r io.Reader) ([]junction.Car, error) {
	var doc yamlSchedule
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, &ParseError{Err: fmt.Errorf("decode yaml: %w", err)}
	}

	cars := make([]junction.Car, 0, len(doc.Cars))
	for i, rec := range doc.Cars {
		text := fmt.Sprintf("%d %s %s", rec.ID, rec.Entry, rec.Exit)
		car, err := parseRecord(text)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: text, Err: err}
		}
		cars = append(cars, car)
	}
	return cars, nil
}

// Load reads a schedule file, choosing the format by extension
func Load(path string) ([]junction.Car, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f)
	default:
		return Parse(f)
	}
}

// Format writes cars in the numeric text form accepted by Parse
func Format(w io.Writer, cars []junction.Car) error {
	bw := bufio.NewWriter(w)
	for _, c := range cars {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", c.ID, int(c.Entry), int(c.Exit)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Generate returns n cars with random movements. The same seed always
// yields the same schedule. A non-positive n yields no cars.
func Generate(n int, seed int64) []junction.Car {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	cars := make([]junction.Car, n)
	for i := range cars {
		cars[i] = junction.Car{
			ID:    i + 1,
			Entry: junction.Directions[rng.Intn(junction.NumDirections)],
			Exit:  junction.Directions[rng.Intn(junction.NumDirections)],
		}
	}
	return cars
}
