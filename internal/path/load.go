package path

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/pathtrack/internal/fsutil"
	"github.com/banshee-data/pathtrack/internal/monitoring"
)

// fieldsPerWaypoint is anchor xyz, left handle xyz, right handle xyz.
const fieldsPerWaypoint = 9

// LoadError reports a waypoint source that could not be read or a line that
// could not be parsed. Line is 1-based; 0 means the source as a whole.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load waypoints from %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load waypoints from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load builds a curve from r, one waypoint per line as nine comma-separated
// numbers. Blank lines are skipped. Any malformed line fails the whole load,
// as does a source with fewer than two waypoints.
func Load(r io.Reader, subdivisions int) (*Curve, error) {
	return load(r, "reader", subdivisions)
}

// LoadFile builds a curve from the named waypoint file.
func LoadFile(fsys fsutil.FileSystem, name string, subdivisions int) (*Curve, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	defer f.Close()

	c, err := load(f, name, subdivisions)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("Loaded %d waypoints from %s", c.WaypointCount(), name)
	return c, nil
}

func load(r io.Reader, source string, subdivisions int) (*Curve, error) {
	c, err := NewCurve(subdivisions)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		w, err := ParseWaypoint(text)
		if err != nil {
			return nil, &LoadError{Source: source, Line: line, Err: err}
		}
		c.AddWaypoint(w)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	if err := c.Validate(); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return c, nil
}

// ParseWaypoint parses "ax,ay,az,lx,ly,lz,rx,ry,rz".
func ParseWaypoint(text string) (Waypoint, error) {
	fields := strings.Split(text, ",")
	if len(fields) != fieldsPerWaypoint {
		return Waypoint{}, fmt.Errorf("expected %d fields, got %d", fieldsPerWaypoint, len(fields))
	}

	var v [fieldsPerWaypoint]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Waypoint{}, fmt.Errorf("failed to parse field %d: %w", i+1, err)
		}
		v[i] = x
	}

	return Waypoint{
		Anchor: Vec3{X: v[0], Y: v[1], Z: v[2]},
		Left:   Vec3{X: v[3], Y: v[4], Z: v[5]},
		Right:  Vec3{X: v[6], Y: v[7], Z: v[8]},
	}, nil
}

// Format renders w in the waypoint file format.
func (w Waypoint) Format() string {
	vals := []float64{
		w.Anchor.X, w.Anchor.Y, w.Anchor.Z,
		w.Left.X, w.Left.Y, w.Left.Z,
		w.Right.X, w.Right.Y, w.Right.Z,
	}
	parts := make([]string, len(vals))
	for i, x := range vals {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
