package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pathtrack/internal/metrics"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run is the persisted summary of one completed run.
type Run struct {
	RunID           string  `json:"run_id"`
	CurvePath       string  `json:"curve_path"`
	Subdivisions    int     `json:"subdivisions"`
	SampleCount     int     `json:"sample_count"`
	TrajectoryError float64 `json:"trajectory_error"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	FinalIndex      int     `json:"final_index"`
	MaxIndex        int     `json:"max_index"`
	SuccessFraction float64 `json:"success_fraction"`
	Outcome         string  `json:"outcome"`
	CreatedAt       int64   `json:"created_at"`
}

// NewRun builds a Run from a metrics summary. sampleCount is the size of the
// curve tessellation.
func NewRun(curvePath string, subdivisions, sampleCount int, outcome string, s metrics.Summary) *Run {
	return &Run{
		CurvePath:       curvePath,
		Subdivisions:    subdivisions,
		SampleCount:     sampleCount,
		TrajectoryError: s.TrajectoryError,
		ElapsedSeconds:  s.ElapsedSeconds,
		FinalIndex:      s.FinalIndex,
		MaxIndex:        s.MaxIndex,
		SuccessFraction: s.SuccessFraction,
		Outcome:         outcome,
	}
}

// RunStore provides persistence for runs and their telemetry.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db.DB}
}

const runColumns = `run_id, curve_path, subdivisions, sample_count,
	trajectory_error, elapsed_seconds, final_index, max_index,
	success_fraction, outcome, created_at`

// Insert persists a new run. If RunID is empty, a UUID is generated.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CurvePath, run.Subdivisions, run.SampleCount,
		run.TrajectoryError, run.ElapsedSeconds, run.FinalIndex, run.MaxIndex,
		run.SuccessFraction, run.Outcome, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get returns a single run by ID.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

// List returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (s *RunStore) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT `+runColumns+`
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Delete removes a run and its telemetry.
func (s *RunStore) Delete(runID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM run_samples WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("delete run samples: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return tx.Commit()
}

// InsertSamples stores the telemetry series of an existing run.
func (s *RunStore) InsertSamples(runID string, series *metrics.Series) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert samples: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO run_samples (
			run_id, seq,
			pos_x, pos_y, pos_z, com_x, com_y, com_z,
			orient_x, orient_y, orient_z, linvel_x, linvel_y, linvel_z,
			angvel_x, angvel_y, angvel_z, target_x, target_y, target_z,
			control_effort, elapsed_s
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert samples: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < series.Len(); i++ {
		t := series.Sample(i)
		args := []interface{}{runID, i}
		for _, v := range [...]r3.Vec{
			t.Position, t.CentreOfMass, t.Orientation,
			t.LinearVelocity, t.AngularVelocity, t.Target,
		} {
			args = append(args, v.X, v.Y, v.Z)
		}
		args = append(args, t.ControlEffort, t.Elapsed)
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert sample %d of run %s: %w", i, runID, err)
		}
	}
	return tx.Commit()
}

// Samples returns the stored telemetry of a run in capture order.
func (s *RunStore) Samples(runID string) (*metrics.Series, error) {
	rows, err := s.db.Query(`
		SELECT pos_x, pos_y, pos_z, com_x, com_y, com_z,
		       orient_x, orient_y, orient_z, linvel_x, linvel_y, linvel_z,
		       angvel_x, angvel_y, angvel_z, target_x, target_y, target_z,
		       control_effort, elapsed_s
		FROM run_samples
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run samples: %w", err)
	}
	defer rows.Close()

	series := &metrics.Series{}
	for rows.Next() {
		var t metrics.TelemetrySample
		err := rows.Scan(
			&t.Position.X, &t.Position.Y, &t.Position.Z,
			&t.CentreOfMass.X, &t.CentreOfMass.Y, &t.CentreOfMass.Z,
			&t.Orientation.X, &t.Orientation.Y, &t.Orientation.Z,
			&t.LinearVelocity.X, &t.LinearVelocity.Y, &t.LinearVelocity.Z,
			&t.AngularVelocity.X, &t.AngularVelocity.Y, &t.AngularVelocity.Z,
			&t.Target.X, &t.Target.Y, &t.Target.Z,
			&t.ControlEffort, &t.Elapsed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run sample: %w", err)
		}
		series.Append(t)
	}
	return series, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	err := row.Scan(
		&r.RunID, &r.CurvePath, &r.Subdivisions, &r.SampleCount,
		&r.TrajectoryError, &r.ElapsedSeconds, &r.FinalIndex, &r.MaxIndex,
		&r.SuccessFraction, &r.Outcome, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
