package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pathtrack/internal/metrics"
)

func TestRunStore_InsertGet(t *testing.T) {
	store := NewRunStore(openTestDB(t))

	run := NewRun("paths/arc.csv", 50, 101, "goal_reached", metrics.Summary{
		TrajectoryError: 3.25,
		ElapsedSeconds:  12.5,
		FinalIndex:      100,
		MaxIndex:        100,
		SuccessFraction: 1,
	})
	require.NoError(t, store.Insert(run))
	assert.NotEmpty(t, run.RunID, "id generated")
	assert.NotZero(t, run.CreatedAt, "created_at defaulted")

	got, err := store.Get(run.RunID)
	require.NoError(t, err)
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStore_InsertKeepsExplicitID(t *testing.T) {
	store := NewRunStore(openTestDB(t))

	run := &Run{RunID: "fixed", CurvePath: "p.csv", Outcome: "timed_out", CreatedAt: 42}
	require.NoError(t, store.Insert(run))
	assert.Equal(t, "fixed", run.RunID)
	assert.Equal(t, int64(42), run.CreatedAt)

	assert.Error(t, store.Insert(&Run{RunID: "fixed", CurvePath: "p.csv", Outcome: "x"}), "duplicate id")
}

func TestRunStore_GetNotFound(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	_, err := store.Get("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunStore_List(t *testing.T) {
	store := NewRunStore(openTestDB(t))

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Insert(&Run{RunID: id, CurvePath: "p.csv", Outcome: "fell", CreatedAt: int64(i + 1)}))
	}

	all, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].RunID, all[1].RunID, all[2].RunID})

	two, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "c", two[0].RunID)
}

func TestRunStore_ListEmpty(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	runs, err := store.List(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func testSeries() *metrics.Series {
	s := &metrics.Series{}
	for i := 0; i < 4; i++ {
		f := float64(i)
		s.Append(metrics.TelemetrySample{
			Position:        r3.Vec{X: f, Y: f * 2, Z: 0.5},
			CentreOfMass:    r3.Vec{X: f, Y: f * 2, Z: 0.4},
			Orientation:     r3.Vec{X: 1, Y: 0.1, Z: -0.2},
			LinearVelocity:  r3.Vec{X: 0.3 * f},
			AngularVelocity: r3.Vec{Z: -0.01 * f},
			Target:          r3.Vec{X: f + 0.25},
			ControlEffort:   0.125 * f,
			Elapsed:         0.02 * f,
		})
	}
	return s
}

func TestRunStore_Samples(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	require.NoError(t, store.Insert(&Run{RunID: "r1", CurvePath: "p.csv", Outcome: "goal_reached"}))

	in := testSeries()
	require.NoError(t, store.InsertSamples("r1", in))

	out, err := store.Samples("r1")
	require.NoError(t, err)
	if diff := cmp.Diff(in, out, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}

	empty, err := store.Samples("other")
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}

func TestRunStore_InsertSamplesUnknownRun(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	err := store.InsertSamples("ghost", testSeries())
	assert.Error(t, err)

	out, err := store.Samples("ghost")
	require.NoError(t, err)
	assert.Zero(t, out.Len(), "failed insert rolled back")
}

func TestRunStore_Delete(t *testing.T) {
	store := NewRunStore(openTestDB(t))
	require.NoError(t, store.Insert(&Run{RunID: "r1", CurvePath: "p.csv", Outcome: "fell"}))
	require.NoError(t, store.InsertSamples("r1", testSeries()))

	require.NoError(t, store.Delete("r1"))

	_, err := store.Get("r1")
	assert.ErrorIs(t, err, ErrRunNotFound)
	out, err := store.Samples("r1")
	require.NoError(t, err)
	assert.Zero(t, out.Len())

	assert.ErrorIs(t, store.Delete("r1"), ErrRunNotFound)
}
