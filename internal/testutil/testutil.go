// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// StraightLineCSV is a three-waypoint path along +x with anchors at 0, 10 and
// 20. Handles sit one unit either side of each anchor.
const StraightLineCSV = `0,0,0,1,0,0,-1,0,0
10,0,0,9,0,0,11,0,0
20,0,0,19,0,0,21,0,0
`

// ArcCSV is a quarter turn from (0,0,0) to (10,10,0) followed by a straight
// run to (10,20,0).
const ArcCSV = `0,0,0,-5,0,0,5,0,0
10,10,0,10,5,0,10,15,0
10,20,0,10,15,0,10,25,0
`

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertVecNear checks that got is within tol of want on every axis.
func AssertVecNear(t *testing.T, want, got r3.Vec, tol float64) {
	t.Helper()
	if math.Abs(want.X-got.X) > tol || math.Abs(want.Y-got.Y) > tol || math.Abs(want.Z-got.Z) > tol {
		t.Errorf("vector = %+v, want %+v (tol %g)", got, want, tol)
	}
}

// WriteTempFile writes content to name inside a fresh temp dir and returns
// the full path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}
