package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestDistToLineSegment(t *testing.T) {
	a := r3.Vector{X: 0, Y: 0}
	b := r3.Vector{X: 10, Y: 0}

	for _, tc := range []struct {
		name     string
		query    r3.Vector
		expected float64
	}{
		{"projection inside", r3.Vector{X: 5, Y: 3}, 3},
		{"before start", r3.Vector{X: -3, Y: 4}, 5},
		{"past end", r3.Vector{X: 13, Y: -4}, 5},
		{"on segment", r3.Vector{X: 7.5, Y: 0}, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, DistToLineSegment(a, b, tc.query), test.ShouldAlmostEqual, tc.expected)
		})
	}

	t.Run("degenerate segment", func(t *testing.T) {
		pt := r3.Vector{X: 1, Y: 1}
		test.That(t, DistToLineSegment(pt, pt, r3.Vector{X: 4, Y: 5}), test.ShouldAlmostEqual, 5)
		test.That(t, ClosestPointSegmentPoint(pt, pt, r3.Vector{X: 4, Y: 5}), test.ShouldResemble, pt)
	})

	t.Run("swept segment catches a point missed by both endpoints", func(t *testing.T) {
		prev := r3.Vector{X: -2, Y: 0.1}
		cur := r3.Vector{X: 2, Y: 0.1}
		target := r3.Vector{}
		test.That(t, prev.Sub(target).Norm(), test.ShouldBeGreaterThan, 1)
		test.That(t, cur.Sub(target).Norm(), test.ShouldBeGreaterThan, 1)
		test.That(t, DistToLineSegment(prev, cur, target), test.ShouldAlmostEqual, 0.1)
	})

	t.Run("diagonal", func(t *testing.T) {
		d := DistToLineSegment(r3.Vector{}, r3.Vector{X: 1, Y: 1}, r3.Vector{X: 1, Y: 0})
		test.That(t, d, test.ShouldAlmostEqual, math.Sqrt2/2)
	})
}
