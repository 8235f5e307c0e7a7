package spatialmath

import "github.com/golang/geo/r3"

// ClosestPointSegmentPoint takes a line segment defined by segA and segB, and returns the point on
// the segment closest to query. A degenerate segment (segA == segB) returns segA.
func ClosestPointSegmentPoint(segA, segB, query r3.Vector) r3.Vector {
	ab := segB.Sub(segA)
	denom := ab.Norm2()
	if denom == 0 {
		return segA
	}
	t := query.Sub(segA).Dot(ab) / denom
	switch {
	case t <= 0:
		return segA
	case t >= 1:
		return segB
	default:
		return segA.Add(ab.Mul(t))
	}
}

// DistToLineSegment returns the minimum distance from query to the segment segA-segB.
func DistToLineSegment(segA, segB, query r3.Vector) float64 {
	return query.Sub(ClosestPointSegmentPoint(segA, segB, query)).Norm()
}
