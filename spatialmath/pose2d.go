// Package spatialmath defines the planar geometry used by waypoint navigation: 2D poses, point to
// segment distances, angle wrapping and conversion of geo points into a local metric frame.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Pose2D is a planar pose. X and Y are in meters, Theta is the heading in radians measured
// counter-clockwise from the +X axis.
type Pose2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewPose2D returns a pose with its heading wrapped into (-pi, pi].
func NewPose2D(x, y, theta float64) Pose2D {
	return Pose2D{X: x, Y: y, Theta: WrapToPi(theta)}
}

// Point returns the position of the pose as an r3 vector with zero Z.
func (p Pose2D) Point() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y}
}

// InverseComposePoint expresses a point given in the pose's parent frame in the pose's local frame,
// i.e. it returns p^-1 (+) pt. The Z component of pt is carried through unchanged.
func (p Pose2D) InverseComposePoint(pt r3.Vector) r3.Vector {
	dx := pt.X - p.X
	dy := pt.Y - p.Y
	ccos, csin := math.Cos(p.Theta), math.Sin(p.Theta)
	return r3.Vector{
		X: dx*ccos + dy*csin,
		Y: -dx*csin + dy*ccos,
		Z: pt.Z,
	}
}

// ComposePoint expresses a point given in the pose's local frame in the pose's parent frame, i.e.
// it returns p (+) local.
func (p Pose2D) ComposePoint(local r3.Vector) r3.Vector {
	ccos, csin := math.Cos(p.Theta), math.Sin(p.Theta)
	return r3.Vector{
		X: p.X + local.X*ccos - local.Y*csin,
		Y: p.Y + local.X*csin + local.Y*ccos,
		Z: local.Z,
	}
}

// AlmostEqual returns whether two poses are within epsilon of each other in position and heading.
func (p Pose2D) AlmostEqual(other Pose2D, epsilon float64) bool {
	return math.Abs(p.X-other.X) <= epsilon &&
		math.Abs(p.Y-other.Y) <= epsilon &&
		math.Abs(AngleDistance(p.Theta, other.Theta)) <= epsilon
}

func (p Pose2D) String() string {
	return fmt.Sprintf("(x: %.3f, y: %.3f, theta: %.2f deg)", p.X, p.Y, p.Theta*180/math.Pi)
}
