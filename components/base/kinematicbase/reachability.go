// Package kinematicbase contains reachability models for mobile bases. A model decides whether a
// point given in the base's local frame (+X forward, +Y left) can be driven to directly from the
// current pose.
package kinematicbase

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/waypointnav/services/navigation"
)

// Supported kinematic models.
const (
	KindHolonomic = "holonomic"
	KindDiffDrive = "diff_drive"
)

// Options selects and parameterizes a reachability model.
type Options struct {
	Kinematics string `json:"kinematics"`
	// TurningRadiusMeters is the tightest arc a diff drive base may follow. Zero allows turning in place.
	TurningRadiusMeters float64 `json:"turning_radius_m"`
	// MaxReachDistanceMeters bounds the path length to a reachable point. Zero or less is unbounded.
	MaxReachDistanceMeters float64 `json:"max_reach_distance_m"`
}

// New returns the reachability model described by opts.
func New(opts Options) (navigation.ReachabilityChecker, error) {
	if opts.TurningRadiusMeters < 0 {
		return nil, errors.Errorf("turning radius must be >= 0, got %v", opts.TurningRadiusMeters)
	}
	switch opts.Kinematics {
	case KindHolonomic, "":
		return Holonomic{MaxDistance: opts.MaxReachDistanceMeters}, nil
	case KindDiffDrive:
		return DiffDrive{TurningRadius: opts.TurningRadiusMeters, RefDistance: opts.MaxReachDistanceMeters}, nil
	default:
		return nil, errors.Errorf("unknown kinematics %q", opts.Kinematics)
	}
}

// Holonomic can move in any direction, so a point is reachable when it is close enough.
type Holonomic struct {
	MaxDistance float64
}

// IsLocallyReachable implements navigation.ReachabilityChecker.
func (h Holonomic) IsLocallyReachable(local r3.Vector) bool {
	return h.MaxDistance <= 0 || math.Hypot(local.X, local.Y) <= h.MaxDistance
}

// DiffDrive follows forward circular arcs tangent to its heading. A point is reachable when the
// arc through it is no tighter than TurningRadius and no longer than RefDistance.
type DiffDrive struct {
	TurningRadius float64
	RefDistance   float64
}

// IsLocallyReachable implements navigation.ReachabilityChecker.
func (d DiffDrive) IsLocallyReachable(local r3.Vector) bool {
	length, ok := d.ArcLength(local)
	return ok && (d.RefDistance <= 0 || length <= d.RefDistance)
}

// ArcLength returns the length of the forward arc from the origin to local, and false if the arc
// is tighter than the turning radius.
func (d DiffDrive) ArcLength(local r3.Vector) (float64, bool) {
	x, y := local.X, math.Abs(local.Y)
	if y < 1e-9 {
		// straight ahead; points straight behind would need an infinitely long arc
		return x, x >= 0
	}
	radius := (x*x + y*y) / (2 * y)
	if radius < d.TurningRadius {
		return 0, false
	}
	theta := math.Atan2(x, radius-y)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return radius * theta, true
}
