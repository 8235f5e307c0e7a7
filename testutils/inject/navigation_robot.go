package inject

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/waypointnav/services/navigation"
)

// RobotInterface is an injectable robot for waypoint navigation.
type RobotInterface struct {
	navigation.RobotInterface
	CurrentPoseAndVelocityFunc func(ctx context.Context) (navigation.PoseAndVelocity, error)
	AlignmentCommandFunc       func(ctx context.Context, angErr float64) (navigation.VelocityCommand, bool)
	ApplyVelocityCommandFunc   func(ctx context.Context, cmd navigation.VelocityCommand) error
	StopFunc                   func(ctx context.Context, emergency bool) error
	OnWaypointReachedFunc      func(ctx context.Context, index int, reachedNotSkipped bool)
	OnNewActiveWaypointFunc    func(ctx context.Context, index int)
}

// CurrentPoseAndVelocity calls the injected CurrentPoseAndVelocity or the real version.
func (r *RobotInterface) CurrentPoseAndVelocity(ctx context.Context) (navigation.PoseAndVelocity, error) {
	if r.CurrentPoseAndVelocityFunc == nil {
		return r.RobotInterface.CurrentPoseAndVelocity(ctx)
	}
	return r.CurrentPoseAndVelocityFunc(ctx)
}

// AlignmentCommand calls the injected AlignmentCommand or the real version.
func (r *RobotInterface) AlignmentCommand(ctx context.Context, angErr float64) (navigation.VelocityCommand, bool) {
	if r.AlignmentCommandFunc == nil {
		return r.RobotInterface.AlignmentCommand(ctx, angErr)
	}
	return r.AlignmentCommandFunc(ctx, angErr)
}

// ApplyVelocityCommand calls the injected ApplyVelocityCommand or the real version.
func (r *RobotInterface) ApplyVelocityCommand(ctx context.Context, cmd navigation.VelocityCommand) error {
	if r.ApplyVelocityCommandFunc == nil {
		return r.RobotInterface.ApplyVelocityCommand(ctx, cmd)
	}
	return r.ApplyVelocityCommandFunc(ctx, cmd)
}

// Stop calls the injected Stop or the real version.
func (r *RobotInterface) Stop(ctx context.Context, emergency bool) error {
	if r.StopFunc == nil {
		return r.RobotInterface.Stop(ctx, emergency)
	}
	return r.StopFunc(ctx, emergency)
}

// OnWaypointReached calls the injected OnWaypointReached or the real version.
func (r *RobotInterface) OnWaypointReached(ctx context.Context, index int, reachedNotSkipped bool) {
	if r.OnWaypointReachedFunc == nil {
		r.RobotInterface.OnWaypointReached(ctx, index, reachedNotSkipped)
		return
	}
	r.OnWaypointReachedFunc(ctx, index, reachedNotSkipped)
}

// OnNewActiveWaypoint calls the injected OnNewActiveWaypoint or the real version.
func (r *RobotInterface) OnNewActiveWaypoint(ctx context.Context, index int) {
	if r.OnNewActiveWaypointFunc == nil {
		r.RobotInterface.OnNewActiveWaypoint(ctx, index)
		return
	}
	r.OnNewActiveWaypointFunc(ctx, index)
}

// ReachabilityChecker is an injectable reachability check.
type ReachabilityChecker struct {
	navigation.ReachabilityChecker
	IsLocallyReachableFunc func(local r3.Vector) bool
}

// IsLocallyReachable calls the injected IsLocallyReachable or the real version.
func (rc *ReachabilityChecker) IsLocallyReachable(local r3.Vector) bool {
	if rc.IsLocallyReachableFunc == nil {
		return rc.ReachabilityChecker.IsLocallyReachable(local)
	}
	return rc.IsLocallyReachableFunc(local)
}
