// Package navigation defines waypoint plans, their progress status and the collaborators a waypoint
// navigator drives: the robot it reads poses from and the single goal navigator it hands targets to.
package navigation

import (
	"context"
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/waypointnav/spatialmath"
)

// Desired relative speeds sent along with each target.
const (
	// SlowApproachSpeed is used for the final waypoint and for any waypoint with a heading.
	SlowApproachSpeed = 0.05
	// PassThroughSpeed is used for intermediary waypoints the robot only needs to pass near.
	PassThroughSpeed = 1.0
)

// A Service executes waypoint plans.
type Service interface {
	// NavigateWaypoints replaces any running plan with waypoints. Navigation starts on the next Step.
	NavigateWaypoints(ctx context.Context, waypoints []Waypoint) error
	// Cancel drops the running plan and stops the underlying navigator.
	Cancel(ctx context.Context) error
	// WaypointNavStatus returns a copy of the plan progress.
	WaypointNavStatus() WaypointStatusSequence
	// Step runs one control period.
	Step(ctx context.Context) error
}

// PoseAndVelocity is a timestamped robot state estimate.
type PoseAndVelocity struct {
	Pose      spatialmath.Pose2D
	Velocity  VelocityCommand
	Timestamp time.Time
}

// VelocityCommand is a body frame velocity. Linear is in m/s, Angular in rad/s (only Z is used by
// planar robots).
type VelocityCommand struct {
	Linear  r3.Vector
	Angular r3.Vector
}

// RobotInterface is the robot a waypoint navigator steers.
type RobotInterface interface {
	CurrentPoseAndVelocity(ctx context.Context) (PoseAndVelocity, error)
	// AlignmentCommand returns a command that rotates the robot in place to close angErr (radians,
	// positive is counter-clockwise). ok is false when the robot cannot rotate in place.
	AlignmentCommand(ctx context.Context, angErr float64) (cmd VelocityCommand, ok bool)
	ApplyVelocityCommand(ctx context.Context, cmd VelocityCommand) error
	Stop(ctx context.Context, emergency bool) error

	// OnWaypointReached is called once per waypoint; reachedNotSkipped is false when it was skipped.
	OnWaypointReached(ctx context.Context, index int, reachedNotSkipped bool)
	OnNewActiveWaypoint(ctx context.Context, index int)
}

// A ReachabilityChecker decides whether a point in the robot's local frame can be reached directly
// from the current pose.
type ReachabilityChecker interface {
	IsLocallyReachable(local r3.Vector) bool
}

// SingleGoalNavigator drives the robot to one target at a time.
type SingleGoalNavigator interface {
	NavigateTo(ctx context.Context, params NavigationParams) error
	Step(ctx context.Context) error
	Cancel(ctx context.Context) error
}

// NavigationParams is a single target handed to a SingleGoalNavigator.
type NavigationParams struct {
	Target                       r3.Vector
	TargetHeading                float64
	TargetFrameID                string
	TargetAllowedDistance        float64
	TargetIsIntermediaryWaypoint bool
	// TargetDesiredRelSpeed is in [0, 1], relative to the robot's maximum speed.
	TargetDesiredRelSpeed float64
}

// CheckHasReachedTarget tells a single goal navigator whether its target is done. Intermediary
// waypoints never are; the waypoint navigator decides those itself.
func (p NavigationParams) CheckHasReachedTarget(targetDist float64) bool {
	return !p.TargetIsIntermediaryWaypoint && targetDist < p.TargetAllowedDistance
}
