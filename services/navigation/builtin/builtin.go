// Package builtin contains the default waypoint navigator. It sequences a plan of waypoints on top
// of a single goal navigator: it detects when the active waypoint is reached, aligns the robot to
// waypoint headings, skips ahead to farther waypoints once they are reliably reachable and hands
// each new active waypoint to the single goal navigator.
package builtin

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"go.viam.com/waypointnav/logging"
	"go.viam.com/waypointnav/services/navigation"
	"go.viam.com/waypointnav/spatialmath"
)

// alignmentLogInterval throttles the "waiting for alignment" message.
const alignmentLogInterval = 500 * time.Millisecond

var _ = navigation.Service(&WaypointsNavigator{})

// An Option configures a WaypointsNavigator.
type Option func(*WaypointsNavigator)

// WithClock sets the clock used for plan and reach timestamps.
func WithClock(clk clock.Clock) Option {
	return func(wn *WaypointsNavigator) {
		wn.clk = clk
	}
}

// WithReachability sets the reachability check used by the skip scan. Without it the robot is used
// if it implements navigation.ReachabilityChecker; otherwise waypoints are never skipped.
func WithReachability(checker navigation.ReachabilityChecker) Option {
	return func(wn *WaypointsNavigator) {
		wn.reach = checker
	}
}

// WaypointsNavigator executes waypoint plans.
type WaypointsNavigator struct {
	robot      navigation.RobotInterface
	singleGoal navigation.SingleGoalNavigator
	reach      navigation.ReachabilityChecker
	conf       navigation.Config
	clk        clock.Clock
	logger     logging.Logger
	alignLog   *logging.ThrottledLogger

	mu          sync.Mutex
	status      navigation.WaypointStatusSequence
	wasAligning bool

	// lastParams is read by the single goal navigator without taking mu.
	lastParams *atomic.Pointer[navigation.NavigationParams]
}

// New returns a navigator driving robot through singleGoal.
func New(
	robot navigation.RobotInterface,
	singleGoal navigation.SingleGoalNavigator,
	conf navigation.Config,
	logger logging.Logger,
	opts ...Option,
) (*WaypointsNavigator, error) {
	if robot == nil {
		return nil, errors.New("waypoints navigator requires a robot")
	}
	if singleGoal == nil {
		return nil, errors.New("waypoints navigator requires a single goal navigator")
	}
	if _, err := conf.Validate("waypoints_navigator"); err != nil {
		return nil, err
	}
	wn := &WaypointsNavigator{
		robot:      robot,
		singleGoal: singleGoal,
		conf:       conf,
		clk:        clock.New(),
		logger:     logger,
		alignLog:   logging.NewThrottledLogger(logger, alignmentLogInterval),
		status:     navigation.EmptyWaypointStatusSequence(),
		lastParams: atomic.NewPointer[navigation.NavigationParams](nil),
	}
	if checker, ok := robot.(navigation.ReachabilityChecker); ok {
		wn.reach = checker
	}
	for _, opt := range opts {
		opt(wn)
	}
	return wn, nil
}

// NavigateWaypoints replaces the current plan. The first waypoint is dispatched on the next Step.
func (wn *WaypointsNavigator) NavigateWaypoints(ctx context.Context, waypoints []navigation.Waypoint) error {
	if len(waypoints) == 0 {
		return navigation.ErrEmptyWaypointList
	}
	for i, wp := range waypoints {
		if err := wp.Validate(); err != nil {
			return navigation.NewInvalidWaypointError(i, err)
		}
	}

	wn.mu.Lock()
	defer wn.mu.Unlock()
	wn.status = navigation.NewWaypointStatusSequence(waypoints, wn.clk.Now())
	wn.wasAligning = false
	wn.lastParams.Store(nil)
	wn.logger.Infow("new waypoint plan", "plan_id", wn.status.PlanID, "waypoints", len(waypoints))
	return nil
}

// Cancel drops the current plan and cancels the single goal navigator.
func (wn *WaypointsNavigator) Cancel(ctx context.Context) error {
	wn.mu.Lock()
	planID := wn.status.PlanID
	wn.status = navigation.EmptyWaypointStatusSequence()
	wn.wasAligning = false
	wn.lastParams.Store(nil)
	wn.mu.Unlock()

	wn.logger.Infow("waypoint navigation cancelled", "plan_id", planID)
	return errors.Wrap(wn.singleGoal.Cancel(ctx), "cannot cancel single goal navigation")
}

// WaypointNavStatus returns a copy of the current plan progress.
func (wn *WaypointsNavigator) WaypointNavStatus() navigation.WaypointStatusSequence {
	wn.mu.Lock()
	defer wn.mu.Unlock()
	return wn.status.Copy()
}

// CheckHasReachedTarget reports whether the last dispatched target counts as reached at targetDist.
// It is meant for the single goal navigator and never blocks on a running Step.
func (wn *WaypointsNavigator) CheckHasReachedTarget(targetDist float64) bool {
	params := wn.lastParams.Load()
	if params == nil {
		return false
	}
	return params.CheckHasReachedTarget(targetDist)
}

// IsRelativePointReachable reports whether a point in the robot's local frame is reachable.
func (wn *WaypointsNavigator) IsRelativePointReachable(local r3.Vector) bool {
	if wn.reach == nil {
		return false
	}
	return wn.reach.IsLocallyReachable(local)
}

// Step runs one control period: it updates the plan progress, dispatches a new target if the active
// waypoint changed and then steps the single goal navigator unless the robot is aligning in place.
func (wn *WaypointsNavigator) Step(ctx context.Context) error {
	delegate, err := wn.advance(ctx)
	if !delegate {
		return err
	}
	return multierr.Combine(err, wn.singleGoal.Step(ctx))
}

// advance runs the waypoint part of a step under the lock. It returns whether the single goal
// navigator should be stepped afterwards.
func (wn *WaypointsNavigator) advance(ctx context.Context) (bool, error) {
	wn.mu.Lock()
	defer wn.mu.Unlock()

	status := &wn.status
	if !status.Active() {
		wn.wasAligning = false
		return true, nil
	}

	state, err := wn.robot.CurrentPoseAndVelocity(ctx)
	if err != nil {
		return false, errors.Wrap(err, "cannot get current robot pose")
	}
	pose := state.Pose
	prevIndex := status.IndexCurrentGoal

	// the motion segment since the last tick; a single point on the first one
	segStart := pose.Point()
	if status.LastRobotPose != nil {
		segStart = status.LastRobotPose.Point()
	}
	status.LastRobotPose = &pose

	var errs error
	aligning := false
	if status.IndexCurrentGoal >= 0 {
		aligning, err = wn.updateActiveWaypoint(ctx, segStart, pose)
		errs = multierr.Append(errs, err)
	}

	if !status.FinalGoalReached && status.IndexCurrentGoal >= 0 &&
		status.Waypoints[status.IndexCurrentGoal].AllowSkip {
		wn.skipAhead(ctx, pose)
	}

	if status.IndexCurrentGoal < 0 {
		status.IndexCurrentGoal = 0
	}

	if status.IndexCurrentGoal != prevIndex {
		// a skip can move past the waypoint being aligned to
		aligning = false
		errs = multierr.Append(errs, wn.dispatch(ctx))
	}

	wn.wasAligning = aligning
	return !aligning, errs
}

// updateActiveWaypoint checks whether the active waypoint was reached along the segment from
// segStart to the current pose, and advances the plan if so. Must hold mu.
func (wn *WaypointsNavigator) updateActiveWaypoint(
	ctx context.Context,
	segStart r3.Vector,
	pose spatialmath.Pose2D,
) (bool, error) {
	status := &wn.status
	idx := status.IndexCurrentGoal
	wp := &status.Waypoints[idx]

	target := r3.Vector{X: wp.Target.X, Y: wp.Target.Y}
	dist := spatialmath.DistToLineSegment(segStart, pose.Point(), target)
	if dist >= wp.AllowedDistance && !wn.wasAligning {
		return false, nil
	}

	reached, aligning := true, false
	var err error
	if wp.TargetHeading != nil {
		reached, aligning, err = wn.align(ctx, pose, *wp.TargetHeading)
	}
	if !reached {
		return aligning, err
	}

	wn.logger.Debugf("waypoint %d/%d reached. segment-to-target dist: %.3f, allowed dist: %.3f",
		idx+1, len(status.Waypoints), dist, wp.AllowedDistance)
	wp.Reached = true
	wp.Skipped = false
	wp.TimestampReach = wn.clk.Now()
	wn.robot.OnWaypointReached(ctx, idx, true)

	if idx < len(status.Waypoints)-1 {
		status.IndexCurrentGoal++
	} else {
		status.FinalGoalReached = true
		wn.logger.Infow("final waypoint reached", "plan_id", status.PlanID)
	}
	return false, err
}
