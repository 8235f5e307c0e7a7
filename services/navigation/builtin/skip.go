package builtin

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/waypointnav/spatialmath"
)

// skipAhead scans forward from the active waypoint for the farthest one that has been reachable for
// more than MinTimestepsConfirmSkipWaypoints consecutive ticks, and makes it active. The scan does
// not look past a waypoint that cannot be skipped. Waypoints jumped over are marked as skipped. Must
// hold mu.
func (wn *WaypointsNavigator) skipAhead(ctx context.Context, pose spatialmath.Pose2D) {
	status := &wn.status
	start := status.IndexCurrentGoal
	mostAdvanced := start
	maxDist := wn.conf.MaxDistanceToAllowSkipWaypoint

	for idx := start; idx < len(status.Waypoints); idx++ {
		wp := &status.Waypoints[idx]
		if wp.Reached {
			continue
		}
		local := pose.InverseComposePoint(r3.Vector{X: wp.Target.X, Y: wp.Target.Y})
		switch {
		case maxDist > 0 && local.Norm() > maxDist:
			wp.CounterSeenReachable = 0
		case wn.IsRelativePointReachable(local):
			wp.CounterSeenReachable++
			if wp.CounterSeenReachable > wn.conf.MinTimestepsConfirmSkipWaypoints {
				mostAdvanced = idx
			}
		default:
			wp.CounterSeenReachable = 0
		}
		if !wp.AllowSkip {
			break
		}
	}

	if mostAdvanced <= start {
		return
	}
	now := wn.clk.Now()
	for k := start; k < mostAdvanced; k++ {
		wp := &status.Waypoints[k]
		wp.Reached = true
		wp.Skipped = true
		wp.TimestampReach = now
		wn.robot.OnWaypointReached(ctx, k, false)
	}
	wn.logger.Debugf("skipping from waypoint %d to %d", start, mostAdvanced)
	status.IndexCurrentGoal = mostAdvanced
}
