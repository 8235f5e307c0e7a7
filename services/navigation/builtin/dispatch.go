package builtin

import (
	"context"

	"github.com/pkg/errors"
)

// dispatch announces the active waypoint and sends it to the single goal navigator. Must hold mu.
func (wn *WaypointsNavigator) dispatch(ctx context.Context) error {
	status := &wn.status
	idx := status.IndexCurrentGoal
	if idx < 0 || idx >= len(status.Waypoints) {
		panic(errors.Errorf("active waypoint index %d out of range for %d waypoints", idx, len(status.Waypoints)))
	}
	isFinal := idx == len(status.Waypoints)-1

	wn.robot.OnNewActiveWaypoint(ctx, idx)
	params := status.Waypoints[idx].NavigationParams(isFinal)
	wn.lastParams.Store(&params)
	err := wn.singleGoal.NavigateTo(ctx, params)

	wn.logger.Debugf("active waypoint changed. current status:\n%s", status.String())
	return errors.Wrapf(err, "cannot navigate to waypoint %d", idx)
}
