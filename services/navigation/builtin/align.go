package builtin

import (
	"context"
	"math"

	"go.uber.org/multierr"

	"go.viam.com/waypointnav/spatialmath"
	"go.viam.com/waypointnav/utils"
)

// align handles a waypoint that is within reach but has a heading requirement. It returns whether the
// waypoint counts as reached and whether the robot is (still) rotating in place. The stop and
// alignment command are only sent on the first tick of an alignment. Must hold mu.
func (wn *WaypointsNavigator) align(
	ctx context.Context,
	pose spatialmath.Pose2D,
	targetHeading float64,
) (reached, aligning bool, err error) {
	angErr := spatialmath.AngleDistance(pose.Theta, targetHeading)
	if math.Abs(angErr) <= wn.conf.AngleTolerance() {
		return true, false, nil
	}

	if wn.wasAligning {
		wn.alignLog.Infof("waiting for the robot to get aligned: current heading=%.2f deg target heading=%.2f deg",
			utils.RadToDeg(pose.Theta), utils.RadToDeg(targetHeading))
		return false, true, nil
	}

	err = wn.robot.Stop(ctx, false)
	cmd, ok := wn.robot.AlignmentCommand(ctx, angErr)
	if !ok {
		wn.logger.Infof("robot cannot rotate in place to heading %.2f deg (relative %.2f deg), considering waypoint reached",
			utils.RadToDeg(targetHeading), utils.RadToDeg(angErr))
		return true, false, err
	}
	wn.logger.Infof("trying to align to heading %.2f deg, relative heading %.2f deg, with command %+v",
		utils.RadToDeg(targetHeading), utils.RadToDeg(angErr), cmd)
	err = multierr.Append(err, wn.robot.ApplyVelocityCommand(ctx, cmd))
	return false, true, err
}
