// Package fake implements a simple go-to-goal single goal navigator for simulation and tests. It has
// no obstacle avoidance.
package fake

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/waypointnav/logging"
	"go.viam.com/waypointnav/services/navigation"
	"go.viam.com/waypointnav/utils"
)

const (
	defaultHeadingGain       = 2.0
	defaultSlowdownDistanceM = 1.0
)

// A TargetChecker decides whether the current target is done given the distance to it.
type TargetChecker interface {
	CheckHasReachedTarget(targetDist float64) bool
}

// Config tunes the navigator.
type Config struct {
	MaxLinearSpeedMPerSec    float64 `json:"max_linear_speed_mps"`
	MaxAngularSpeedRadPerSec float64 `json:"max_angular_speed_radps"`
	HeadingGain              float64 `json:"heading_gain"`
	// SlowdownDistanceM is the distance from the target at which the speed starts dropping to the
	// target's desired relative speed.
	SlowdownDistanceM float64 `json:"slowdown_distance_m"`
}

// SetDefaults fills in the defaults for zero fields.
func (conf *Config) SetDefaults() {
	if conf.HeadingGain <= 0 {
		conf.HeadingGain = defaultHeadingGain
	}
	if conf.SlowdownDistanceM <= 0 {
		conf.SlowdownDistanceM = defaultSlowdownDistanceM
	}
}

// Navigator turns toward its target and drives at it.
type Navigator struct {
	robot  navigation.RobotInterface
	conf   Config
	logger logging.Logger

	mu      sync.Mutex
	target  *navigation.NavigationParams
	checker TargetChecker
}

// NewNavigator returns a navigator driving robot.
func NewNavigator(robot navigation.RobotInterface, conf Config, logger logging.Logger) (*Navigator, error) {
	if conf.MaxLinearSpeedMPerSec <= 0 || conf.MaxAngularSpeedRadPerSec <= 0 {
		return nil, errors.New("navigator speeds must be positive")
	}
	conf.SetDefaults()
	return &Navigator{robot: robot, conf: conf, logger: logger}, nil
}

// SetTargetChecker overrides how the navigator decides its target is done. By default the target's
// own NavigationParams.CheckHasReachedTarget is used.
func (n *Navigator) SetTargetChecker(checker TargetChecker) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.checker = checker
}

// NavigateTo replaces the target.
func (n *Navigator) NavigateTo(ctx context.Context, params navigation.NavigationParams) error {
	if !utils.IsFinite(params.Target.X, params.Target.Y) {
		return errors.Errorf("invalid target %v", params.Target)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = &params
	n.logger.Debugw("new target", "target", params.Target, "intermediary", params.TargetIsIntermediaryWaypoint)
	return nil
}

// Target returns the current target, if any.
func (n *Navigator) Target() (navigation.NavigationParams, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.target == nil {
		return navigation.NavigationParams{}, false
	}
	return *n.target, true
}

// Step steers toward the target, stopping once it is reached.
func (n *Navigator) Step(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.target == nil {
		return nil
	}

	state, err := n.robot.CurrentPoseAndVelocity(ctx)
	if err != nil {
		return err
	}
	local := state.Pose.InverseComposePoint(n.target.Target)
	dist := math.Hypot(local.X, local.Y)

	var reached bool
	if n.checker != nil {
		reached = n.checker.CheckHasReachedTarget(dist)
	} else {
		reached = n.target.CheckHasReachedTarget(dist)
	}
	if reached {
		n.logger.Infof("target (%.2f, %.2f) reached", n.target.Target.X, n.target.Target.Y)
		n.target = nil
		return n.robot.Stop(ctx, false)
	}

	bearing := math.Atan2(local.Y, local.X)
	w := utils.Clamp(n.conf.HeadingGain*bearing, -n.conf.MaxAngularSpeedRadPerSec, n.conf.MaxAngularSpeedRadPerSec)

	relSpeed := utils.Clamp(n.target.TargetDesiredRelSpeed, 0, 1)
	scale := relSpeed + (1-relSpeed)*math.Min(1, dist/n.conf.SlowdownDistanceM)
	v := n.conf.MaxLinearSpeedMPerSec * scale * math.Max(0, math.Cos(bearing))

	cmd := navigation.VelocityCommand{}
	cmd.Linear.X = v
	cmd.Angular.Z = w
	return n.robot.ApplyVelocityCommand(ctx, cmd)
}

// Cancel drops the target and stops the robot.
func (n *Navigator) Cancel(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = nil
	return n.robot.Stop(ctx, false)
}
