// Package fake implements a simulated base that can be driven by the waypoint navigator.
package fake

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/waypointnav/components/base/kinematicbase"
	"go.viam.com/waypointnav/logging"
	"go.viam.com/waypointnav/services/navigation"
	"go.viam.com/waypointnav/spatialmath"
	"go.viam.com/waypointnav/utils"
)

const (
	defaultMaxLinearSpeedMPerSec    = 0.5
	defaultMaxAngularSpeedRadPerSec = 1.0
	// minimum in-place rotation speed so small alignment errors still close
	minAlignSpeedRadPerSec = 0.1
)

// Properties describe a simulated base.
type Properties struct {
	MaxLinearSpeedMPerSec    float64 `json:"max_linear_speed_mps"`
	MaxAngularSpeedRadPerSec float64 `json:"max_angular_speed_radps"`
	// SpinInPlace reports whether the base can rotate without translating.
	SpinInPlace bool `json:"spin_in_place"`
	// Reachability, if set, makes the robot returned by Robot a navigation.ReachabilityChecker.
	Reachability *kinematicbase.Options `json:"reachability,omitempty"`
	StartPose    spatialmath.Pose2D     `json:"start_pose"`
}

// SetDefaults fills in the default speeds.
func (p *Properties) SetDefaults() {
	p.MaxLinearSpeedMPerSec = defaultMaxLinearSpeedMPerSec
	p.MaxAngularSpeedRadPerSec = defaultMaxAngularSpeedRadPerSec
}

// EventKind is the type of a recorded navigation event.
type EventKind string

// Recorded events.
const (
	EventReached   = EventKind("reached")
	EventSkipped   = EventKind("skipped")
	EventNewTarget = EventKind("new_target")
)

// Event is a navigation event received by the base.
type Event struct {
	Kind  EventKind
	Index int
	Time  time.Time
}

// Base is a simulated planar base. Its pose only changes when Simulate is called.
type Base struct {
	props  Properties
	clk    clock.Clock
	logger logging.Logger
	reach  navigation.ReachabilityChecker

	mu     sync.Mutex
	pose   spatialmath.Pose2D
	cmd    navigation.VelocityCommand
	events []Event

	StopCount *atomic.Int64
}

// NewBase returns a simulated base at props.StartPose.
func NewBase(props Properties, clk clock.Clock, logger logging.Logger) (*Base, error) {
	if props.MaxLinearSpeedMPerSec <= 0 || props.MaxAngularSpeedRadPerSec <= 0 {
		return nil, errors.New("fake base speeds must be positive")
	}
	if clk == nil {
		clk = clock.New()
	}
	b := &Base{
		props:     props,
		clk:       clk,
		logger:    logger,
		pose:      spatialmath.NewPose2D(props.StartPose.X, props.StartPose.Y, props.StartPose.Theta),
		StopCount: atomic.NewInt64(0),
	}
	if props.Reachability != nil {
		reach, err := kinematicbase.New(*props.Reachability)
		if err != nil {
			return nil, err
		}
		b.reach = reach
	}
	return b, nil
}

type reachableBase struct {
	*Base
	navigation.ReachabilityChecker
}

// Robot returns the base as a navigation.RobotInterface. When the base was configured with a
// reachability model the result also implements navigation.ReachabilityChecker.
func (b *Base) Robot() navigation.RobotInterface {
	if b.reach == nil {
		return b
	}
	return reachableBase{b, b.reach}
}

// MaxLinearSpeed returns the top speed in m/s.
func (b *Base) MaxLinearSpeed() float64 {
	return b.props.MaxLinearSpeedMPerSec
}

// MaxAngularSpeed returns the top rotation speed in rad/s.
func (b *Base) MaxAngularSpeed() float64 {
	return b.props.MaxAngularSpeedRadPerSec
}

// Simulate integrates the current command over dt.
func (b *Base) Simulate(dt time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	secs := dt.Seconds()
	w := b.cmd.Angular.Z
	// integrate along the mean heading of the step
	mid := b.pose.Theta + w*secs/2
	c, s := math.Cos(mid), math.Sin(mid)
	vx, vy := b.cmd.Linear.X, b.cmd.Linear.Y
	b.pose = spatialmath.NewPose2D(
		b.pose.X+(vx*c-vy*s)*secs,
		b.pose.Y+(vx*s+vy*c)*secs,
		b.pose.Theta+w*secs,
	)
}

// Pose returns the current pose.
func (b *Base) Pose() spatialmath.Pose2D {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pose
}

// CurrentPoseAndVelocity returns the simulated pose and the last applied command.
func (b *Base) CurrentPoseAndVelocity(ctx context.Context) (navigation.PoseAndVelocity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return navigation.PoseAndVelocity{Pose: b.pose, Velocity: b.cmd, Timestamp: b.clk.Now()}, nil
}

// AlignmentCommand returns an in-place rotation toward angErr, or false if the base cannot spin in
// place.
func (b *Base) AlignmentCommand(ctx context.Context, angErr float64) (navigation.VelocityCommand, bool) {
	if !b.props.SpinInPlace {
		return navigation.VelocityCommand{}, false
	}
	maxW := b.props.MaxAngularSpeedRadPerSec
	w := utils.Clamp(angErr, -maxW, maxW)
	if math.Abs(w) < minAlignSpeedRadPerSec {
		w = math.Copysign(math.Min(minAlignSpeedRadPerSec, maxW), angErr)
	}
	return navigation.VelocityCommand{Angular: r3.Vector{Z: w}}, true
}

// ApplyVelocityCommand sets the command, clamped to the base's top speeds.
func (b *Base) ApplyVelocityCommand(ctx context.Context, cmd navigation.VelocityCommand) error {
	if !utils.IsFinite(cmd.Linear.X, cmd.Linear.Y, cmd.Angular.Z) {
		return errors.Errorf("invalid velocity command %+v", cmd)
	}
	maxV, maxW := b.props.MaxLinearSpeedMPerSec, b.props.MaxAngularSpeedRadPerSec
	if norm := math.Hypot(cmd.Linear.X, cmd.Linear.Y); norm > maxV {
		cmd.Linear = cmd.Linear.Mul(maxV / norm)
	}
	cmd.Linear.Z = 0
	cmd.Angular = r3.Vector{Z: utils.Clamp(cmd.Angular.Z, -maxW, maxW)}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cmd = cmd
	return nil
}

// Stop zeroes the command.
func (b *Base) Stop(ctx context.Context, emergency bool) error {
	b.mu.Lock()
	b.cmd = navigation.VelocityCommand{}
	b.mu.Unlock()
	b.StopCount.Inc()
	if emergency {
		b.logger.Warn("emergency stop")
	}
	return nil
}

// OnWaypointReached records a reached or skipped event.
func (b *Base) OnWaypointReached(ctx context.Context, index int, reachedNotSkipped bool) {
	kind := EventReached
	if !reachedNotSkipped {
		kind = EventSkipped
	}
	b.record(kind, index)
	b.logger.Infow("waypoint event", "event", kind, "index", index)
}

// OnNewActiveWaypoint records a new target event.
func (b *Base) OnNewActiveWaypoint(ctx context.Context, index int) {
	b.record(EventNewTarget, index)
	b.logger.Debugw("new active waypoint", "index", index)
}

func (b *Base) record(kind EventKind, index int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, Event{Kind: kind, Index: index, Time: b.clk.Now()})
}

// Events returns a copy of the recorded events.
func (b *Base) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}
