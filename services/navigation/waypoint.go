package navigation

import (
	"fmt"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"

	"go.viam.com/waypointnav/spatialmath"
	"go.viam.com/waypointnav/utils"
)

// Waypoint is one target of a plan. Only the X and Y of Target are used.
type Waypoint struct {
	Target r3.Vector
	// TargetHeading in radians; nil means any heading is fine.
	TargetHeading   *float64
	AllowedDistance float64
	AllowSkip       bool
	TargetFrameID   string
}

// NewWaypoint returns a skippable waypoint with no heading requirement.
func NewWaypoint(x, y, allowedDistance float64) Waypoint {
	return Waypoint{
		Target:          r3.Vector{X: x, Y: y},
		AllowedDistance: allowedDistance,
		AllowSkip:       true,
	}
}

// NewGeoWaypoint returns a waypoint at point, expressed in the local metric frame centered at origin.
func NewGeoWaypoint(origin, point *geo.Point, allowedDistance float64) Waypoint {
	local := spatialmath.GeoPointToLocal(origin, point)
	return NewWaypoint(local.X, local.Y, allowedDistance)
}

// WithHeading returns a copy of the waypoint that must be reached with the given heading.
func (w Waypoint) WithHeading(heading float64) Waypoint {
	w.TargetHeading = &heading
	return w
}

// Validate returns an error if the waypoint cannot be navigated to.
func (w Waypoint) Validate() error {
	if !utils.IsFinite(w.Target.X, w.Target.Y) {
		return errors.Errorf("target (%v, %v) is not finite", w.Target.X, w.Target.Y)
	}
	if w.TargetHeading != nil && !utils.IsFinite(*w.TargetHeading) {
		return errors.Errorf("target heading %v is not finite", *w.TargetHeading)
	}
	if !utils.IsFinite(w.AllowedDistance) || w.AllowedDistance <= 0 {
		return errors.Errorf("allowed distance must be positive, got %v", w.AllowedDistance)
	}
	return nil
}

// WaypointStatus is the progress of one waypoint.
type WaypointStatus struct {
	Waypoint

	Reached bool
	// Skipped is only meaningful when Reached is set.
	Skipped        bool
	TimestampReach time.Time
	// CounterSeenReachable counts ticks the waypoint was seen reachable by the skip scan.
	CounterSeenReachable int
}

// WaypointStatusSequence is the progress of a whole plan.
type WaypointStatusSequence struct {
	Waypoints []WaypointStatus
	// IndexCurrentGoal is -1 until navigation starts.
	IndexCurrentGoal    int
	FinalGoalReached    bool
	LastRobotPose       *spatialmath.Pose2D
	TimestampNavStarted time.Time
	PlanID              uuid.UUID
}

// NewWaypointStatusSequence returns the initial status of a plan over waypoints.
func NewWaypointStatusSequence(waypoints []Waypoint, started time.Time) WaypointStatusSequence {
	statuses := make([]WaypointStatus, 0, len(waypoints))
	for _, wp := range waypoints {
		if wp.TargetHeading != nil {
			h := *wp.TargetHeading
			wp.TargetHeading = &h
		}
		statuses = append(statuses, WaypointStatus{Waypoint: wp})
	}
	return WaypointStatusSequence{
		Waypoints:           statuses,
		IndexCurrentGoal:    -1,
		TimestampNavStarted: started,
		PlanID:              uuid.New(),
	}
}

// EmptyWaypointStatusSequence is the status when no plan is loaded.
func EmptyWaypointStatusSequence() WaypointStatusSequence {
	return WaypointStatusSequence{IndexCurrentGoal: -1}
}

// Active returns whether there is a plan that still has work to do.
func (s WaypointStatusSequence) Active() bool {
	return len(s.Waypoints) > 0 && !s.FinalGoalReached
}

// Copy returns a deep copy of the sequence.
func (s *WaypointStatusSequence) Copy() WaypointStatusSequence {
	out := *s
	if s.Waypoints != nil {
		out.Waypoints = make([]WaypointStatus, len(s.Waypoints))
		copy(out.Waypoints, s.Waypoints)
		for i := range out.Waypoints {
			if h := out.Waypoints[i].TargetHeading; h != nil {
				hCopy := *h
				out.Waypoints[i].TargetHeading = &hCopy
			}
		}
	}
	if s.LastRobotPose != nil {
		pose := *s.LastRobotPose
		out.LastRobotPose = &pose
	}
	return out
}

// String renders the sequence as a table.
func (s WaypointStatusSequence) String() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("plan %s: current goal %d, final goal reached: %t",
		s.PlanID, s.IndexCurrentGoal, s.FinalGoalReached))
	t.AppendHeader(table.Row{"#", "X", "Y", "Heading (deg)", "Allowed dist", "Skippable", "Status", "Reached at"})
	for i, wp := range s.Waypoints {
		heading := "-"
		if wp.TargetHeading != nil {
			heading = fmt.Sprintf("%.1f", utils.RadToDeg(*wp.TargetHeading))
		}
		status := "pending"
		switch {
		case wp.Skipped:
			status = "skipped"
		case wp.Reached:
			status = "reached"
		case i == s.IndexCurrentGoal:
			status = "active"
		}
		reachedAt := ""
		if wp.Reached && !s.TimestampNavStarted.IsZero() {
			reachedAt = fmt.Sprintf("+%s", wp.TimestampReach.Sub(s.TimestampNavStarted).Round(time.Millisecond))
		}
		t.AppendRow([]interface{}{
			i,
			fmt.Sprintf("%.3f", wp.Target.X),
			fmt.Sprintf("%.3f", wp.Target.Y),
			heading,
			fmt.Sprintf("%.2f", wp.AllowedDistance),
			wp.AllowSkip,
			status,
			reachedAt,
		})
	}
	if s.LastRobotPose != nil {
		t.AppendFooter(table.Row{"", "robot", s.LastRobotPose.String()})
	}
	return t.Render()
}

// headingOrZero returns the heading requirement, or 0 for none.
func (w Waypoint) headingOrZero() float64 {
	if w.TargetHeading == nil {
		return 0
	}
	return *w.TargetHeading
}

// NavigationParams returns the single target command for the waypoint. isFinal selects the slow
// approach and marks the target as non-intermediary.
func (w Waypoint) NavigationParams(isFinal bool) NavigationParams {
	speed := PassThroughSpeed
	if isFinal || w.TargetHeading != nil {
		speed = SlowApproachSpeed
	}
	return NavigationParams{
		Target:                       r3.Vector{X: w.Target.X, Y: w.Target.Y},
		TargetHeading:                w.headingOrZero(),
		TargetFrameID:                w.TargetFrameID,
		TargetAllowedDistance:        w.AllowedDistance,
		TargetIsIntermediaryWaypoint: !isFinal,
		TargetDesiredRelSpeed:        speed,
	}
}
