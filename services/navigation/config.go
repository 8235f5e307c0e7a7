package navigation

import (
	"math"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/waypointnav/utils"
)

// Defaults used when a key is missing from the configuration.
const (
	DefaultMaxDistanceToAllowSkipWaypoint   = -1.0
	DefaultMinTimestepsConfirmSkipWaypoints = 1
	DefaultWaypointAngleToleranceDegs       = 5.0
)

// Config tunes how a waypoint navigator advances through a plan.
type Config struct {
	// MaxDistanceToAllowSkipWaypoint limits how far (meters, robot frame) the skip scan looks.
	// Values <= 0 mean no limit.
	MaxDistanceToAllowSkipWaypoint float64 `json:"max_distance_to_allow_skip_waypoint"`
	// MinTimestepsConfirmSkipWaypoints is how many ticks a waypoint must be seen reachable, plus one,
	// before the scan may skip to it.
	MinTimestepsConfirmSkipWaypoints int `json:"min_timesteps_confirm_skip_waypoints"`
	// WaypointAngleToleranceDegs is the heading tolerance in degrees.
	WaypointAngleToleranceDegs float64 `json:"waypoint_angle_tolerance_degs"`
}

// DefaultConfig returns a config with every default set.
func DefaultConfig() Config {
	var conf Config
	conf.SetDefaults()
	return conf
}

// SetDefaults sets every field to its default.
func (conf *Config) SetDefaults() {
	conf.MaxDistanceToAllowSkipWaypoint = DefaultMaxDistanceToAllowSkipWaypoint
	conf.MinTimestepsConfirmSkipWaypoints = DefaultMinTimestepsConfirmSkipWaypoints
	conf.WaypointAngleToleranceDegs = DefaultWaypointAngleToleranceDegs
}

// AngleTolerance returns the heading tolerance in radians.
func (conf *Config) AngleTolerance() float64 {
	return utils.DegToRad(conf.WaypointAngleToleranceDegs)
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	if math.IsNaN(conf.MaxDistanceToAllowSkipWaypoint) {
		return nil, goutils.NewConfigValidationError(path,
			errors.New("max_distance_to_allow_skip_waypoint must be a number"))
	}
	if conf.MinTimestepsConfirmSkipWaypoints < 0 {
		return nil, goutils.NewConfigValidationError(path,
			errors.Errorf("min_timesteps_confirm_skip_waypoints must be >= 0, got %d", conf.MinTimestepsConfirmSkipWaypoints))
	}
	if !utils.IsFinite(conf.WaypointAngleToleranceDegs) ||
		conf.WaypointAngleToleranceDegs < 0 || conf.WaypointAngleToleranceDegs >= 180 {
		return nil, goutils.NewConfigValidationError(path,
			errors.Errorf("waypoint_angle_tolerance_degs must be in [0, 180), got %v", conf.WaypointAngleToleranceDegs))
	}
	return nil, nil
}
