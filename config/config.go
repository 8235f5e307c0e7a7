// Package config reads waypoint simulation configuration files.
package config

import (
	"fmt"

	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/waypointnav/components/base/fake"
	"go.viam.com/waypointnav/services/navigation"
	fakenav "go.viam.com/waypointnav/services/navigation/fake"
	"go.viam.com/waypointnav/utils"
)

// DefaultFrequencyHz is the control rate used when none is configured.
const DefaultFrequencyHz = 10.0

// Config describes a robot, a navigator and a waypoint plan.
type Config struct {
	ConfigFilePath string `json:"-"`

	WaypointsNavigator  utils.AttributeMap `json:"waypoints_navigator,omitempty"`
	SingleGoalNavigator utils.AttributeMap `json:"single_goal_navigator,omitempty"`
	Robot               utils.AttributeMap `json:"robot,omitempty"`
	FrequencyHz         float64            `json:"frequency_hz,omitempty"`
	GeoOrigin           *GeoPoint          `json:"geo_origin,omitempty"`
	Waypoints           []WaypointConfig   `json:"waypoints"`
}

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point returns the point as a golang-geo point.
func (p GeoPoint) Point() *geo.Point {
	return geo.NewPoint(p.Lat, p.Lng)
}

// WaypointConfig is one waypoint, either in local meters (x, y) or in degrees (lat, lng) relative
// to the config's geo origin.
type WaypointConfig struct {
	X   *float64 `json:"x,omitempty"`
	Y   *float64 `json:"y,omitempty"`
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`

	HeadingDegs      *float64 `json:"heading_degs,omitempty"`
	AllowedDistanceM float64  `json:"allowed_distance_m"`
	// AllowSkip defaults to true.
	AllowSkip *bool  `json:"allow_skip,omitempty"`
	FrameID   string `json:"frame_id,omitempty"`
}

func (wc *WaypointConfig) isGeo() bool {
	return wc.Lat != nil || wc.Lng != nil
}

// Validate ensures all parts of the waypoint are valid.
func (wc *WaypointConfig) Validate(path string, hasGeoOrigin bool) error {
	switch {
	case wc.isGeo() && (wc.X != nil || wc.Y != nil):
		return goutils.NewConfigValidationError(path, errors.New("use either x/y or lat/lng, not both"))
	case wc.isGeo():
		if wc.Lat == nil {
			return goutils.NewConfigValidationFieldRequiredError(path, "lat")
		}
		if wc.Lng == nil {
			return goutils.NewConfigValidationFieldRequiredError(path, "lng")
		}
		if !hasGeoOrigin {
			return goutils.NewConfigValidationError(path, errors.New("lat/lng waypoints need a geo_origin"))
		}
	default:
		if wc.X == nil {
			return goutils.NewConfigValidationFieldRequiredError(path, "x")
		}
		if wc.Y == nil {
			return goutils.NewConfigValidationFieldRequiredError(path, "y")
		}
	}
	if wc.AllowedDistanceM <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "allowed_distance_m")
	}
	return nil
}

// Waypoint converts the config into a navigation waypoint. origin may be nil for x/y waypoints.
func (wc *WaypointConfig) Waypoint(origin *geo.Point) navigation.Waypoint {
	var wp navigation.Waypoint
	if wc.isGeo() {
		wp = navigation.NewGeoWaypoint(origin, geo.NewPoint(*wc.Lat, *wc.Lng), wc.AllowedDistanceM)
	} else {
		wp = navigation.NewWaypoint(*wc.X, *wc.Y, wc.AllowedDistanceM)
	}
	if wc.HeadingDegs != nil {
		wp = wp.WithHeading(utils.DegToRad(*wc.HeadingDegs))
	}
	if wc.AllowSkip != nil {
		wp.AllowSkip = *wc.AllowSkip
	}
	wp.TargetFrameID = wc.FrameID
	return wp
}

// Ensure fills in defaults and validates the config.
func (c *Config) Ensure() error {
	if c.FrequencyHz == 0 {
		c.FrequencyHz = DefaultFrequencyHz
	}
	if !(c.FrequencyHz > 0) || c.FrequencyHz > 200 {
		return goutils.NewConfigValidationError("frequency_hz", errors.New("loop frequency shouldn't be 0 or above 200Hz"))
	}
	if len(c.Waypoints) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(c.ConfigFilePath, "waypoints")
	}
	for i := range c.Waypoints {
		if err := c.Waypoints[i].Validate(fmt.Sprintf("waypoints.%d", i), c.GeoOrigin != nil); err != nil {
			return err
		}
	}
	if _, err := c.NavigatorConfig(); err != nil {
		return err
	}
	if _, err := c.RobotProperties(); err != nil {
		return err
	}
	_, err := c.SingleGoalNavigatorConfig()
	return err
}

// NavigatorConfig decodes the waypoints_navigator section.
func (c *Config) NavigatorConfig() (navigation.Config, error) {
	conf, err := utils.TransformAttributeMap[*navigation.Config](c.WaypointsNavigator)
	if err != nil {
		return navigation.Config{}, goutils.NewConfigValidationError("waypoints_navigator", err)
	}
	if _, err := conf.Validate("waypoints_navigator"); err != nil {
		return navigation.Config{}, err
	}
	return *conf, nil
}

// RobotProperties decodes the robot section.
func (c *Config) RobotProperties() (fake.Properties, error) {
	props, err := utils.TransformAttributeMap[*fake.Properties](c.Robot)
	if err != nil {
		return fake.Properties{}, goutils.NewConfigValidationError("robot", err)
	}
	return *props, nil
}

// SingleGoalNavigatorConfig decodes the single_goal_navigator section.
func (c *Config) SingleGoalNavigatorConfig() (fakenav.Config, error) {
	conf, err := utils.TransformAttributeMap[*fakenav.Config](c.SingleGoalNavigator)
	if err != nil {
		return fakenav.Config{}, goutils.NewConfigValidationError("single_goal_navigator", err)
	}
	return *conf, nil
}

// NavigationWaypoints converts every configured waypoint.
func (c *Config) NavigationWaypoints() []navigation.Waypoint {
	var origin *geo.Point
	if c.GeoOrigin != nil {
		origin = c.GeoOrigin.Point()
	}
	wps := make([]navigation.Waypoint, 0, len(c.Waypoints))
	for i := range c.Waypoints {
		wps = append(wps, c.Waypoints[i].Waypoint(origin))
	}
	return wps
}
