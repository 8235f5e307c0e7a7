package navigation

import "github.com/pkg/errors"

// ErrEmptyWaypointList is returned when a plan with no waypoints is submitted.
var ErrEmptyWaypointList = errors.New("waypoint list is empty")

// NewInvalidWaypointError returns an error for the waypoint at index.
func NewInvalidWaypointError(index int, err error) error {
	return errors.Wrapf(err, "waypoint %d is invalid", index)
}
