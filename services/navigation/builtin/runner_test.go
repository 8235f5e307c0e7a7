package builtin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/waypointnav/logging"
	"go.viam.com/waypointnav/services/navigation"
	"go.viam.com/waypointnav/spatialmath"
	"go.viam.com/waypointnav/testutils/inject"
)

type stepperFunc func(ctx context.Context) error

func (f stepperFunc) Step(ctx context.Context) error {
	return f(ctx)
}

func TestNewRunner(t *testing.T) {
	logger := logging.NewTestLogger(t)
	noop := stepperFunc(func(context.Context) error { return nil })

	for _, hz := range []float64{0, -1, 200.5, 1000} {
		_, err := NewRunner(noop, hz, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "200Hz")
	}

	r, err := NewRunner(noop, 200, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Period(), test.ShouldEqual, 5*time.Millisecond)

	r, err = NewRunner(noop, 4, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Period(), test.ShouldEqual, 250*time.Millisecond)
}

func TestRunner(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	clk := clock.NewMock()
	calls := atomic.NewInt64(0)
	stepper := stepperFunc(func(context.Context) error {
		if calls.Inc()%2 == 0 {
			return errors.New("bad step")
		}
		return nil
	})

	r, err := NewRunner(stepper, 10, logger, WithRunnerClock(clk))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Start(context.Background()), test.ShouldBeNil)
	test.That(t, r.Start(context.Background()), test.ShouldNotBeNil)
	test.That(t, r.Ticks(), test.ShouldEqual, 0)

	for i := int64(1); i <= 3; i++ {
		clk.Add(r.Period())
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			test.That(tb, r.Ticks(), test.ShouldEqual, i)
		})
	}
	test.That(t, logs.FilterMessageSnippet("navigation step failed").Len(), test.ShouldEqual, 1)

	r.Stop()
	r.Stop()
	clk.Add(r.Period())
	test.That(t, r.Ticks(), test.ShouldEqual, 3)
	test.That(t, calls.Load(), test.ShouldEqual, 3)
}

// TestConcurrentAccess exercises a running navigator against concurrent plan changes and status
// reads; it is meant to be run with -race.
func TestConcurrentAccess(t *testing.T) {
	var poseMu sync.Mutex
	x := 0.0
	robot := &inject.RobotInterface{
		CurrentPoseAndVelocityFunc: func(ctx context.Context) (navigation.PoseAndVelocity, error) {
			poseMu.Lock()
			defer poseMu.Unlock()
			x += 0.1
			return navigation.PoseAndVelocity{Pose: spatialmath.NewPose2D(x, 0, 0)}, nil
		},
		OnWaypointReachedFunc:   func(ctx context.Context, index int, reachedNotSkipped bool) {},
		OnNewActiveWaypointFunc: func(ctx context.Context, index int) {},
	}
	var wn *WaypointsNavigator
	single := &inject.SingleGoalNavigator{
		NavigateToFunc: func(ctx context.Context, params navigation.NavigationParams) error {
			// reading back from the navigator while it dispatches must not deadlock
			wn.CheckHasReachedTarget(0)
			return nil
		},
		StepFunc:   func(ctx context.Context) error { return nil },
		CancelFunc: func(ctx context.Context) error { return nil },
	}
	var err error
	wn, err = New(robot, single, navigation.DefaultConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = wn.Step(ctx)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			wps := []navigation.Waypoint{
				navigation.NewWaypoint(float64(i), 0, 0.5),
				navigation.NewWaypoint(float64(i)+1, 0, 0.5),
			}
			test.That(t, wn.NavigateWaypoints(ctx, wps), test.ShouldBeNil)
			if i%10 == 0 {
				test.That(t, wn.Cancel(ctx), test.ShouldBeNil)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			status := wn.WaypointNavStatus()
			if len(status.Waypoints) == 0 {
				test.That(t, status.IndexCurrentGoal, test.ShouldEqual, -1)
			} else {
				test.That(t, status.IndexCurrentGoal, test.ShouldBeLessThan, len(status.Waypoints))
			}
		}
	}()
	wg.Wait()
}
