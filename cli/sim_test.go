package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/waypointnav/components/base/fake"
	"go.viam.com/waypointnav/config"
	"go.viam.com/waypointnav/logging"
)

const squareConfig = "../etc/configs/waypointsim_square.json"

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.Run(append([]string{"waypointsim"}, args...))
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func TestValidateAction(t *testing.T) {
	out, _, err := runApp(t, "validate", "--config", squareConfig)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "4 waypoints at 10.0Hz")
	test.That(t, out, test.ShouldContainSubstring, "pending")
	test.That(t, out, test.ShouldContainSubstring, "180.0")

	bad := writeConfig(t, `{"waypoints": [{"x": 1}]}`)
	_, _, err = runApp(t, "validate", "--config", bad)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"y" is required`)

	_, _, err = runApp(t, "validate")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRunAction(t *testing.T) {
	t.Run("square plan", func(t *testing.T) {
		out, _, err := runApp(t, "run", "--config", squareConfig, "--events")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "final goal reached: true")
		test.That(t, out, test.ShouldContainSubstring, "plan completed after")
		test.That(t, out, test.ShouldContainSubstring, "waypoint events")
		test.That(t, out, test.ShouldContainSubstring, string(fake.EventNewTarget))
		test.That(t, out, test.ShouldNotContainSubstring, "pending")
	})

	t.Run("debug logging", func(t *testing.T) {
		_, logs, err := runApp(t, "--debug", "run", "--config", squareConfig)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, logs, test.ShouldContainSubstring, "final waypoint reached")
		test.That(t, logs, test.ShouldContainSubstring, "reached. segment-to-target dist")

		_, logs, err = runApp(t, "run", "--config", squareConfig)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, logs, test.ShouldContainSubstring, "final waypoint reached")
		test.That(t, logs, test.ShouldNotContainSubstring, "reached. segment-to-target dist")
	})

	t.Run("too few ticks", func(t *testing.T) {
		out, _, err := runApp(t, "run", "--config", squareConfig, "--max-ticks", "5")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "not completed after 5 ticks")
		test.That(t, out, test.ShouldContainSubstring, "final goal reached: false")
	})

	t.Run("realtime", func(t *testing.T) {
		path := writeConfig(t, `{
			"frequency_hz": 100,
			"waypoints": [{"x": 0.05, "y": 0, "allowed_distance_m": 0.5}]
		}`)
		out, _, err := runApp(t, "run", "--config", path, "--realtime")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "final goal reached: true")
	})
}

func TestSimulationSkipsAhead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	cfg, err := config.Read(context.Background(), "../etc/configs/waypointsim_geo.json", logger)
	test.That(t, err, test.ShouldBeNil)

	mock := clock.NewMock()
	sim, err := newSimulation(cfg, mock, logger)
	test.That(t, err, test.ShouldBeNil)
	ticks, err := sim.runFast(context.Background(), mock, defaultMaxTicks)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ticks, test.ShouldBeGreaterThan, 0)

	status := sim.nav.WaypointNavStatus()
	test.That(t, status.FinalGoalReached, test.ShouldBeTrue)
	var skipped int
	for _, wp := range status.Waypoints {
		test.That(t, wp.Reached, test.ShouldBeTrue)
		if wp.Skipped {
			skipped++
		}
	}
	// every intermediate waypoint is in reach from the start
	test.That(t, skipped, test.ShouldEqual, 3)
	test.That(t, status.Waypoints[3].Skipped, test.ShouldBeFalse)
}
