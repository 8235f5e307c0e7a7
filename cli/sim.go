package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/waypointnav/components/base/fake"
	"go.viam.com/waypointnav/config"
	"go.viam.com/waypointnav/logging"
	"go.viam.com/waypointnav/services/navigation"
	"go.viam.com/waypointnav/services/navigation/builtin"
	fakenav "go.viam.com/waypointnav/services/navigation/fake"
)

func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewBlankLogger("waypointsim")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if !c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.INFO)
	}
	return logger
}

// ValidateAction is the corresponding Action for 'validate'.
func ValidateAction(c *cli.Context) error {
	cfg, err := config.Read(c.Context, c.String(generalFlagConfig), newLogger(c))
	if err != nil {
		return err
	}
	seq := navigation.NewWaypointStatusSequence(cfg.NavigationWaypoints(), time.Time{})
	printf(c.App.Writer, "%s\n", seq.String())
	printf(c.App.Writer, "config %q is valid: %d waypoints at %.1fHz\n", cfg.ConfigFilePath, len(cfg.Waypoints), cfg.FrequencyHz)
	return nil
}

// RunAction is the corresponding Action for 'run'.
func RunAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg, err := config.Read(c.Context, c.String(generalFlagConfig), logger)
	if err != nil {
		return err
	}

	var clk clock.Clock
	if c.Bool(runFlagRealtime) {
		clk = clock.New()
	} else {
		clk = clock.NewMock()
	}
	sim, err := newSimulation(cfg, clk, logger)
	if err != nil {
		return err
	}

	maxTicks := c.Int(runFlagMaxTicks)
	var ticks int
	if mock, ok := clk.(*clock.Mock); ok {
		ticks, err = sim.runFast(c.Context, mock, maxTicks)
	} else {
		ticks, err = sim.runRealtime(c.Context, maxTicks)
	}

	status := sim.nav.WaypointNavStatus()
	printf(c.App.Writer, "%s\n", status.String())
	if c.Bool(runFlagEvents) {
		printf(c.App.Writer, "%s\n", eventsTable(sim.base.Events(), status.TimestampNavStarted))
	}
	if err != nil {
		return err
	}
	printf(c.App.Writer, "plan completed after %d ticks (%s)\n", ticks, time.Duration(ticks)*sim.period)
	return nil
}

type simulation struct {
	base   *fake.Base
	single *fakenav.Navigator
	nav    *builtin.WaypointsNavigator
	clk    clock.Clock
	period time.Duration
	logger logging.Logger

	waypoints []navigation.Waypoint
}

func newSimulation(cfg *config.Config, clk clock.Clock, logger logging.Logger) (*simulation, error) {
	props, err := cfg.RobotProperties()
	if err != nil {
		return nil, err
	}
	navConf, err := cfg.NavigatorConfig()
	if err != nil {
		return nil, err
	}
	singleConf, err := cfg.SingleGoalNavigatorConfig()
	if err != nil {
		return nil, err
	}

	base, err := fake.NewBase(props, clk, logger.Sublogger("base"))
	if err != nil {
		return nil, err
	}
	if singleConf.MaxLinearSpeedMPerSec == 0 {
		singleConf.MaxLinearSpeedMPerSec = base.MaxLinearSpeed()
	}
	if singleConf.MaxAngularSpeedRadPerSec == 0 {
		singleConf.MaxAngularSpeedRadPerSec = base.MaxAngularSpeed()
	}
	single, err := fakenav.NewNavigator(base.Robot(), singleConf, logger.Sublogger("single_goal"))
	if err != nil {
		return nil, err
	}
	nav, err := builtin.New(base.Robot(), single, navConf, logger.Sublogger("waypoints"), builtin.WithClock(clk))
	if err != nil {
		return nil, err
	}
	single.SetTargetChecker(nav)

	return &simulation{
		base:   base,
		single: single,
		nav:    nav,
		clk:    clk,
		period: time.Duration(float64(time.Second) / cfg.FrequencyHz),
		logger: logger,

		waypoints: cfg.NavigationWaypoints(),
	}, nil
}

// Step advances the simulated base by one period and then runs the navigator.
func (s *simulation) Step(ctx context.Context) error {
	s.base.Simulate(s.period)
	return s.nav.Step(ctx)
}

func (s *simulation) done() bool {
	return s.nav.WaypointNavStatus().FinalGoalReached
}

func (s *simulation) runFast(ctx context.Context, mock *clock.Mock, maxTicks int) (int, error) {
	if err := s.nav.NavigateWaypoints(ctx, s.waypoints); err != nil {
		return 0, err
	}
	for i := 1; i <= maxTicks; i++ {
		if err := ctx.Err(); err != nil {
			return i - 1, err
		}
		mock.Add(s.period)
		if err := s.Step(ctx); err != nil {
			return i, err
		}
		if s.done() {
			return i, nil
		}
	}
	return maxTicks, errors.Errorf("plan not completed after %d ticks", maxTicks)
}

func (s *simulation) runRealtime(ctx context.Context, maxTicks int) (ticks int, err error) {
	runner, err := builtin.NewRunner(s, 1/s.period.Seconds(), s.logger.Sublogger("runner"), builtin.WithRunnerClock(s.clk))
	if err != nil {
		return 0, err
	}
	if err := s.nav.NavigateWaypoints(ctx, s.waypoints); err != nil {
		return 0, err
	}
	if err := runner.Start(ctx); err != nil {
		return 0, err
	}
	defer func() {
		runner.Stop()
		err = multierr.Combine(err, s.base.Stop(context.Background(), false))
	}()

	for {
		if !goutils.SelectContextOrWait(ctx, s.period) {
			return int(runner.Ticks()), ctx.Err()
		}
		ticks = int(runner.Ticks())
		if s.done() {
			return ticks, nil
		}
		if ticks >= maxTicks {
			return ticks, errors.Errorf("plan not completed after %d ticks", maxTicks)
		}
	}
}

func eventsTable(events []fake.Event, started time.Time) string {
	t := table.NewWriter()
	t.SetTitle("waypoint events")
	t.AppendHeader(table.Row{"#", "event", "waypoint", "t"})
	for i, ev := range events {
		t.AppendRow(table.Row{i, string(ev.Kind), ev.Index, fmt.Sprintf("+%.1fs", ev.Time.Sub(started).Seconds())})
	}
	return t.Render()
}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format, a...)
}
