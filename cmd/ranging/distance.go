package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gophertribe/ranging"
	"github.com/gophertribe/ranging/cmd/ranging/console"
	"github.com/gophertribe/ranging/infrared"
	"github.com/gophertribe/ranging/layout"
	"github.com/gophertribe/ranging/mux"
	"github.com/gophertribe/ranging/output"
	outconsole "github.com/gophertribe/ranging/output/console"
)

var distanceCmd = cli.Command{
	Name:    "distance",
	Aliases: []string{"dist"},
	Subcommands: cli.Commands{
		&distanceReadCmd,
		&distanceWatchCmd,
	},
}

var distanceReadCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "layout",
			Aliases: []string{"l"},
			Usage:   "sensor layout file (defaults to the built-in four-sensor layout)",
		},
		&cli.StringFlag{
			Name:    "position",
			Aliases: []string{"p"},
			Usage:   "read a single position (left, right, front-left, front-right)",
		},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	}, transportFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(c.Context, c.Bool("verbose"))
		bus, err := newBus(ctx, c)
		if err != nil {
			return console.Exit(1, "transport error: %s", console.Red(err))
		}
		defer func() {
			_ = bus.Release(ctx)
		}()
		l, err := commandLayout(c)
		if err != nil {
			return console.Exit(1, "layout error: %s", console.Red(err))
		}
		if pos := c.String("position"); pos != "" {
			placement, ok := l.Find(layout.Position(pos))
			if !ok {
				return console.Exit(1, "no sensor at position %s", console.Red(pos))
			}
			l = layout.Layout{Sensors: []layout.Sensor{placement}}
		}
		sensors := buildSensors(bus, l)
		calibrateAll(ctx, sensors)
		for _, r := range takeReadings(ctx, sensors) {
			if !r.Valid {
				console.PInfof(console.PictoStop, "%-12s no reading", r.Position)
				continue
			}
			console.PInfof(console.PictoRuler, "%-12s %s mm", r.Position, console.White(r.DistanceMM))
		}
		return nil
	},
}

var distanceWatchCmd = cli.Command{
	Name: "watch",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "layout",
			Aliases: []string{"l"},
			Usage:   "sensor layout file",
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Value:   500 * time.Millisecond,
		},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	}, transportFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(c.Context, c.Bool("verbose"))
		if c.String("layout") == "" {
			answer, err := console.YesOrNo("no layout file given, watch the default four-sensor layout?")
			if err != nil {
				return err
			}
			if answer == console.No {
				return nil
			}
		}
		l, err := commandLayout(c)
		if err != nil {
			return console.Exit(1, "layout error: %s", console.Red(err))
		}
		bus, err := newBus(ctx, c)
		if err != nil {
			return console.Exit(1, "transport error: %s", console.Red(err))
		}
		defer func() {
			_ = bus.Release(ctx)
		}()
		sensors := buildSensors(bus, l)
		calibrateAll(ctx, sensors)
		return watch(ctx, sensors, c.Duration("interval"), outconsole.NewConsole(os.Stdout))
	},
}

type mountedSensor struct {
	placement layout.Sensor
	sensor    *infrared.GP2Y0E02B
}

func commandLayout(c *cli.Context) (layout.Layout, error) {
	if path := c.String("layout"); path != "" {
		return layout.Load(path)
	}
	return layout.Default(), nil
}

func buildSensors(bus ranging.I2CBus, l layout.Layout) []mountedSensor {
	selector := mux.NewPCA9546(bus)
	sensors := make([]mountedSensor, 0, len(l.Sensors))
	for _, placement := range l.Sensors {
		sensors = append(sensors, mountedSensor{
			placement: placement,
			sensor:    infrared.NewGP2Y0E02B(bus, selector, placement.Channel),
		})
	}
	return sensors
}

// calibrateAll reads the shift register of every sensor. A failed
// calibration is logged and the sensor kept; it will read with its default
// shift until a later calibration succeeds.
func calibrateAll(ctx context.Context, sensors []mountedSensor) {
	for _, s := range sensors {
		if err := s.sensor.Calibrate(ctx); err != nil {
			slog.Warn("sensor calibration failed", "position", s.placement.Position, "error", err)
		}
	}
}

// takeReadings performs one measurement cycle over all sensors, in layout
// order so the shared bus is never used concurrently.
func takeReadings(ctx context.Context, sensors []mountedSensor) []output.Reading {
	readings := make([]output.Reading, 0, len(sensors))
	for _, s := range sensors {
		distance, err := s.sensor.Read(ctx)
		if err != nil && !errors.Is(err, infrared.ErrOutOfRange) {
			slog.Warn("sensor read failed", "position", s.placement.Position, "error", err)
		}
		readings = append(readings, output.Reading{
			Position:   s.placement.Position,
			Channel:    s.placement.Channel,
			DistanceMM: distance,
			Valid:      err == nil,
			Timestamp:  time.Now(),
		})
	}
	return readings
}

func watch(ctx context.Context, sensors []mountedSensor, interval time.Duration, outputs ...output.Output) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		readings := takeReadings(ctx, sensors)
		if console.IsVerbose(ctx) {
			slog.Debug("measurement cycle complete", "readings", len(readings))
		}
		for _, out := range outputs {
			if err := out.Publish(readings); err != nil {
				return fmt.Errorf("could not publish readings: %w", err)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
