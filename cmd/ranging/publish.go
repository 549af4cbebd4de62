package main

import (
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gophertribe/ranging/cmd/ranging/console"
	"github.com/gophertribe/ranging/output"
	outconsole "github.com/gophertribe/ranging/output/console"
	"github.com/gophertribe/ranging/output/mqttpub"
)

var publishCmd = cli.Command{
	Name:  "publish",
	Usage: "stream readings to an MQTT broker",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "layout",
			Aliases: []string{"l"},
			Usage:   "sensor layout file",
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Value:   time.Second,
		},
		&cli.StringFlag{Name: "server", Value: mqttpub.DefaultServer},
		&cli.StringFlag{Name: "user"},
		&cli.StringFlag{Name: "password"},
		&cli.StringFlag{Name: "client-id", Value: mqttpub.DefaultClientID},
		&cli.StringFlag{Name: "topic", Value: mqttpub.DefaultTopic},
		&cli.BoolFlag{Name: "echo", Usage: "also print readings to stdout"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	}, transportFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(c.Context, c.Bool("verbose"))
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
		broker, err := mqttpub.NewMQTT(mqttpub.Config{
			Server:   c.String("server"),
			Username: c.String("user"),
			Password: c.String("password"),
			ClientID: c.String("client-id"),
			Topic:    c.String("topic"),
		})
		if err != nil {
			return console.Exit(1, "broker error: %s", console.Red(err))
		}
		defer func() {
			_ = broker.Close()
		}()
		outputs := []output.Output{broker}
		if c.Bool("echo") {
			outputs = append(outputs, outconsole.NewConsole(os.Stdout))
		}
		sensors := buildSensors(bus, l)
		calibrateAll(ctx, sensors)
		console.PInfof(console.PictoAntenna, "publishing to %s every %s", c.String("server"), c.Duration("interval"))
		return watch(ctx, sensors, c.Duration("interval"), outputs...)
	},
}
