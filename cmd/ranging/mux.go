package main

import (
	"github.com/urfave/cli/v2"

	"github.com/gophertribe/ranging/cmd/ranging/console"
	"github.com/gophertribe/ranging/mux"
)

var muxCmd = cli.Command{
	Name: "mux",
	Subcommands: cli.Commands{
		&muxSelectCmd,
	},
}

// muxSelectCmd routes the multiplexer by hand, useful when probing a single
// sensor with external tooling (i2cdetect and friends).
var muxSelectCmd = cli.Command{
	Name: "select",
	Flags: append([]cli.Flag{
		&cli.UintFlag{
			Name:     "channel",
			Aliases:  []string{"c"},
			Required: true,
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
		if c.Uint("channel") >= mux.ChannelCount {
			return console.Exit(1, "channel must be between 0 and %d", mux.ChannelCount-1)
		}
		channel := uint8(c.Uint("channel"))
		selector := mux.NewPCA9546(bus)
		err = selector.SelectChannel(ctx, channel)
		if err != nil {
			return console.Exit(1, "select error: %s", console.Red(err))
		}
		console.PInfof(console.PictoPlug, "channel %s selected", console.White(channel))
		return nil
	},
}
