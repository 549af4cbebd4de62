package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/raspi"

	"github.com/gophertribe/ranging"
	"github.com/gophertribe/ranging/adapter"
	"github.com/gophertribe/ranging/i2c"
)

var transportFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Usage:   "bus transport: mcp2221, periph or raspi",
		Value:   "mcp2221",
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Usage:   "i2c device for the periph transport (e.g. /dev/i2c-1)",
		Value:   "",
	},
}

// newBus builds the shared bus handle from the --adapter flag. The handle is
// process-wide; every selector and sensor built by a command shares it.
func newBus(ctx context.Context, c *cli.Context) (ranging.I2CBus, error) {
	switch c.String("adapter") {
	case "mcp2221":
		bridge := adapter.NewMCP2221()
		err := bridge.Init(ctx)
		if err != nil {
			return nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		return bridge, nil
	case "periph":
		bus, err := i2c.NewGenericBus(c.String("device"))
		if err != nil {
			return nil, fmt.Errorf("could not open periph bus: %w", err)
		}
		return bus, nil
	case "raspi":
		adaptor := raspi.NewAdaptor()
		err := adaptor.Connect()
		if err != nil {
			return nil, fmt.Errorf("could not connect to the board: %w", err)
		}
		return adapter.NewGobotBus(adaptor), nil
	default:
		return nil, fmt.Errorf("unknown adapter %q", c.String("adapter"))
	}
}
