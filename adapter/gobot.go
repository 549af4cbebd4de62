package adapter

import (
	"context"
	"fmt"
	"sync"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/gophertribe/ranging"
)

var _ ranging.I2CBus = &GobotBus{}

// GobotBus bridges a gobot board connector (raspi, nanopi, ...) to the
// ranging bus contract. Gobot hands out one connection per device address,
// so connections are opened lazily and cached.
type GobotBus struct {
	mx        sync.Mutex
	connector i2c.Connector
	busNr     int
	conns     map[byte]i2c.Connection
}

func NewGobotBus(connector i2c.Connector) *GobotBus {
	return &GobotBus{
		connector: connector,
		busNr:     connector.DefaultI2cBus(),
		conns:     make(map[byte]i2c.Connection),
	}
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	n, err := conn.Write(buffer)
	if err != nil {
		return fmt.Errorf("could not write to i2c device %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short write to i2c device %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	n, err := conn.Read(buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c device %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from i2c device %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var firstErr error
	for address, conn := range b.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("could not close connection to %x: %w", address, err)
		}
		delete(b.conns, address)
	}
	return firstErr
}

func (b *GobotBus) connection(address byte) (i2c.Connection, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not get i2c connection to %x: %w", address, err)
	}
	b.conns[address] = conn
	return conn, nil
}
