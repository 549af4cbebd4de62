package mux

import (
	"context"
	"fmt"

	"github.com/gophertribe/ranging"
)

// PCA9546 I2C address (7-bit, datasheet lists 0xE0 for the 8-bit form)
const pca9546Address = 0xE0 >> 1

// ChannelCount is the number of downstream channels on the PCA9546.
const ChannelCount = 4

// PCA9546 represents an NXP PCA9546A 4-channel I2C multiplexer.
// See: https://www.nxp.com/docs/en/data-sheet/PCA9546A.pdf
//
// The chip routes the upstream bus to whichever channel bit is set in its
// one-byte control register. Exactly one channel is selected at a time so
// that devices sharing a fixed address never respond together.
type PCA9546 struct {
	transport ranging.I2CBus
}

func NewPCA9546(trans ranging.I2CBus) *PCA9546 {
	return &PCA9546{transport: trans}
}

// SelectChannel routes the upstream bus to the given channel by writing the
// control byte 1<<channel. The selection sticks until the next write, so
// repeating the same channel is harmless.
func (m *PCA9546) SelectChannel(ctx context.Context, channel uint8) error {
	if channel >= ChannelCount {
		return fmt.Errorf("pca9546: channel %d out of range (0-%d)", channel, ChannelCount-1)
	}
	err := m.transport.WriteToAddr(ctx, pca9546Address, []byte{1 << channel})
	if err != nil {
		return fmt.Errorf("pca9546: could not select channel %d: %w", channel, err)
	}
	return nil
}
