package infrared

import (
	"context"
	"fmt"

	"github.com/gophertribe/ranging"
	"github.com/gophertribe/ranging/mux"
)

// GP2Y0E02B I2C address (7-bit, datasheet lists 0x80 for the 8-bit form)
const gp2y0e02bAddress = 0x80 >> 1

// Registers
const (
	// Shift Bit register [2:0]: 0x01 = 128cm max range, 0x02 = 64cm max range.
	// The chip boots with whichever mode was burned into its E-Fuse, so the
	// value is read back once instead of assumed.
	regShiftBit = 0x35
	// Distance[11:4]; the next register (0x5F) holds Distance[3:0] and both
	// are returned by a 2-byte read starting here.
	regDistance = 0x5E
)

// MaxRangeMillimeters is the largest distance the sensor reports reliably in
// its calibrated mode. Anything at or above it is out of range.
const MaxRangeMillimeters = 639

// OutOfRange is returned as the distance whenever no usable reading is
// available, for callers that only look at the value.
const OutOfRange = int16(-1)

var ErrOutOfRange = fmt.Errorf("reading out of range")

// RangeSensor is the read surface of a distance sensor, satisfied by
// GP2Y0E02B and by MockRangeSensor.
type RangeSensor interface {
	Read(ctx context.Context) (int16, error)
}

// GP2Y0E02B represents a Sharp GP2Y0E02B infrared distance sensor sitting
// behind a PCA9546 multiplexer channel. All sensors share the same fixed
// address, so every transaction first routes the bus to this sensor's
// channel.
// See: https://global.sharp/products/device/lineup/data/pdf/datasheet/gp2y0e02_03_appl_e.pdf
//
// Typical usage:
//
//	s := NewGP2Y0E02B(bus, selector, 2)
//	if err := s.Calibrate(ctx); err != nil { ... }
//	mm, err := s.Read(ctx)
type GP2Y0E02B struct {
	transport ranging.I2CBus
	selector  *mux.PCA9546
	channel   uint8
	shift     uint8
	buf       []byte
}

// NewGP2Y0E02B creates a sensor bound to the given multiplexer channel
// (0 to mux.ChannelCount-1). The channel is fixed for the sensor's lifetime.
// No bus traffic happens here; construction is safe before the transport is
// usable.
func NewGP2Y0E02B(trans ranging.I2CBus, selector *mux.PCA9546, channel uint8) *GP2Y0E02B {
	return &GP2Y0E02B{
		transport: trans,
		selector:  selector,
		channel:   channel,
		buf:       make([]byte, 2),
	}
}

// Channel returns the multiplexer channel this sensor is bound to.
func (sensor *GP2Y0E02B) Channel() uint8 {
	return sensor.channel
}

// ShiftValue returns the calibration shift read by Calibrate, or zero if
// calibration has not succeeded yet.
func (sensor *GP2Y0E02B) ShiftValue() uint8 {
	return sensor.shift
}

// Calibrate reads the shift-bit register and stores it for distance
// decoding. It must run once before readings are meaningful; running it
// again simply re-reads the register. On failure the shift value keeps its
// previous state and the sensor stays usable, so a transient miss at boot
// does not take the sensor down.
func (sensor *GP2Y0E02B) Calibrate(ctx context.Context) error {
	err := sensor.readRegister(ctx, regShiftBit, sensor.buf[:1])
	if err != nil {
		return fmt.Errorf("gp2y0e02b: could not read shift register: %w", err)
	}
	sensor.shift = sensor.buf[0]
	return nil
}

// Read returns the measured distance in millimeters. It returns OutOfRange
// (-1) with ErrOutOfRange when the reading exceeds the sensor's envelope and
// OutOfRange with the wrapped transport error when the bus transaction
// fails; errors.Is tells the two apart.
func (sensor *GP2Y0E02B) Read(ctx context.Context) (int16, error) {
	err := sensor.readRegister(ctx, regDistance, sensor.buf[:2])
	if err != nil {
		return OutOfRange, fmt.Errorf("gp2y0e02b: could not read distance registers: %w", err)
	}
	distance := decode(sensor.buf[0], sensor.buf[1], sensor.shift)
	if distance == OutOfRange {
		return OutOfRange, ErrOutOfRange
	}
	return distance, nil
}

// readRegister routes the multiplexer to this sensor's channel, writes the
// register address and reads len(buf) bytes back. Every transaction
// reselects the channel because a sibling sensor may have moved it since.
func (sensor *GP2Y0E02B) readRegister(ctx context.Context, register byte, buf []byte) error {
	err := sensor.selector.SelectChannel(ctx, sensor.channel)
	if err != nil {
		return err
	}
	err = sensor.transport.WriteToAddr(ctx, gp2y0e02bAddress, []byte{register})
	if err != nil {
		return fmt.Errorf("could not write register address %#x: %w", register, err)
	}
	err = sensor.transport.ReadFromAddr(ctx, gp2y0e02bAddress, buf)
	if err != nil {
		return fmt.Errorf("could not read register %#x: %w", register, err)
	}
	return nil
}

// decode converts the raw distance registers to millimeters. The sensor
// reports a 12-bit fixed-point value in centimeters with 4 fractional bits:
// high holds Distance[11:4] and low's low nibble holds Distance[3:0]. The
// datasheet formula
//
//	distance(cm) = (high*16 + low) / 16 / 2^shift
//
// collapses to a single shift once the *10 millimeter conversion is folded
// in. Readings at or beyond MaxRangeMillimeters decode to OutOfRange.
func decode(high, low, shift uint8) int16 {
	raw := uint32(high)<<4 | uint32(low)
	distance := raw * 10 >> (4 + uint32(shift))
	if distance >= MaxRangeMillimeters {
		return OutOfRange
	}
	return int16(distance)
}
