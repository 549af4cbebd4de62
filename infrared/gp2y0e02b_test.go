package infrared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gophertribe/ranging/mux"
)

const muxAddress = 0xE0 >> 1

// MockI2CBus is a mock implementation of ranging.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestGP2Y0E02B_Decode(t *testing.T) {
	tests := []struct {
		high     uint8
		low      uint8
		shift    uint8
		expected int16
	}{
		{0x00, 0x00, 0, 0},
		// raw=16, (16*10)>>6 = 2mm
		{0x01, 0x00, 2, 2},
		// raw=1021, (1021*10)>>4 = 638mm, last value inside the envelope
		{0x3F, 0x0D, 0, 638},
		// raw=1023, (1023*10)>>4 = 639mm, out of range
		{0x3F, 0x0F, 0, OutOfRange},
		// raw=1024, (1024*10)>>4 = 640mm
		{0x40, 0x00, 0, OutOfRange},
		// raw=1024, (1024*10)>>5 = 320mm in 128cm mode
		{0x40, 0x00, 1, 320},
		// saturated reading
		{0xFF, 0x0F, 0, OutOfRange},
		{0xFF, 0x0F, 2, OutOfRange},
		// 64cm mode halves the decoded value once more
		{0x20, 0x00, 2, 80},
		{0x20, 0x00, 1, 160},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%02x%02x_shift%d", test.high, test.low, test.shift), func(t *testing.T) {
			assert.Equal(t, test.expected, decode(test.high, test.low, test.shift))
		})
	}
}

func TestGP2Y0E02B_CalibrateReadsShiftRegister(t *testing.T) {
	bus := &MockI2CBus{}
	bus.On("WriteToAddr", mock.Anything, byte(muxAddress), []byte{0x04}).Return(nil)
	bus.On("WriteToAddr", mock.Anything, byte(gp2y0e02bAddress), []byte{regShiftBit}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(gp2y0e02bAddress), mock.Anything).Return([]byte{0x02}, nil).Once()

	sensor := NewGP2Y0E02B(bus, mux.NewPCA9546(bus), 2)
	assert.NoError(t, sensor.Calibrate(context.Background()))
	assert.Equal(t, uint8(0x02), sensor.ShiftValue())
	bus.AssertExpectations(t)
}

func TestGP2Y0E02B_ReadAfterCalibration(t *testing.T) {
	bus := &MockI2CBus{}
	bus.On("WriteToAddr", mock.Anything, byte(muxAddress), []byte{0x04}).Return(nil)
	bus.On("WriteToAddr", mock.Anything, byte(gp2y0e02bAddress), []byte{regShiftBit}).Return(nil)
	bus.On("ReadFromAddr", mock.Anything, byte(gp2y0e02bAddress), mock.MatchedBy(func(buf []byte) bool {
		return len(buf) == 1
	})).Return([]byte{0x02}, nil)
	bus.On("WriteToAddr", mock.Anything, byte(gp2y0e02bAddress), []byte{regDistance}).Return(nil)
	bus.On("ReadFromAddr", mock.Anything, byte(gp2y0e02bAddress), mock.MatchedBy(func(buf []byte) bool {
		return len(buf) == 2
	})).Return([]byte{0x01, 0x00}, nil)

	sensor := NewGP2Y0E02B(bus, mux.NewPCA9546(bus), 2)
	assert.NoError(t, sensor.Calibrate(context.Background()))

	distance, err := sensor.Read(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int16(2), distance)

	// unchanged hardware state yields the same reading
	distance, err = sensor.Read(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int16(2), distance)
}

func TestGP2Y0E02B_ReadOutOfRange(t *testing.T) {
	bus := &MockI2CBus{}
	bus.On("WriteToAddr", mock.Anything, byte(muxAddress), []byte{0x01}).Return(nil)
	bus.On("WriteToAddr", mock.Anything, byte(gp2y0e02bAddress), []byte{regDistance}).Return(nil)
	bus.On("ReadFromAddr", mock.Anything, byte(gp2y0e02bAddress), mock.Anything).Return([]byte{0xFF, 0x0F}, nil)

	sensor := NewGP2Y0E02B(bus, mux.NewPCA9546(bus), 0)
	distance, err := sensor.Read(context.Background())
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, OutOfRange, distance)
}

func TestGP2Y0E02B_ReadBusFailure(t *testing.T) {
	bus := &MockI2CBus{}
	bus.On("WriteToAddr", mock.Anything, byte(muxAddress), []byte{0x02}).Return(nil)
	bus.On("WriteToAddr", mock.Anything, byte(gp2y0e02bAddress), []byte{regDistance}).Return(nil)
	bus.On("ReadFromAddr", mock.Anything, byte(gp2y0e02bAddress), mock.Anything).Return(nil, fmt.Errorf("short read: got 1 of 2 bytes"))

	sensor := NewGP2Y0E02B(bus, mux.NewPCA9546(bus), 1)
	distance, err := sensor.Read(context.Background())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrOutOfRange))
	assert.Equal(t, OutOfRange, distance)
}

func TestGP2Y0E02B_CalibrationFailureKeepsDefaultShift(t *testing.T) {
	bus := &MockI2CBus{}
	bus.On("WriteToAddr", mock.Anything, byte(muxAddress), []byte{0x08}).Return(nil)
	bus.On("WriteToAddr", mock.Anything, byte(gp2y0e02bAddress), []byte{regShiftBit}).Return(nil)
	bus.On("ReadFromAddr", mock.Anything, byte(gp2y0e02bAddress), mock.MatchedBy(func(buf []byte) bool {
		return len(buf) == 1
	})).Return(nil, fmt.Errorf("no byte available"))
	bus.On("WriteToAddr", mock.Anything, byte(gp2y0e02bAddress), []byte{regDistance}).Return(nil)
	bus.On("ReadFromAddr", mock.Anything, byte(gp2y0e02bAddress), mock.MatchedBy(func(buf []byte) bool {
		return len(buf) == 2
	})).Return([]byte{0x01, 0x00}, nil)

	sensor := NewGP2Y0E02B(bus, mux.NewPCA9546(bus), 3)
	err := sensor.Calibrate(context.Background())
	assert.Error(t, err)
	assert.Equal(t, uint8(0), sensor.ShiftValue())

	// sensor keeps working with the default shift, raw=16 decodes to 10mm
	distance, err := sensor.Read(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int16(10), distance)
}

func TestGP2Y0E02B_ReselectsChannelOnEveryRead(t *testing.T) {
	bus := &MockI2CBus{}
	bus.On("WriteToAddr", mock.Anything, byte(muxAddress), []byte{0x02}).Return(nil).Times(3)
	bus.On("WriteToAddr", mock.Anything, byte(gp2y0e02bAddress), mock.Anything).Return(nil)
	bus.On("ReadFromAddr", mock.Anything, byte(gp2y0e02bAddress), mock.MatchedBy(func(buf []byte) bool {
		return len(buf) == 1
	})).Return([]byte{0x00}, nil)
	bus.On("ReadFromAddr", mock.Anything, byte(gp2y0e02bAddress), mock.MatchedBy(func(buf []byte) bool {
		return len(buf) == 2
	})).Return([]byte{0x02, 0x00}, nil)

	sensor := NewGP2Y0E02B(bus, mux.NewPCA9546(bus), 1)
	assert.NoError(t, sensor.Calibrate(context.Background()))
	_, err := sensor.Read(context.Background())
	assert.NoError(t, err)
	_, err = sensor.Read(context.Background())
	assert.NoError(t, err)
	bus.AssertExpectations(t)
}
