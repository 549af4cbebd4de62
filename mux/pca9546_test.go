package mux

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

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

func TestPCA9546_SelectChannel(t *testing.T) {
	for channel := uint8(0); channel < ChannelCount; channel++ {
		t.Run(fmt.Sprintf("channel_%d", channel), func(t *testing.T) {
			bus := &MockI2CBus{}
			bus.On("WriteToAddr", mock.Anything, byte(pca9546Address), []byte{1 << channel}).Return(nil).Once()

			selector := NewPCA9546(bus)
			err := selector.SelectChannel(context.Background(), channel)
			assert.NoError(t, err)
			bus.AssertExpectations(t)
		})
	}
}

func TestPCA9546_SelectChannelOutOfRange(t *testing.T) {
	bus := &MockI2CBus{}
	selector := NewPCA9546(bus)
	err := selector.SelectChannel(context.Background(), ChannelCount)
	assert.Error(t, err)
	bus.AssertNotCalled(t, "WriteToAddr", mock.Anything, mock.Anything, mock.Anything)
}

func TestPCA9546_SelectChannelBusError(t *testing.T) {
	bus := &MockI2CBus{}
	bus.On("WriteToAddr", mock.Anything, byte(pca9546Address), []byte{0x01}).Return(fmt.Errorf("no ack")).Once()

	selector := NewPCA9546(bus)
	err := selector.SelectChannel(context.Background(), 0)
	assert.ErrorContains(t, err, "could not select channel 0")
	bus.AssertExpectations(t)
}

func TestPCA9546_SelectChannelRepeatable(t *testing.T) {
	bus := &MockI2CBus{}
	bus.On("WriteToAddr", mock.Anything, byte(pca9546Address), []byte{0x04}).Return(nil).Twice()

	selector := NewPCA9546(bus)
	assert.NoError(t, selector.SelectChannel(context.Background(), 2))
	assert.NoError(t, selector.SelectChannel(context.Background(), 2))
	bus.AssertExpectations(t)
}
