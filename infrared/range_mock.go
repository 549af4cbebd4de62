package infrared

import (
	"context"
)

// DistanceBehaviorFunc defines the function signature for distance behavior.
// It returns the distance in millimeters or an error.
type DistanceBehaviorFunc func(ctx context.Context) (int16, error)

// MockRangeSensor is a mock implementation of a distance sensor that uses a
// behavior function to produce readings without requiring any hardware.
type MockRangeSensor struct {
	behavior DistanceBehaviorFunc
}

// NewMockRangeSensor creates a new mock range sensor with the given behavior
// function.
//
// Example usage:
//
//	// Static reading
//	sensor := NewMockRangeSensor(
//		func(ctx context.Context) (int16, error) { return 120, nil },
//	)
//
//	// Simulated obstacle approach
//	distance := int16(500)
//	sensor := NewMockRangeSensor(
//		func(ctx context.Context) (int16, error) { distance -= 10; return distance, nil },
//	)
func NewMockRangeSensor(behavior DistanceBehaviorFunc) *MockRangeSensor {
	return &MockRangeSensor{behavior: behavior}
}

// Read returns the distance by calling the behavior function.
func (m *MockRangeSensor) Read(ctx context.Context) (int16, error) {
	return m.behavior(ctx)
}
