package infrared

import (
	"context"
	"testing"
)

var _ RangeSensor = &MockRangeSensor{}

func TestMockRangeSensor_StaticValue(t *testing.T) {
	sensor := NewMockRangeSensor(
		func(ctx context.Context) (int16, error) { return 120, nil },
	)

	distance, err := sensor.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: unexpected error: %v", err)
	}
	if distance != 120 {
		t.Errorf("expected distance 120, got %d", distance)
	}
}

func TestMockRangeSensor_DynamicBehavior(t *testing.T) {
	current := int16(500)
	sensor := NewMockRangeSensor(
		func(ctx context.Context) (int16, error) { current -= 100; return current, nil },
	)

	ctx := context.Background()
	for _, expected := range []int16{400, 300, 200} {
		distance, err := sensor.Read(ctx)
		if err != nil {
			t.Fatalf("Read: unexpected error: %v", err)
		}
		if distance != expected {
			t.Errorf("expected distance %d, got %d", expected, distance)
		}
	}
}

func TestMockRangeSensor_OutOfRange(t *testing.T) {
	sensor := NewMockRangeSensor(
		func(ctx context.Context) (int16, error) { return OutOfRange, ErrOutOfRange },
	)

	distance, err := sensor.Read(context.Background())
	if err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if distance != OutOfRange {
		t.Errorf("expected sentinel %d, got %d", OutOfRange, distance)
	}
}
