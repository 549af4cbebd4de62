package output

import (
	"time"

	"github.com/gophertribe/ranging/layout"
)

// Reading is one distance measurement taken from a mounted sensor. Valid is
// false when the cycle produced no usable reading (out of range or bus
// failure), in which case DistanceMM is -1.
type Reading struct {
	Position   layout.Position `json:"position"`
	Channel    uint8           `json:"channel"`
	DistanceMM int16           `json:"distance_mm"`
	Valid      bool            `json:"valid"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Output receives batches of readings, one batch per measurement cycle.
type Output interface {
	Publish([]Reading) error
	Close() error
}
