package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gophertribe/ranging/mux"
)

// Position names a sensor mounting point on the robot.
type Position string

const (
	PositionLeft       Position = "left"
	PositionRight      Position = "right"
	PositionFrontLeft  Position = "front-left"
	PositionFrontRight Position = "front-right"
)

// Sensor describes one mounted range sensor: which multiplexer channel it
// hangs off and how far in front of the robot's centre it sits. The offset
// lets callers convert sensor-relative readings to centre-relative ones.
type Sensor struct {
	Position        Position `yaml:"position"`
	Channel         uint8    `yaml:"channel"`
	ForwardOffsetMM int16    `yaml:"forward_offset_mm"`
}

type Layout struct {
	Sensors []Sensor `yaml:"sensors"`
}

// Default returns the reference four-sensor arrangement: side sensors 85mm
// and front sensors 64mm ahead of the robot centre.
func Default() Layout {
	return Layout{
		Sensors: []Sensor{
			{Position: PositionLeft, Channel: 0, ForwardOffsetMM: 85},
			{Position: PositionRight, Channel: 1, ForwardOffsetMM: 85},
			{Position: PositionFrontLeft, Channel: 2, ForwardOffsetMM: 64},
			{Position: PositionFrontRight, Channel: 3, ForwardOffsetMM: 64},
		},
	}
}

// Load reads a layout from a YAML file and validates it.
func Load(path string) (Layout, error) {
	var l Layout
	raw, err := os.ReadFile(path)
	if err != nil {
		return l, fmt.Errorf("could not read layout file: %w", err)
	}
	err = yaml.Unmarshal(raw, &l)
	if err != nil {
		return l, fmt.Errorf("could not parse layout file: %w", err)
	}
	err = l.Validate()
	if err != nil {
		return l, fmt.Errorf("invalid layout in %s: %w", path, err)
	}
	return l, nil
}

// Validate checks that every sensor names a position and that channels are
// unique and addressable by the multiplexer.
func (l Layout) Validate() error {
	if len(l.Sensors) == 0 {
		return fmt.Errorf("no sensors defined")
	}
	seen := make(map[uint8]Position, len(l.Sensors))
	for _, s := range l.Sensors {
		if s.Position == "" {
			return fmt.Errorf("sensor on channel %d has no position", s.Channel)
		}
		if s.Channel >= mux.ChannelCount {
			return fmt.Errorf("sensor %q: channel %d out of range (0-%d)", s.Position, s.Channel, mux.ChannelCount-1)
		}
		if other, ok := seen[s.Channel]; ok {
			return fmt.Errorf("sensors %q and %q share channel %d", other, s.Position, s.Channel)
		}
		seen[s.Channel] = s.Position
	}
	return nil
}

// Find returns the sensor mounted at the given position.
func (l Layout) Find(position Position) (Sensor, bool) {
	for _, s := range l.Sensors {
		if s.Position == position {
			return s, true
		}
	}
	return Sensor{}, false
}
