package console

import (
	"fmt"
	"io"
	"time"

	"github.com/gophertribe/ranging/output"
)

type ConsoleOutput struct {
	w io.Writer
}

func NewConsole(w io.Writer) output.Output {
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) Publish(readings []output.Reading) error {
	for _, r := range readings {
		if !r.Valid {
			_, err := fmt.Fprintf(c.w, "%s %-12s channel=%d no reading\n",
				r.Timestamp.Format(time.RFC3339), r.Position, r.Channel)
			if err != nil {
				return err
			}
			continue
		}
		_, err := fmt.Fprintf(c.w, "%s %-12s channel=%d distance=%dmm\n",
			r.Timestamp.Format(time.RFC3339), r.Position, r.Channel, r.DistanceMM)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
