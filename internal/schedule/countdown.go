package schedule

import (
	"fmt"
	"time"
)

// Countdown is the time left to a target, truncated to whole seconds.
type Countdown struct {
	Hours   int
	Minutes int
	Seconds int
}

// Remaining returns the time from now until at. A target already in the
// past yields zero.
func Remaining(at, now time.Time) Countdown {
	d := at.Sub(now)
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return Countdown{
		Hours:   int(secs / 3600),
		Minutes: int(secs % 3600 / 60),
		Seconds: int(secs % 60),
	}
}

// Zero reports whether the countdown has run out.
func (c Countdown) Zero() bool {
	return c.Hours == 0 && c.Minutes == 0 && c.Seconds == 0
}

func (c Countdown) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Minutes, c.Seconds)
}
