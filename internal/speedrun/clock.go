package speedrun

import (
	"fmt"
	"time"
)

// Milliseconds is an elapsed run time. Integer milliseconds keep long runs
// free of floating point drift.
type Milliseconds int64

// Duration converts m to a time.Duration.
func (m Milliseconds) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// String formats m as "mm:ss.mmm", or "h:mm:ss.mmm" once an hour has passed.
func (m Milliseconds) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	ms := int64(m) % 1000
	total := int64(m) / 1000
	s := total % 60
	min := (total / 60) % 60
	h := total / 3600
	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, h, min, s, ms)
	}
	return fmt.Sprintf("%s%02d:%02d.%03d", sign, min, s, ms)
}

// Clock returns the current wall-clock time. Wall time is only used for the
// started/paused/resumed stamps; elapsed time comes from Update deltas.
type Clock func() time.Time

func stamp(m Milliseconds) *Milliseconds {
	return &m
}

func wall(t time.Time) *time.Time {
	return &t
}
