package detect

import (
	"errors"
	"fmt"
	"math"
)

// GapFrames is how many nominal frame periods may separate two bright
// frames of the same event.
const GapFrames = 1.5

// ErrInvalidFrameRate is returned when the frame rate is not a positive number
var ErrInvalidFrameRate = errors.New("frame rate must be positive")

// Event is one continuous stretch of above-threshold frames
type Event struct {
	Start float64
	End   float64
}

// Duration returns the event length in seconds
func (e Event) Duration() float64 {
	return e.End - e.Start
}

func (e Event) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", e.Start, e.End)
}

// MaxGap returns the largest gap in seconds tolerated inside one event
func MaxGap(frameRate float64) float64 {
	return GapFrames / frameRate
}

// GroupEvents merges ascending bright timestamps into events. Consecutive
// timestamps at most MaxGap(frameRate) apart belong to the same event.
func GroupEvents(timestamps []float64, frameRate float64) ([]Event, error) {
	if !(frameRate > 0) || math.IsInf(frameRate, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFrameRate, frameRate)
	}
	if len(timestamps) == 0 {
		return nil, nil
	}

	maxGap := MaxGap(frameRate)
	events := make([]Event, 0, 8)
	cur := Event{Start: timestamps[0], End: timestamps[0]}

	for i := 1; i < len(timestamps); i++ {
		t, prev := timestamps[i], timestamps[i-1]
		if t-prev <= maxGap {
			// out-of-order input must not shrink the event
			cur.End = math.Max(cur.End, t)
			continue
		}
		events = append(events, cur)
		cur = Event{Start: t, End: t}
	}

	return append(events, cur), nil
}
