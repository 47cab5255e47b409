package detect

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Segment is a padded, merged time window kept in the output
type Segment struct {
	Start float64
	End   float64
}

// Duration returns the segment length in seconds
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Contains reports whether [start, end] lies entirely inside s
func (s Segment) Contains(start, end float64) bool {
	return s.Start <= start && end <= s.End
}

func (s Segment) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", s.Start, s.End)
}

// Pad widens an event by preRoll/postRoll seconds. The start never goes
// below zero.
func Pad(e Event, preRoll, postRoll float64) Segment {
	preRoll = math.Max(0, preRoll)
	postRoll = math.Max(0, postRoll)
	return Segment{
		Start: math.Max(0, e.Start-preRoll),
		End:   e.End + postRoll,
	}
}

// BuildSegments pads every event and merges the results into a sorted list
// of disjoint segments. Windows that touch (next start == current end) are
// merged.
func BuildSegments(events []Event, preRoll, postRoll float64) []Segment {
	if len(events) == 0 {
		return nil
	}

	candidates := make([]Segment, len(events))
	for i, e := range events {
		candidates[i] = Pad(e, preRoll, postRoll)
	}

	slices.SortStableFunc(candidates, func(a, b Segment) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	return mergeSorted(candidates)
}

// mergeSorted sweeps candidates ordered by start
func mergeSorted(candidates []Segment) []Segment {
	merged := make([]Segment, 0, len(candidates))
	cur := candidates[0]

	for _, next := range candidates[1:] {
		if next.Start <= cur.End {
			cur.End = math.Max(cur.End, next.End)
			continue
		}
		merged = append(merged, cur)
		cur = next
	}

	return append(merged, cur)
}

// TotalDuration sums the length of all segments
func TotalDuration(segments []Segment) float64 {
	var total float64
	for _, s := range segments {
		total += s.Duration()
	}
	return total
}

// AsEvents converts segments back to events, e.g. to re-run BuildSegments
func AsEvents(segments []Segment) []Event {
	events := make([]Event, len(segments))
	for i, s := range segments {
		events[i] = Event(s)
	}
	return events
}
