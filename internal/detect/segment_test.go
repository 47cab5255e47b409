package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func assertSegments(t *testing.T, want, got []Segment) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].Start, got[i].Start, eps, "segment %d start", i)
		assert.InDelta(t, want[i].End, got[i].End, eps, "segment %d end", i)
	}
}

func TestBuildSegmentsSingleStrike(t *testing.T) {
	got := BuildSegments([]Event{{Start: 10.0, End: 10.08}}, 0.5, 1.0)
	assertSegments(t, []Segment{{Start: 9.5, End: 11.08}}, got)
}

func TestBuildSegmentsFarApart(t *testing.T) {
	events := []Event{{Start: 5.0, End: 5.04}, {Start: 20.0, End: 20.04}}
	got := BuildSegments(events, 0.5, 1.0)
	assertSegments(t, []Segment{{Start: 4.5, End: 6.04}, {Start: 19.5, End: 21.04}}, got)
}

func TestBuildSegmentsOverlapMerges(t *testing.T) {
	events := []Event{{Start: 1.0, End: 1.2}, {Start: 3.0, End: 3.2}}
	got := BuildSegments(events, 1.0, 1.0)
	assertSegments(t, []Segment{{Start: 0.0, End: 4.2}}, got)
}

func TestBuildSegmentsTouchingMerges(t *testing.T) {
	// padded windows are [1, 3] and [3, 5]
	events := []Event{{Start: 2, End: 2}, {Start: 4, End: 4}}
	got := BuildSegments(events, 1, 1)
	assert.Equal(t, []Segment{{Start: 1, End: 5}}, got)
}

func TestBuildSegmentsClampsAtZero(t *testing.T) {
	got := BuildSegments([]Event{{Start: 0.2, End: 0.3}}, 1.0, 1.0)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Start)
	assert.InDelta(t, 1.3, got[0].End, eps)
}

func TestBuildSegmentsEmpty(t *testing.T) {
	assert.Empty(t, BuildSegments(nil, 0.5, 1.0))
}

func TestBuildSegmentsUnsortedInputAndTies(t *testing.T) {
	events := []Event{
		{Start: 30, End: 31},
		{Start: 10, End: 12},
		{Start: 10, End: 10.5},
		{Start: 50, End: 50},
	}
	got := BuildSegments(events, 0, 0)
	assert.Equal(t, []Segment{
		{Start: 10, End: 12},
		{Start: 30, End: 31},
		{Start: 50, End: 50},
	}, got)
}

func TestBuildSegmentsNestedWindow(t *testing.T) {
	events := []Event{{Start: 10, End: 20}, {Start: 12, End: 13}}
	got := BuildSegments(events, 0.5, 0.5)
	assert.Equal(t, []Segment{{Start: 9.5, End: 20.5}}, got)
}

func TestBuildSegmentsProperties(t *testing.T) {
	events := []Event{
		{0.1, 0.2}, {0.9, 1.1}, {5, 5}, {5.2, 5.9}, {12, 12.5},
		{12.4, 13}, {40, 41}, {41.9, 42}, {100, 100.04}, {3, 3.5},
	}

	pads := []struct{ pre, post float64 }{{0, 0}, {0.5, 1.0}, {1, 1}, {2.5, 0}, {0, 3}}
	for _, p := range pads {
		segs := BuildSegments(events, p.pre, p.post)
		require.NotEmpty(t, segs)

		for i := 1; i < len(segs); i++ {
			assert.Less(t, segs[i-1].End, segs[i].Start, "segments %d/%d overlap or touch", i-1, i)
		}
		for _, s := range segs {
			assert.LessOrEqual(t, s.Start, s.End)
			assert.GreaterOrEqual(t, s.Start, 0.0)
		}

		// every padded event survives inside some segment
		for _, e := range events {
			padded := Pad(e, p.pre, p.post)
			found := false
			for _, s := range segs {
				if s.Contains(padded.Start, padded.End) {
					found = true
					break
				}
			}
			assert.True(t, found, "event %v lost with pad %+v", e, p)
		}

		// merge is stable on its own output
		assert.Equal(t, segs, BuildSegments(AsEvents(segs), 0, 0))
	}
}

func TestTotalDuration(t *testing.T) {
	segs := []Segment{{Start: 0, End: 1.5}, {Start: 10, End: 12}}
	assert.InDelta(t, 3.5, TotalDuration(segs), eps)
	assert.Zero(t, TotalDuration(nil))
}

func TestPadIgnoresNegativeRoll(t *testing.T) {
	assert.Equal(t, Segment{Start: 2, End: 3}, Pad(Event{Start: 2, End: 3}, -1, -1))
}
