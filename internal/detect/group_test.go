package detect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupEventsSingleStrike(t *testing.T) {
	events, err := GroupEvents([]float64{10.0, 10.04, 10.08}, 25)
	require.NoError(t, err)
	assert.Equal(t, []Event{{Start: 10.0, End: 10.08}}, events)
}

func TestGroupEventsSeparateStrikes(t *testing.T) {
	events, err := GroupEvents([]float64{5.0, 5.04, 20.0, 20.04}, 25)
	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Start: 5.0, End: 5.04},
		{Start: 20.0, End: 20.04},
	}, events)
}

func TestGroupEventsDegenerate(t *testing.T) {
	events, err := GroupEvents([]float64{3.5}, 30)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, events[0].Start, events[0].End)
	assert.Zero(t, events[0].Duration())
}

func TestGroupEventsEmpty(t *testing.T) {
	events, err := GroupEvents(nil, 25)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGroupEventsGapBoundary(t *testing.T) {
	// maxGap at 10 fps is 0.15s; 0.125 is exact in binary and stays inside it
	events, err := GroupEvents([]float64{1.0, 1.125, 1.25, 1.5}, 10)
	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Start: 1.0, End: 1.25},
		{Start: 1.5, End: 1.5},
	}, events)
}

func TestGroupEventsDuplicates(t *testing.T) {
	events, err := GroupEvents([]float64{2.0, 2.0, 2.04, 2.04}, 25)
	require.NoError(t, err)
	assert.Equal(t, []Event{{Start: 2.0, End: 2.04}}, events)
}

func TestGroupEventsOutOfOrderDoesNotShrink(t *testing.T) {
	events, err := GroupEvents([]float64{1.0, 1.04, 1.02}, 25)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1.04, events[0].End)
	assert.LessOrEqual(t, events[0].Start, events[0].End)
}

func TestGroupEventsBackwardStepExtends(t *testing.T) {
	// any backwards step is within the gap and joins the current event
	events, err := GroupEvents([]float64{5.0, 5.04, 1.0, 9.0}, 25)
	require.NoError(t, err)
	assert.Equal(t, []Event{{Start: 5.0, End: 5.04}, {Start: 9.0, End: 9.0}}, events)
}

func TestGroupEventsInvalidFrameRate(t *testing.T) {
	for _, fps := range []float64{0, -25, math.NaN(), math.Inf(1)} {
		_, err := GroupEvents([]float64{1, 2}, fps)
		assert.ErrorIs(t, err, ErrInvalidFrameRate, "fps %v", fps)
	}
}

func TestGroupEventsGapRule(t *testing.T) {
	// jittered 29.97 fps capture with three bursts
	const fps = 30000.0 / 1001.0
	period := 1 / fps
	var ts []float64
	for _, burst := range []struct {
		at     float64
		frames int
	}{{1.0, 5}, {1.3, 3}, {4.0, 12}} {
		for i := 0; i < burst.frames; i++ {
			jitter := 0.1 * period * float64(i%3-1)
			ts = append(ts, burst.at+float64(i)*period+jitter)
		}
	}

	events, err := GroupEvents(ts, fps)
	require.NoError(t, err)

	maxGap := MaxGap(fps)
	idx := 0
	for i := range ts {
		// locate the event holding ts[i]
		for ts[i] > events[idx].End {
			idx++
		}
		require.GreaterOrEqual(t, ts[i], events[idx].Start)
		if i == 0 {
			continue
		}
		gap := ts[i] - ts[i-1]
		if gap <= maxGap {
			assert.LessOrEqual(t, events[idx].Start, ts[i-1], "gap %v split an event", gap)
		} else {
			assert.Equal(t, ts[i], events[idx].Start, "gap %v did not start a new event", gap)
		}
	}
	assert.Len(t, events, 3)
}
