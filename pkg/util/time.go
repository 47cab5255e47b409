package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatDuration converts time.Duration to ffmpeg timestamp format
func FormatDuration(d time.Duration) string {
	seconds := d.Seconds()
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// FormatSeconds formats seconds as an ffmpeg timestamp
func FormatSeconds(seconds float64) string {
	return FormatDuration(Seconds(seconds))
}

// Seconds converts fractional seconds to a time.Duration
func Seconds(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// FormatFloat renders a float with the fewest digits that round-trip.
// Used for filter expressions where exponent notation is not accepted.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseFrameRate parses frame rate from ffprobe format (e.g., "30000/1001").
// A bare number ("25") is accepted as well.
func ParseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "/")

	var fps float64
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frame rate %q: %w", s, err)
		}
		fps = v
	case 2:
		num, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frame rate numerator %q: %w", s, err)
		}
		den, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frame rate denominator %q: %w", s, err)
		}
		if den == 0 {
			return 0, fmt.Errorf("invalid frame rate %q: zero denominator", s)
		}
		fps = num / den
	default:
		return 0, fmt.Errorf("invalid frame rate %q", s)
	}

	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0, fmt.Errorf("invalid frame rate %q: must be positive", s)
	}
	return fps, nil
}
