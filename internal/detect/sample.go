package detect

import (
	"bufio"
	"io"
	"iter"
	"regexp"
	"strconv"
)

// maxLineSize bounds a single log line. Lines with many metadata
// entries can exceed bufio's 64 KiB default.
const maxLineSize = 1 << 20

var (
	// sampleLine carries pts_time and the average luma on one line.
	sampleLine = regexp.MustCompile(`pts_time:(\d[\d.]*)\s.*lavfi\.signalstats\.YAVG=([\d.]+)`)

	// The metadata filter prints the timestamp and each key on separate
	// lines; these match the halves.
	ptsLine  = regexp.MustCompile(`pts_time:(\d[\d.]*)`)
	lumaLine = regexp.MustCompile(`lavfi\.signalstats\.YAVG=([\d.]+)`)
)

// Sample is one analyzed frame
type Sample struct {
	Timestamp  float64 // seconds
	Brightness float64 // average luma, 0-255 for 8-bit video
}

// ParseSample extracts a Sample from a single analysis line.
// ok is false for lines that do not carry a reading.
func ParseSample(line string) (s Sample, ok bool) {
	m := sampleLine.FindStringSubmatch(line)
	if m == nil {
		return Sample{}, false
	}

	ts, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Sample{}, false
	}
	y, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Sample{}, false
	}

	return Sample{Timestamp: ts, Brightness: y}, true
}

// SampleReader lazily parses Samples from a line-oriented stream.
// It can be ranged over once.
//
// Both layouts ffmpeg can produce are accepted: a single line holding
// pts_time and YAVG, or a pts_time line followed by a YAVG line.
type SampleReader struct {
	scanner *bufio.Scanner
	lines   int
	skipped int

	pending    float64
	hasPending bool
}

// NewSampleReader wraps r
func NewSampleReader(r io.Reader) *SampleReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &SampleReader{scanner: scanner}
}

// All yields samples until the stream ends. Malformed lines are skipped.
func (sr *SampleReader) All() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for sr.scanner.Scan() {
			sr.lines++
			s, ok := sr.parse(sr.scanner.Text())
			if !ok {
				sr.skipped++
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

func (sr *SampleReader) parse(line string) (Sample, bool) {
	if s, ok := ParseSample(line); ok {
		sr.hasPending = false
		return s, true
	}

	if m := ptsLine.FindStringSubmatch(line); m != nil {
		ts, err := strconv.ParseFloat(m[1], 64)
		sr.pending, sr.hasPending = ts, err == nil
		return Sample{}, false
	}

	if m := lumaLine.FindStringSubmatch(line); m != nil && sr.hasPending {
		sr.hasPending = false
		y, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Sample{}, false
		}
		return Sample{Timestamp: sr.pending, Brightness: y}, true
	}

	return Sample{}, false
}

// Err returns the first read error, if any. io.EOF is not an error.
func (sr *SampleReader) Err() error {
	return sr.scanner.Err()
}

// Lines returns the number of lines read so far
func (sr *SampleReader) Lines() int {
	return sr.lines
}

// Skipped returns the number of lines that carried no sample
func (sr *SampleReader) Skipped() int {
	return sr.skipped
}
