// Package detect turns a per-frame brightness signal into the time segments
// worth keeping.
//
// The stages run strictly forward:
//
//	SampleReader -> Bright -> GroupEvents -> BuildSegments
//
// Everything after the reader is pure and works on in-memory slices. The
// reader itself is single-pass; it wraps the stderr of an ffmpeg
// signalstats run.
package detect
