package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/keagan/lightningtrim/internal/detect"
	"github.com/keagan/lightningtrim/pkg/util"
)

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	input   string
	output  string
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// From labels the chain input, e.g. "0:v"
func (fb *FilterBuilder) From(label string) *FilterBuilder {
	fb.input = label
	return fb
}

// To labels the chain output, e.g. "v"
func (fb *FilterBuilder) To(label string) *FilterBuilder {
	fb.output = label
	return fb
}

// Select keeps video frames for which expr is non-zero
func (fb *FilterBuilder) Select(expr string) *FilterBuilder {
	if expr == "" {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("select='%s'", expr))
	return fb
}

// ASelect keeps audio frames for which expr is non-zero
func (fb *FilterBuilder) ASelect(expr string) *FilterBuilder {
	if expr == "" {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("aselect='%s'", expr))
	return fb
}

// Custom adds a custom filter string
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build returns the complete filter string joined with commas, wrapped in
// its pad labels when set
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}

	var sb strings.Builder
	if fb.input != "" {
		sb.WriteString("[" + fb.input + "]")
	}
	sb.WriteString(strings.Join(fb.filters, ","))
	if fb.output != "" {
		sb.WriteString("[" + fb.output + "]")
	}
	return sb.String()
}

// FilterGraph joins labelled chains into a -filter_complex value
func FilterGraph(chains ...*FilterBuilder) string {
	parts := make([]string, 0, len(chains))
	for _, c := range chains {
		if s := c.Build(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ";")
}

// SelectExpr builds a select predicate that is true when t lies inside any
// of the segments: between(t,s1,e1)+between(t,s2,e2)+...
func SelectExpr(segments []detect.Segment) string {
	terms := make([]string, len(segments))
	for i, s := range segments {
		terms[i] = fmt.Sprintf("between(t,%s,%s)", util.FormatFloat(s.Start), util.FormatFloat(s.End))
	}
	return strings.Join(terms, "+")
}
