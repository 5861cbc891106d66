package pathutil

import (
	"strconv"
	"strings"
)

// PathBuilder assembles dotted issue paths such as
// "definitions.Pet.properties.tags.items" while a schema is walked.
// Segments are pushed on the way down and popped on the way back; the
// string is only built when an issue is reported.
type PathBuilder struct {
	segments []string
}

// Push appends a named segment, joined with a dot.
func (p *PathBuilder) Push(segment string) {
	p.segments = append(p.segments, segment)
}

// PushIndex appends an index segment such as "[2]", joined without a dot.
func (p *PathBuilder) PushIndex(i int) {
	p.segments = append(p.segments, "["+strconv.Itoa(i)+"]")
}

// Pop removes the last segment. Popping an empty builder is a no-op.
func (p *PathBuilder) Pop() {
	if n := len(p.segments); n > 0 {
		p.segments = p.segments[:n-1]
	}
}

// Reset clears the builder for reuse.
func (p *PathBuilder) Reset() {
	p.segments = p.segments[:0]
}

// Depth returns the number of segments.
func (p *PathBuilder) Depth() int {
	return len(p.segments)
}

// String renders the path.
func (p *PathBuilder) String() string {
	var b strings.Builder
	for i, seg := range p.segments {
		if i > 0 && !isIndex(seg) {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndex(seg string) bool {
	return strings.HasPrefix(seg, "[")
}
