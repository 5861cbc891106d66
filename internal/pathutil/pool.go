package pathutil

import "sync"

// Schemas deeper than this are rare; larger builders are left to the GC.
const maxPooledDepth = 64

var builders = sync.Pool{
	New: func() any { return &PathBuilder{segments: make([]string, 0, 8)} },
}

// Get returns an empty PathBuilder from the pool.
func Get() *PathBuilder {
	p := builders.Get().(*PathBuilder)
	p.Reset()
	return p
}

// Put returns p to the pool.
func Put(p *PathBuilder) {
	if p == nil || cap(p.segments) > maxPooledDepth {
		return
	}
	builders.Put(p)
}
