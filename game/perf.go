package game

import (
	"sort"
	"time"
)

// PerfStats tracks execution time for each render pass over a rolling window.
type PerfStats struct {
	samples    map[string]*ring
	maxSamples int
}

// ring is a fixed-size sample buffer with a running sum.
type ring struct {
	buf   []time.Duration
	next  int
	count int
	sum   time.Duration
}

// NewPerfStats creates a new performance stats tracker.
func NewPerfStats() *PerfStats {
	return &PerfStats{
		samples:    make(map[string]*ring),
		maxSamples: 120, // ~2 seconds of samples at 60fps
	}
}

// Record adds a duration sample for the named pass.
func (p *PerfStats) Record(name string, d time.Duration) {
	r, ok := p.samples[name]
	if !ok {
		r = &ring{buf: make([]time.Duration, p.maxSamples)}
		p.samples[name] = r
	}
	if r.count == len(r.buf) {
		r.sum -= r.buf[r.next]
	} else {
		r.count++
	}
	r.buf[r.next] = d
	r.sum += d
	r.next = (r.next + 1) % len(r.buf)
}

// Avg returns the average duration for the named pass.
func (p *PerfStats) Avg(name string) time.Duration {
	r, ok := p.samples[name]
	if !ok || r.count == 0 {
		return 0
	}
	return r.sum / time.Duration(r.count)
}

// Total returns the sum of all average durations.
func (p *PerfStats) Total() time.Duration {
	var total time.Duration
	for name := range p.samples {
		total += p.Avg(name)
	}
	return total
}

// SortedNames returns pass names sorted by average duration (descending).
func (p *PerfStats) SortedNames() []string {
	names := make([]string, 0, len(p.samples))
	for name := range p.samples {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ai, aj := p.Avg(names[i]), p.Avg(names[j])
		if ai != aj {
			return ai > aj
		}
		return names[i] < names[j]
	})
	return names
}
