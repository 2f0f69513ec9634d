package speckle

import (
	"image"
	"sync"
)

// Filter owns the scratch buffer of the speckle filter. A Filter is not safe for concurrent use;
// give each goroutine its own or serialize calls.
type Filter struct {
	buf   *Buffer
	stats Stats
}

// NewFilter returns a filter with an empty scratch buffer.
func NewFilter() *Filter {
	return &Filter{buf: &Buffer{}}
}

// Compute runs the speckle filter on img in place. See the package level Compute.
func (f *Filter) Compute(img image.Image, newVal, maxSpeckleSize, maxDiff int) error {
	stats, err := Compute(img, newVal, maxSpeckleSize, maxDiff, f.buf)
	if err != nil {
		return err
	}
	f.stats = stats
	return nil
}

// Apply runs the filter with the tunables of cfg after validating them.
func (f *Filter) Apply(img image.Image, cfg Config) error {
	if err := cfg.Validate(""); err != nil {
		return err
	}
	return f.Compute(img, cfg.NewVal, cfg.MaxSpeckleSize, cfg.MaxDiff)
}

// Stats returns the counters of the last successful Compute.
func (f *Filter) Stats() Stats {
	return f.stats
}

// Buffer returns the filter's scratch buffer.
func (f *Filter) Buffer() *Buffer {
	return f.buf
}

var (
	sharedMu     sync.Mutex
	sharedFilter = NewFilter()
)

// FilterSpeckles runs Compute with a process wide filter. Calls are serialized, so it is safe to
// use from several goroutines but they will not run in parallel.
func FilterSpeckles(img image.Image, newVal, maxSpeckleSize, maxDiff int) error {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	return sharedFilter.Compute(img, newVal, maxSpeckleSize, maxDiff)
}
