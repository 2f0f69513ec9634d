package speckle

// Buffer is the scratch storage of one speckle filter: a label per pixel, the flood fill
// wavefront, the per-label region classification and a staging plane for rasters whose samples
// are not stored natively. It only ever grows, so repeated calls on images no larger than one
// already seen do not allocate.
//
// A Buffer must not be used by two Compute calls at the same time.
type Buffer struct {
	labels []int32
	wave   []int32
	rtype  []uint8
	stage  []uint16
}

// NewBuffer returns a buffer already sized for images of up to npixels pixels.
func NewBuffer(npixels int) *Buffer {
	b := &Buffer{}
	b.reserve(npixels)
	return b
}

// Cap returns the number of pixels the buffer can serve without growing.
func (b *Buffer) Cap() int {
	return len(b.labels)
}

// reserve grows the label grid, wavefront and region table to fit npixels.
func (b *Buffer) reserve(npixels int) {
	if npixels <= len(b.labels) {
		return
	}
	b.labels = make([]int32, npixels)
	b.wave = make([]int32, npixels)
	// labels run from 1 to npixels inclusive.
	b.rtype = make([]uint8, npixels+1)
}

// staging returns a plane of npixels 16-bit samples.
func (b *Buffer) staging(npixels int) []uint16 {
	if npixels > len(b.stage) {
		b.stage = make([]uint16, npixels)
	}
	return b.stage[:npixels]
}
