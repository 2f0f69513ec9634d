package speckle

type sample interface {
	~uint8 | ~uint16
}

// raster is a mutable single channel view: sample (x, y) lives at pix[offset+y*stride+x].
type raster[T sample] struct {
	pix    []T
	offset int
	stride int
	width  int
	height int
}

// filterSpeckles labels the raster in a single row-major pass. Each unlabeled pixel seeds a
// depth-first flood fill over an explicit stack; once the stack empties the region is classified
// and its seed rewritten if it is a speckle. Every other member of the region comes later in
// scan order than its seed, since all earlier pixels were labeled or sentinel already, so the
// scan reaches them afterwards and rewrites them through the region table.
func filterSpeckles[T sample](img raster[T], newVal T, maxSpeckleSize, maxDiff int, signed func(T) int, buf *Buffer) Stats {
	width, height := img.width, img.height
	if width <= 0 || height <= 0 {
		return Stats{}
	}
	npixels := width * height
	buf.reserve(npixels)

	labels := buf.labels[:npixels]
	wave := buf.wave[:npixels]
	rtype := buf.rtype[:npixels+1]
	clear(labels)

	stats := Stats{Pixels: npixels}
	var (
		curLabel int32
		top      int
		center   int
	)

	// expand adds the neighbor at label index lpos / sample index ipos to the current region.
	expand := func(lpos, ipos int) {
		if labels[lpos] != 0 {
			return
		}
		v := img.pix[ipos]
		if v == newVal {
			return
		}
		diff := center - signed(v)
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			return
		}
		labels[lpos] = curLabel
		wave[top] = int32(lpos)
		top++
	}

	for y := 0; y < height; y++ {
		row := img.offset + y*img.stride
		lrow := y * width
		for x := 0; x < width; x++ {
			if img.pix[row+x] == newVal {
				stats.SentinelPixels++
				continue
			}

			if label := labels[lrow+x]; label != 0 {
				if rtype[label] == speckleRegion {
					img.pix[row+x] = newVal
					stats.ErasedPixels++
				}
				continue
			}

			curLabel++
			labels[lrow+x] = curLabel
			wave[0] = int32(lrow + x)
			top = 1
			count := 0

			for top > 0 {
				top--
				lpos := int(wave[top])
				px, py := lpos%width, lpos/width
				ipos := img.offset + py*img.stride + px
				center = signed(img.pix[ipos])
				count++

				if px < width-1 {
					expand(lpos+1, ipos+1)
				}
				if px > 0 {
					expand(lpos-1, ipos-1)
				}
				if py < height-1 {
					expand(lpos+width, ipos+img.stride)
				}
				if py > 0 {
					expand(lpos-width, ipos-img.stride)
				}
			}

			stats.Regions++
			if count <= maxSpeckleSize {
				rtype[curLabel] = speckleRegion
				img.pix[row+x] = newVal
				stats.SpeckleRegions++
				stats.ErasedPixels++
			} else {
				rtype[curLabel] = validRegion
			}
		}
	}

	return stats
}
