package rimage

// FillHoles replaces pixels equal to hole with the integer mean of their 8-connected neighbors
// that are not holes. Every pass reads the map as it was when the pass started, so one pass
// closes holes up to two pixels wide and each further pass shrinks wider holes by one pixel
// from every side. Holes with no valid neighbor are left alone. It stops early once a pass
// fills nothing and returns the number of pixels filled.
func FillHoles(dm *DepthMap, hole Depth, passes int) int {
	if !dm.HasData() || passes <= 0 {
		return 0
	}
	width, height := dm.width, dm.height
	src := make([]Depth, len(dm.data))

	var filled int
	for pass := 0; pass < passes; pass++ {
		copy(src, dm.data)
		var n int
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if src[y*width+x] != hole {
					continue
				}
				var sum, count int
				for ny := max(y-1, 0); ny <= min(y+1, height-1); ny++ {
					for nx := max(x-1, 0); nx <= min(x+1, width-1); nx++ {
						v := src[ny*width+nx]
						if v == hole {
							continue
						}
						sum += int(v)
						count++
					}
				}
				if count == 0 {
					continue
				}
				dm.data[y*width+x] = Depth(sum / count)
				n++
			}
		}
		if n == 0 {
			break
		}
		filled += n
	}
	return filled
}
