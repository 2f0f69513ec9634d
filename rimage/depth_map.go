package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
)

// Depth is the depth measured at one pixel, in millimetres. Zero means no measurement.
type Depth uint16

// MaxDepth is the largest representable depth.
const MaxDepth = Depth(math.MaxUint16)

// DepthMap is a row-major raster of 16-bit depth samples. It implements image.Image with the
// Gray16 color model so it can be passed anywhere a 16-bit grayscale image is expected.
type DepthMap struct {
	width  int
	height int

	data []Depth
}

// NewEmptyDepthMap returns a zero filled depth map of the given size.
func NewEmptyDepthMap(width, height int) *DepthMap {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]Depth, width*height),
	}
}

// NewDepthMapFromData wraps an existing row-major slice without copying it.
func NewDepthMapFromData(width, height int, data []Depth) (*DepthMap, error) {
	if width < 0 || height < 0 {
		return nil, errors.Errorf("bad width or height for depth map %d %d", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Errorf("depth map of %dx%d needs %d samples, got %d", width, height, width*height, len(data))
	}
	return &DepthMap{width: width, height: height, data: data}, nil
}

// HasData returns whether the depth map has any samples at all.
func (dm *DepthMap) HasData() bool {
	return dm.width > 0 && dm.height > 0
}

// Width returns the horizontal size of the depth map.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the vertical size of the depth map.
func (dm *DepthMap) Height() int {
	return dm.height
}

// Bounds returns the rectangle dimensions of the image.
func (dm *DepthMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, dm.width, dm.height)
}

// ColorModel for DepthMap so that it implements image.Image.
func (dm *DepthMap) ColorModel() color.Model {
	return color.Gray16Model
}

// At returns the depth at the point as a Gray16 color.
func (dm *DepthMap) At(x, y int) color.Color {
	if !dm.Contains(x, y) {
		return color.Gray16{}
	}
	return color.Gray16{Y: uint16(dm.GetDepth(x, y))}
}

// Contains returns whether or not a point is within bounds of the depth map.
func (dm *DepthMap) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < dm.width && y < dm.height
}

// GetDepth returns the depth at (x, y).
func (dm *DepthMap) GetDepth(x, y int) Depth {
	return dm.data[y*dm.width+x]
}

// Set sets the depth at (x, y).
func (dm *DepthMap) Set(x, y int, val Depth) {
	dm.data[y*dm.width+x] = val
}

// Data returns the row-major backing slice; the stride is always Width().
func (dm *DepthMap) Data() []Depth {
	return dm.data
}

// Clone makes a deep copy of the depth map.
func (dm *DepthMap) Clone() *DepthMap {
	data := make([]Depth, len(dm.data))
	copy(data, dm.data)
	return &DepthMap{width: dm.width, height: dm.height, data: data}
}

// MinMax returns the minimum and maximum non-zero depth. Both are zero if there is no data.
func (dm *DepthMap) MinMax() (Depth, Depth) {
	minDepth := MaxDepth
	maxDepth := Depth(0)
	found := false

	for _, z := range dm.data {
		if z == 0 {
			continue
		}
		found = true
		if z < minDepth {
			minDepth = z
		}
		if z > maxDepth {
			maxDepth = z
		}
	}
	if !found {
		return 0, 0
	}
	return minDepth, maxDepth
}

// ValidCount returns the number of pixels holding a measurement.
func (dm *DepthMap) ValidCount() int {
	count := 0
	for _, z := range dm.data {
		if z != 0 {
			count++
		}
	}
	return count
}

// ToGray16Picture converts the depth map to an *image.Gray16.
func (dm *DepthMap) ToGray16Picture() *image.Gray16 {
	img := image.NewGray16(dm.Bounds())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(dm.GetDepth(x, y))})
		}
	}
	return img
}

// ConvertImageToDepthMap takes an image and figures out if it's already a DepthMap
// or if it can be converted into one. 8-bit images are widened without scaling.
func ConvertImageToDepthMap(img image.Image) (*DepthMap, error) {
	switch ii := img.(type) {
	case *DepthMap:
		return ii, nil
	case *image.Gray16:
		return convertGray16ToDepthMap(ii), nil
	case *image.Gray:
		return convertGrayToDepthMap(ii), nil
	default:
		return nil, errors.Errorf("don't know how to make DepthMap from %T", img)
	}
}

func convertGray16ToDepthMap(gray *image.Gray16) *DepthMap {
	bounds := gray.Bounds()
	dm := NewEmptyDepthMap(bounds.Dx(), bounds.Dy())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			dm.Set(x, y, Depth(gray.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y))
		}
	}
	return dm
}

func convertGrayToDepthMap(gray *image.Gray) *DepthMap {
	bounds := gray.Bounds()
	dm := NewEmptyDepthMap(bounds.Dx(), bounds.Dy())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			dm.Set(x, y, Depth(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y))
		}
	}
	return dm
}
