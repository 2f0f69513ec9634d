// Package speckle removes speckles from depth and disparity rasters. A speckle is a small
// 4-connected region of near-constant value, usually sensor noise, which is overwritten with the
// invalid value before the raster is projected to 3D.
package speckle

import (
	"encoding/binary"
	"image"

	"github.com/pkg/errors"

	"github.com/depthkit/depthkit/rimage"
)

// ErrUnsupportedPixelWidth is returned for rasters whose samples are neither 8 nor 16 bits wide.
var ErrUnsupportedPixelWidth = errors.New("speckle filtering only supports 8 and 16-bit single channel images")

const (
	validRegion   uint8 = 0
	speckleRegion uint8 = 1
)

// Stats describes what one Compute call did.
type Stats struct {
	Pixels         int
	SentinelPixels int
	Regions        int
	SpeckleRegions int
	ErasedPixels   int
}

// Compute erases, in place, every 4-connected region of img whose neighboring samples differ by
// at most maxDiff and which holds at most maxSpeckleSize pixels, by setting its pixels to newVal.
// Pixels already equal to newVal are treated as background. Samples are compared as signed
// integers of the raster's width and newVal is truncated to that width.
//
// img must be an *image.Gray, *image.Gray16 or *rimage.DepthMap; anything else fails with
// ErrUnsupportedPixelWidth before img is touched. A nil buf gets a fresh scratch buffer that is
// dropped after the call.
func Compute(img image.Image, newVal, maxSpeckleSize, maxDiff int, buf *Buffer) (Stats, error) {
	if buf == nil {
		buf = &Buffer{}
	}
	switch ii := img.(type) {
	case *image.Gray:
		r := ii.Bounds()
		view := raster[uint8]{
			pix:    ii.Pix,
			offset: ii.PixOffset(r.Min.X, r.Min.Y),
			stride: ii.Stride,
			width:  r.Dx(),
			height: r.Dy(),
		}
		return filterSpeckles(view, uint8(newVal), maxSpeckleSize, maxDiff, signed8, buf), nil
	case *rimage.DepthMap:
		view := raster[rimage.Depth]{
			pix:    ii.Data(),
			stride: ii.Width(),
			width:  ii.Width(),
			height: ii.Height(),
		}
		return filterSpeckles(view, rimage.Depth(newVal), maxSpeckleSize, maxDiff, signedDepth, buf), nil
	case *image.Gray16:
		return computeGray16(ii, uint16(newVal), maxSpeckleSize, maxDiff, buf), nil
	default:
		return Stats{}, errors.Wrapf(ErrUnsupportedPixelWidth, "got %T", img)
	}
}

// computeGray16 stages the big-endian samples of an *image.Gray16 into native order, filters
// them and writes back the pixels that were erased.
func computeGray16(img *image.Gray16, newVal uint16, maxSpeckleSize, maxDiff int, buf *Buffer) Stats {
	r := img.Bounds()
	width, height := r.Dx(), r.Dy()
	if width <= 0 || height <= 0 {
		return Stats{}
	}
	stage := buf.staging(width * height)
	base := img.PixOffset(r.Min.X, r.Min.Y)
	for y := 0; y < height; y++ {
		row := img.Pix[base+y*img.Stride:]
		for x := 0; x < width; x++ {
			stage[y*width+x] = binary.BigEndian.Uint16(row[2*x:])
		}
	}

	view := raster[uint16]{pix: stage, stride: width, width: width, height: height}
	stats := filterSpeckles(view, newVal, maxSpeckleSize, maxDiff, signed16, buf)
	if stats.ErasedPixels == 0 {
		return stats
	}

	for y := 0; y < height; y++ {
		row := img.Pix[base+y*img.Stride:]
		for x := 0; x < width; x++ {
			binary.BigEndian.PutUint16(row[2*x:], stage[y*width+x])
		}
	}
	return stats
}

func signed8(v uint8) int {
	return int(int8(v))
}

func signed16(v uint16) int {
	return int(int16(v))
}

func signedDepth(v rimage.Depth) int {
	return int(int16(v))
}
