package rimage

import "image"

// PixelFormat tags the sample width of a single channel raster.
type PixelFormat int

const (
	// PixelFormatUnknown is any raster that is not a single channel 8 or 16-bit image.
	PixelFormatUnknown PixelFormat = iota
	// PixelFormatGray8 is one unsigned byte per pixel (*image.Gray).
	PixelFormatGray8
	// PixelFormatGray16 is two bytes per pixel (*image.Gray16 or *DepthMap).
	PixelFormatGray16
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatGray8:
		return "gray8"
	case PixelFormatGray16:
		return "gray16"
	case PixelFormatUnknown:
	}
	return "unknown"
}

// BitsPerSample returns the width of one sample, or 0 for an unknown format.
func (f PixelFormat) BitsPerSample() int {
	switch f {
	case PixelFormatGray8:
		return 8
	case PixelFormatGray16:
		return 16
	case PixelFormatUnknown:
	}
	return 0
}

// FormatOf returns the pixel format of img based on its concrete type.
func FormatOf(img image.Image) PixelFormat {
	switch img.(type) {
	case *image.Gray:
		return PixelFormatGray8
	case *image.Gray16, *DepthMap:
		return PixelFormatGray16
	default:
		return PixelFormatUnknown
	}
}
