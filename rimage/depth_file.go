package rimage

import (
	"bufio"
	"encoding/binary"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/image/tiff"
)

// depthMapMagic starts every raw depth map file.
var depthMapMagic = [8]byte{'D', 'E', 'P', 'T', 'H', 'M', 'A', 'P'}

// maxDepthMapSide bounds the width and height accepted from raw files.
const maxDepthMapSide = 100000

// FileFormat is the on-disk encoding of a depth raster.
type FileFormat int

const (
	// FileFormatUnknown is an unrecognized file extension.
	FileFormatUnknown FileFormat = iota
	// FileFormatRaw is the raw little-endian depth map (.dat).
	FileFormatRaw
	// FileFormatRawGzip is the raw depth map compressed with gzip (.dat.gz).
	FileFormatRawGzip
	// FileFormatPNG is an 8 or 16-bit grayscale PNG.
	FileFormatPNG
	// FileFormatTIFF is an 8 or 16-bit grayscale TIFF.
	FileFormatTIFF
)

// FileFormatFromPath returns the file format implied by the path's extension.
func FileFormatFromPath(path string) FileFormat {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".dat.gz"):
		return FileFormatRawGzip
	case strings.HasSuffix(lower, ".dat"):
		return FileFormatRaw
	case strings.HasSuffix(lower, ".png"):
		return FileFormatPNG
	case strings.HasSuffix(lower, ".tif"), strings.HasSuffix(lower, ".tiff"):
		return FileFormatTIFF
	default:
		return FileFormatUnknown
	}
}

// SplitDepthExt splits path into its stem and its depth file extension, keeping ".dat.gz" whole.
func SplitDepthExt(path string) (string, string) {
	if FileFormatFromPath(path) == FileFormatRawGzip {
		return path[:len(path)-len(".dat.gz")], path[len(path)-len(".dat.gz"):]
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext), ext
}

// ReadDepthFile reads a depth raster from disk. Raw files and 16-bit images come back as a
// *DepthMap; 8-bit images come back as an *image.Gray so their sample width is preserved.
func ReadDepthFile(path string) (img image.Image, err error) {
	format := FileFormatFromPath(path)
	if format == FileFormatUnknown {
		return nil, errors.Errorf("unknown depth file extension for %q", path)
	}

	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	img, err = decodeDepth(bufio.NewReader(f), format)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read depth file %q", path)
	}
	return img, nil
}

func decodeDepth(r io.Reader, format FileFormat) (image.Image, error) {
	switch format {
	case FileFormatRaw:
		return ReadDepthMap(r)
	case FileFormatRawGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		dm, err := ReadDepthMap(gz)
		return dm, multierr.Combine(err, gz.Close())
	case FileFormatPNG:
		img, err := png.Decode(r)
		if err != nil {
			return nil, err
		}
		return normalizeDecoded(img)
	case FileFormatTIFF:
		img, err := tiff.Decode(r)
		if err != nil {
			return nil, err
		}
		return normalizeDecoded(img)
	case FileFormatUnknown:
	}
	return nil, errors.New("unknown depth file format")
}

func normalizeDecoded(img image.Image) (image.Image, error) {
	switch ii := img.(type) {
	case *image.Gray:
		return ii, nil
	case *image.Gray16:
		return convertGray16ToDepthMap(ii), nil
	default:
		return nil, errors.Errorf("depth images must be single channel 8 or 16-bit, got %T", img)
	}
}

// WriteDepthFile writes a depth raster to disk, choosing the encoding from the extension. A file
// that cannot be written completely is removed.
func WriteDepthFile(path string, img image.Image) (err error) {
	format := FileFormatFromPath(path)
	if format == FileFormatUnknown {
		return errors.Errorf("unknown depth file extension for %q", path)
	}
	if FormatOf(img) == PixelFormatUnknown {
		return errors.Errorf("cannot write %T as a depth file", img)
	}

	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
		if err != nil {
			err = multierr.Combine(err, os.Remove(path))
		}
	}()

	w := bufio.NewWriter(f)
	if err := encodeDepth(w, img, format); err != nil {
		return errors.Wrapf(err, "cannot write depth file %q", path)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func encodeDepth(w io.Writer, img image.Image, format FileFormat) error {
	switch format {
	case FileFormatRaw:
		dm, err := ConvertImageToDepthMap(img)
		if err != nil {
			return err
		}
		_, err = dm.WriteTo(w)
		return err
	case FileFormatRawGzip:
		dm, err := ConvertImageToDepthMap(img)
		if err != nil {
			return err
		}
		gz := gzip.NewWriter(w)
		_, err = dm.WriteTo(gz)
		return multierr.Combine(err, gz.Close())
	case FileFormatPNG:
		return png.Encode(w, encodableImage(img))
	case FileFormatTIFF:
		return tiff.Encode(w, encodableImage(img), &tiff.Options{Compression: tiff.Deflate})
	case FileFormatUnknown:
	}
	return errors.New("unknown depth file format")
}

// encodableImage returns an image the stdlib encoders write as single channel grayscale.
func encodableImage(img image.Image) image.Image {
	if dm, ok := img.(*DepthMap); ok {
		return dm.ToGray16Picture()
	}
	return img
}

// ReadDepthMap reads a raw depth map: the 8 byte magic, little-endian uint64 width and height,
// then width*height little-endian uint16 samples in row-major order.
func ReadDepthMap(r io.Reader) (*DepthMap, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "cannot read depth map header")
	}
	if magic != depthMapMagic {
		return nil, errors.Errorf("bad depth map magic %q", magic[:])
	}

	var dims [2]uint64
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, errors.Wrap(err, "cannot read depth map size")
	}
	if dims[0] == 0 || dims[0] >= maxDepthMapSide || dims[1] == 0 || dims[1] >= maxDepthMapSide {
		return nil, errors.Errorf("bad width or height for depth map %v %v", dims[0], dims[1])
	}

	width, height := int(dims[0]), int(dims[1])
	data, err := readDepthSamples(r, width*height)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read depth map samples")
	}
	return &DepthMap{width: width, height: height, data: data}, nil
}

// readDepthSamples reads n little-endian samples in chunks, growing the result only as data
// arrives so a header promising more samples than the stream holds fails early.
func readDepthSamples(r io.Reader, n int) ([]Depth, error) {
	const chunkSamples = 1 << 16
	data := make([]Depth, 0, min(n, chunkSamples))
	raw := make([]byte, 2*min(n, chunkSamples))
	for len(data) < n {
		count := min(n-len(data), chunkSamples)
		if _, err := io.ReadFull(r, raw[:2*count]); err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			data = append(data, Depth(binary.LittleEndian.Uint16(raw[2*i:])))
		}
	}
	return data, nil
}

// WriteTo writes the depth map in the raw format read by ReadDepthMap.
func (dm *DepthMap) WriteTo(out io.Writer) (int64, error) {
	cw := &countingWriter{w: out}
	if _, err := cw.Write(depthMapMagic[:]); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, [2]uint64{uint64(dm.width), uint64(dm.height)}); err != nil {
		return cw.n, err
	}
	err := binary.Write(cw, binary.LittleEndian, dm.data)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
